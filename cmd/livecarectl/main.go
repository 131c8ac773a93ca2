package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goodcasino/livecare/internal/config"
	"github.com/goodcasino/livecare/internal/version"
)

const usage = `Usage: livecarectl [flags] <command> [args]

Commands:
  health                       Show service health
  promos                       List promotions
  pings                        List recent support pings
  state <chatId>               Inspect chat state
  reset <chatId>               Reset chat state
  send <chatId> <message...>   Send a manual message to a chat
`

type cliOptions struct {
	configPath  string
	apiBaseURL  string
	timeout     time.Duration
	showVersion bool
}

func main() {
	opts := parseFlags()
	if opts.showVersion {
		fmt.Printf("livecarectl %s\n", version.GetInfo())
		return
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if strings.TrimSpace(opts.apiBaseURL) == "" {
		opts.apiBaseURL = defaultAPIBaseURL(cfg.Server.Addr)
	}
	if strings.TrimSpace(opts.apiBaseURL) == "" {
		fmt.Fprintln(os.Stderr, "api url is required")
		os.Exit(1)
	}
	opts.apiBaseURL = normalizeBaseURL(opts.apiBaseURL)

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()
	client := &http.Client{Timeout: opts.timeout}

	if err := run(ctx, client, opts.apiBaseURL, args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *http.Client, baseURL string, args []string) error {
	switch args[0] {
	case "health":
		return getJSON(ctx, client, baseURL+"/api/health")
	case "promos":
		return getJSON(ctx, client, baseURL+"/api/promotions")
	case "pings":
		return getJSON(ctx, client, baseURL+"/support-pings")
	case "state":
		if len(args) < 2 {
			return fmt.Errorf("chat id is required")
		}
		return getJSON(ctx, client, baseURL+"/chat-state/"+args[1])
	case "reset":
		if len(args) < 2 {
			return fmt.Errorf("chat id is required")
		}
		if err := doRequest(ctx, client, http.MethodDelete, baseURL+"/chat-state/"+args[1], nil); err != nil {
			return err
		}
		fmt.Println("reset")
		return nil
	case "send":
		if len(args) < 3 {
			return fmt.Errorf("chat id and message are required")
		}
		body, err := json.Marshal(map[string]string{
			"chatId":  args[1],
			"message": strings.Join(args[2:], " "),
		})
		if err != nil {
			return err
		}
		if err := doRequest(ctx, client, http.MethodPost, baseURL+"/send-message", body); err != nil {
			return err
		}
		fmt.Println("sent")
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func parseFlags() cliOptions {
	var opts cliOptions
	defaultConfig := os.Getenv("CONFIG_PATH")
	if strings.TrimSpace(defaultConfig) == "" {
		defaultConfig = config.DefaultConfigPath
	}

	flag.StringVar(&opts.configPath, "config", defaultConfig, "Path to livecare.toml")
	flag.StringVar(&opts.apiBaseURL, "api-url", "", "API server base URL (e.g. http://127.0.0.1:3001)")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Second, "Request timeout")
	flag.BoolVar(&opts.showVersion, "version", false, "Show version information")
	flag.Parse()

	return opts
}

func normalizeBaseURL(value string) string {
	return strings.TrimRight(strings.TrimSpace(value), "/")
}

func defaultAPIBaseURL(addr string) string {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return normalizeBaseURL(trimmed)
	}
	if strings.HasPrefix(trimmed, ":") {
		return "http://127.0.0.1" + trimmed
	}
	return "http://" + trimmed
}

func getJSON(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("api server error: %s", strings.TrimSpace(string(payload)))
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, payload, "", "  "); err != nil {
		fmt.Println(strings.TrimSpace(string(payload)))
		return nil
	}
	fmt.Println(pretty.String())
	return nil
}

func doRequest(ctx context.Context, client *http.Client, method, url string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("api server error: %s", strings.TrimSpace(string(payload)))
	}
	return nil
}
