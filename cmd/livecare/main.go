package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/goodcasino/livecare/internal/bot"
	"github.com/goodcasino/livecare/internal/classifier"
	"github.com/goodcasino/livecare/internal/config"
	"github.com/goodcasino/livecare/internal/flow"
	"github.com/goodcasino/livecare/internal/gamedata"
	"github.com/goodcasino/livecare/internal/history"
	"github.com/goodcasino/livecare/internal/intent"
	"github.com/goodcasino/livecare/internal/livechat"
	"github.com/goodcasino/livecare/internal/logger"
	"github.com/goodcasino/livecare/internal/notify"
	"github.com/goodcasino/livecare/internal/payment"
	"github.com/goodcasino/livecare/internal/promo"
	"github.com/goodcasino/livecare/internal/server"
	"github.com/goodcasino/livecare/internal/state"
	"github.com/goodcasino/livecare/internal/version"
)

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideHistory(lc fx.Lifecycle, log *slog.Logger, cfg config.Config) (*history.Service, error) {
	hist, err := history.Open(log, cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return hist.Close()
		},
	})
	return hist, nil
}

func provideStateStore(log *slog.Logger, hist *history.Service) *state.Store {
	return state.NewStore().WithLoader(func(chatID string) (*state.Conversation, bool) {
		var conv state.Conversation
		if !hist.LoadState(context.Background(), chatID, &conv) {
			return nil, false
		}
		log.Debug("chat state restored", slog.String("chat_id", chatID))
		return &conv, true
	})
}

func providePromotions(cfg config.Config) (*promo.Store, error) {
	return promo.NewStore(filepath.Join(cfg.Data.Dir, "promotions.json"))
}

func provideRTPStore(cfg config.Config) *gamedata.RTPStore {
	return gamedata.NewRTPStore(filepath.Join(cfg.Data.Dir, "rtp.json"))
}

func provideGameStore(cfg config.Config) (*gamedata.GameStore, error) {
	return gamedata.NewGameStore(filepath.Join(cfg.Data.Dir, "data.json"))
}

func provideBrandStore(cfg config.Config) (*gamedata.BrandStore, error) {
	brand, err := gamedata.NewBrandStore(filepath.Join(cfg.Data.Dir, "brand-config.json"))
	if err != nil {
		return nil, err
	}
	if cfg.Bot.BrandName != "" {
		brand.SetName(cfg.Bot.BrandName)
	}
	return brand, nil
}

func provideNotify(log *slog.Logger, cfg config.Config) *notify.Service {
	return notify.NewService(log, cfg.Support.PingURL)
}

func provideClassifier(log *slog.Logger, cfg config.Config, brand *gamedata.BrandStore) (*classifier.Service, error) {
	return classifier.NewService(log, cfg.LLM, brand.Name())
}

func provideLiveChatClient(log *slog.Logger, cfg config.Config) *livechat.Client {
	return livechat.NewClient(log, cfg.LiveChat)
}

func provideResolver(log *slog.Logger, cfg config.Config, cls *classifier.Service, promos *promo.Store,
	rtp *gamedata.RTPStore, games *gamedata.GameStore, brand *gamedata.BrandStore, pings *notify.Service,
) *intent.Resolver {
	return intent.NewResolver(log, intent.Deps{
		Classifier:        cls,
		Promos:            promos,
		RTP:               rtp,
		Games:             games,
		Brand:             brand,
		Notifier:          pings,
		Deposit:           flow.NewEngine(log, flow.KindDeposit, flow.DepositTemplates(), pings),
		Withdraw:          flow.NewEngine(log, flow.KindWithdraw, flow.WithdrawTemplates(), pings),
		OffTopicThreshold: cfg.Bot.OffTopicThreshold,
		RandIndex:         rand.Intn,
	})
}

// paymentResponder adapts the payment assistant to the bot turn pipeline.
type paymentResponder struct {
	assistant *payment.Assistant
}

func (p paymentResponder) Resolve(ctx context.Context, conv *state.Conversation, message string) string {
	return p.assistant.Handle(ctx, conv.ChatID, message)
}

func provideResponder(lc fx.Lifecycle, cfg config.Config, resolver *intent.Resolver, log *slog.Logger, brand *gamedata.BrandStore, pings *notify.Service) bot.Responder {
	if !cfg.Payment.Enabled {
		return resolver
	}
	sessions := payment.NewStore()
	assistant := payment.NewAssistant(log, sessions, payment.NewStaticDirectory(), pings,
		payment.IndonesianTemplates(brand.Name(), "@cs"+brand.Name()), cfg.Payment.OffTopicThreshold)

	c := cron.New()
	if _, err := c.AddFunc("@every 1h", func() {
		if evicted := sessions.EvictOlderThan(24 * time.Hour); evicted > 0 {
			log.Info("evicted stale payment sessions", slog.Int("count", evicted))
		}
	}); err == nil {
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				c.Start()
				return nil
			},
			OnStop: func(context.Context) error {
				<-c.Stop().Done()
				return nil
			},
		})
	}
	return paymentResponder{assistant: assistant}
}

func provideBotService(log *slog.Logger, cfg config.Config, store *state.Store, guard *state.Guard,
	responses *state.ResponseTracker, hist *history.Service, responder bot.Responder, client *livechat.Client,
) *bot.Service {
	return bot.NewService(log, store, guard, responses, hist, responder, client,
		cfg.Bot.ReplyMaxLength, cfg.Bot.MinResponseGapDuration())
}

func providePoller(log *slog.Logger, cfg config.Config, client *livechat.Client, svc *bot.Service) *bot.Poller {
	return bot.NewPoller(log, client, svc, cfg.LiveChat.PollIntervalDuration())
}

func provideServer(log *slog.Logger, cfg config.Config, promos *promo.Store, rtp *gamedata.RTPStore,
	games *gamedata.GameStore, store *state.Store, pings *notify.Service, client *livechat.Client,
) *server.Server {
	return server.NewServer(log, cfg.Server.Addr,
		server.NewPromotionHandler(log, promos),
		server.NewDataHandler(log, rtp, games),
		server.NewOpsHandler(log, store, pings, client),
	)
}

func startSweeper(lc fx.Lifecycle, log *slog.Logger, store *state.Store, guard *state.Guard, responses *state.ResponseTracker) {
	sweeper := state.NewSweeper(log, store, guard, responses)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return sweeper.Start()
		},
		OnStop: func(context.Context) error {
			sweeper.Stop()
			return nil
		},
	})
}

func startHistoryCleanup(lc fx.Lifecycle, log *slog.Logger, hist *history.Service) {
	c := cron.New()
	if _, err := c.AddFunc("@every 6h", func() {
		removed, err := hist.CleanupOldChats(context.Background(), 48*time.Hour)
		if err != nil {
			log.Warn("history cleanup failed", slog.Any("error", err))
			return
		}
		if removed > 0 {
			log.Info("history cleanup", slog.Int64("removed", removed))
		}
	}); err != nil {
		log.Warn("history cleanup not scheduled", slog.Any("error", err))
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			c.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			<-c.Stop().Done()
			return nil
		},
	})
}

func startPoller(lc fx.Lifecycle, poller *bot.Poller) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			poller.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			poller.Stop()
			return nil
		},
	})
}

func startServer(lc fx.Lifecycle, log *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	fmt.Printf("Starting Livecare %s\n", version.GetInfo())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}

func main() {
	_ = godotenv.Load()

	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,

			provideHistory,
			provideStateStore,
			state.NewGuard,
			state.NewResponseTracker,

			providePromotions,
			provideRTPStore,
			provideGameStore,
			provideBrandStore,
			provideNotify,
			provideClassifier,
			provideLiveChatClient,

			provideResolver,
			provideResponder,
			provideBotService,
			providePoller,
			provideServer,
		),
		fx.Invoke(
			startSweeper,
			startHistoryCleanup,
			startPoller,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}
