// Package version exposes the build version shown by the health endpoint
// and the command-line banners.
package version

import "runtime/debug"

// Set through ldflags at release build time. Binaries built without ldflags
// fall back to the VCS stamp embedded by the Go toolchain.
var (
	Version    = "dev"
	CommitHash = ""
	BuildTime  = ""
)

// GetInfo renders "version (shorthash)", or just the version when no commit
// hash is known.
func GetInfo() string {
	if CommitHash == "" {
		readBuildStamp()
	}
	if CommitHash == "" {
		return Version
	}

	hash := CommitHash
	if len(hash) > 7 {
		hash = hash[:7]
	}
	return Version + " (" + hash + ")"
}

func readBuildStamp() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			CommitHash = setting.Value
		case "vcs.time":
			BuildTime = setting.Value
		}
	}
}
