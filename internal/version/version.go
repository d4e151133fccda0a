// Package version reports which PriceScout build is running. Release builds
// set the variables below with -ldflags "-X"; other builds fall back to
// the module and VCS data the Go toolchain embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Build describes the running binary.
type Build struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

var current = sync.OnceValue(func() Build {
	return resolve(Version, GitCommit, BuildDate, readBuildInfo)
})

func readBuildInfo() (*debug.BuildInfo, bool) { return debug.ReadBuildInfo() }

// resolve fills unset ldflags values from embedded build information.
func resolve(ver, commit, date string, info func() (*debug.BuildInfo, bool)) Build {
	b := Build{
		Version:   ver,
		GitCommit: commit,
		BuildDate: date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	bi, ok := info()
	if !ok {
		return b
	}
	if b.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		b.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && b.GitCommit == "unknown":
			b.GitCommit = s.Value
			if len(b.GitCommit) > 12 {
				b.GitCommit = b.GitCommit[:12]
			}
		case s.Key == "vcs.time" && b.BuildDate == "unknown":
			b.BuildDate = s.Value
		}
	}
	return b
}

// Current returns the running build.
func Current() Build { return current() }

// Info is the one-line form printed by the version command.
func Info() string {
	b := current()
	return fmt.Sprintf("PriceScout %s (commit %s, built %s, %s %s)",
		b.Version, b.GitCommit, b.BuildDate, b.GoVersion, b.Platform)
}

// Short returns the bare version, e.g. "v0.3.1" or "dev".
func Short() string { return current().Version }

// UserAgent is sent on every catalog API request.
func UserAgent() string {
	return fmt.Sprintf("pricescout/%s (%s)", current().Version, current().Platform)
}

// Map returns the build as string pairs for JSON output.
func Map() map[string]string {
	b := current()
	return map[string]string{
		"version":    b.Version,
		"git_commit": b.GitCommit,
		"build_date": b.BuildDate,
		"go_version": b.GoVersion,
		"platform":   b.Platform,
	}
}
