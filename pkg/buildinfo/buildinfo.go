// Package buildinfo provides build metadata for the sqldraft binary.
//
// It supports two sources of build information:
//  1. Compile-time injection via -ldflags (preferred for release binaries)
//  2. runtime/debug.ReadBuildInfo() VCS settings (automatic for dev builds from a git checkout)
//
// The Set() function should be called from main() with the ldflags-injected
// variables. Get() returns the resolved build info, preferring ldflags values
// when available and falling back to debug.ReadBuildInfo().
package buildinfo

import (
	"runtime/debug"
	"sync"
)

// Info holds the resolved build metadata.
type Info struct {
	Version  string // version (e.g. "v1.2.3"), or "dev"
	Commit   string // full git commit hash, or "unknown"
	Date     string // build date in RFC3339, or "unknown"
	Modified bool   // true if the working tree had uncommitted changes
	GoVer    string // Go version used for the build
}

// Short renders a compact version string for script headers and the
// --version flag, e.g. "v1.2.3 (abc1234)".
func (i Info) Short() string {
	s := i.Version
	if i.Commit != "" && i.Commit != "unknown" {
		commit := i.Commit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		s += " (" + commit + ")"
	}
	if i.Modified {
		s += " dirty"
	}
	return s
}

var (
	// These are populated by Set() from main packages using ldflags.
	ldflagsVersion string
	ldflagsCommit  string
	ldflagsDate    string

	once   sync.Once
	cached Info
)

// Set stores the compile-time injected values from -ldflags.
// Call this once from main() before any call to Get().
//
// Example ldflags:
//
//	go build -ldflags "-X main.version=v1.2.3 -X main.commit=$(git rev-parse HEAD) -X main.date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
func Set(version, commit, date string) {
	ldflagsVersion = version
	ldflagsCommit = commit
	ldflagsDate = date
}

// Get returns the resolved build info. It prefers ldflags-injected values
// and falls back to runtime/debug.ReadBuildInfo() VCS settings.
// The result is computed once and cached.
func Get() Info {
	once.Do(func() {
		cached = resolve()
	})
	return cached
}

func resolve() Info {
	info := Info{
		Version:  "dev",
		Commit:   "unknown",
		Date:     "unknown",
		Modified: false,
	}

	// ReadBuildInfo carries VCS settings when built from a working tree.
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVer = bi.GoVersion
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				info.Commit = s.Value
			case "vcs.time":
				info.Date = s.Value
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
		if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
	}

	// ldflags values win because the release pipeline sets them
	// explicitly.
	if ldflagsVersion != "" {
		info.Version = ldflagsVersion
	}
	if ldflagsCommit != "" {
		info.Commit = ldflagsCommit
	}
	if ldflagsDate != "" {
		info.Date = ldflagsDate
	}

	return info
}
