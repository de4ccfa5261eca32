// Package buildinfo provides build-time properties injected via ldflags.
//
//	go build -ldflags "-X github.com/nomis52/goplan/buildinfo.version=v1.2.0 \
//	  -X github.com/nomis52/goplan/buildinfo.gitCommit=$(git rev-parse --short HEAD)" ./cmd/planner
//
// Properties left unset by ldflags fall back to the module and VCS
// information the Go toolchain embeds in the binary.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

const unknown = "unknown"

// Properties holds build-time properties.
type Properties struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
}

// Package-level variables for ldflags injection (unexported).
var (
	version   = unknown
	buildTime = unknown
	gitCommit = unknown
)

// Get returns the current build properties.
func Get() Properties {
	p := Properties{
		Version:   version,
		BuildTime: buildTime,
		GitCommit: gitCommit,
		GoVersion: unknown,
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		p = fillFrom(p, info)
	}
	return p
}

// fillFrom replaces unknown properties with what the toolchain recorded.
func fillFrom(p Properties, info *debug.BuildInfo) Properties {
	if info.GoVersion != "" {
		p.GoVersion = info.GoVersion
	}
	if p.Version == unknown && info.Main.Version != "" && info.Main.Version != "(devel)" {
		p.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if p.GitCommit == unknown && s.Value != "" {
				p.GitCommit = s.Value
				if len(p.GitCommit) > 12 {
					p.GitCommit = p.GitCommit[:12]
				}
			}
		case "vcs.time":
			if p.BuildTime == unknown && s.Value != "" {
				p.BuildTime = s.Value
			}
		}
	}
	return p
}

// String formats the properties on one line.
func (p Properties) String() string {
	return fmt.Sprintf("%s (commit %s, built %s, %s)", p.Version, p.GitCommit, p.BuildTime, p.GoVersion)
}
