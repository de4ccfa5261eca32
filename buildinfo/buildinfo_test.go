package buildinfo

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFillFrom(t *testing.T) {
	info := &debug.BuildInfo{
		GoVersion: "go1.25.0",
		Main:      debug.Module{Path: "github.com/nomis52/goplan", Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2024-03-01T09:00:00Z"},
		},
	}

	tests := []struct {
		name string
		in   Properties
		want Properties
	}{
		{
			name: "unset values are filled",
			in:   Properties{Version: unknown, BuildTime: unknown, GitCommit: unknown, GoVersion: unknown},
			want: Properties{
				Version:   "v0.3.1",
				BuildTime: "2024-03-01T09:00:00Z",
				GitCommit: "0123456789ab",
				GoVersion: "go1.25.0",
			},
		},
		{
			name: "ldflags win",
			in:   Properties{Version: "v1.0.0", BuildTime: "yesterday", GitCommit: "deadbeef", GoVersion: unknown},
			want: Properties{
				Version:   "v1.0.0",
				BuildTime: "yesterday",
				GitCommit: "deadbeef",
				GoVersion: "go1.25.0",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fillFrom(tt.in, info))
		})
	}
}

func TestFillFrom_DevelBuild(t *testing.T) {
	p := fillFrom(Properties{Version: unknown, BuildTime: unknown, GitCommit: unknown},
		&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	assert.Equal(t, unknown, p.Version)
	assert.Equal(t, unknown, p.GitCommit)
}

func TestProperties_String(t *testing.T) {
	p := Properties{Version: "v0.3.1", BuildTime: "today", GitCommit: "abc", GoVersion: "go1.25.0"}
	assert.Equal(t, "v0.3.1 (commit abc, built today, go1.25.0)", p.String())
}

func TestGet(t *testing.T) {
	p := Get()
	assert.NotEmpty(t, p.Version)
	assert.NotEmpty(t, p.GitCommit)
	assert.NotEmpty(t, p.GoVersion)
}
