package logging

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "valid json config",
			config: Config{Level: "info", Format: "json", Output: "stdout"},
		},
		{
			name:   "valid text config",
			config: Config{Level: "debug", Format: "text", Output: "stderr"},
		},
		{
			name:   "discard output",
			config: Config{Output: OutputDiscard},
		},
		{
			name:    "invalid level",
			config:  Config{Level: "trace"},
			wantErr: true,
		},
		{
			name:    "invalid format",
			config:  Config{Format: "xml"},
			wantErr: true,
		},
		{
			name:   "defaults applied",
			config: Config{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
			assert.NoError(t, logger.Close())
		})
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.log")

	logger, err := New(Config{Format: "json", Output: path})
	require.NoError(t, err)
	logger.Info("export written", "pages", 3)
	logger.Debug("hidden")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"export written"`)
	assert.Contains(t, string(data), `"pages":3`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNew_UnwritableFile(t *testing.T) {
	_, err := New(Config{Output: filepath.Join(t.TempDir(), "missing", "planner.log")})
	assert.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	cfg.SetDefaults()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, OutputStderr, cfg.Output)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
		wantErr  bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"DEBUG", slog.LevelDebug, false},
		{"invalid", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := ParseLevel(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard().Error("dropped", "error", errors.New("x")) })
}

func TestRunLog_CapturesAllLevels(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	runs := NewRunLog(0)
	logger := runs.Logger(base, "run-1")
	logger.Debug("checking collection", "records", 0)
	logger.Info("export skipped", "reason", "empty", "took", 2*time.Second)
	logger.Warn("export failed", "error", errors.New("disk full"))

	entries := runs.Entries("run-1")
	require.Len(t, entries, 3)
	assert.Equal(t, "DEBUG", entries[0].Level)
	assert.Equal(t, int64(0), entries[0].Attributes["records"])
	assert.Equal(t, "export skipped", entries[1].Message)
	assert.Equal(t, "2s", entries[1].Attributes["took"])
	assert.Equal(t, "disk full", entries[2].Attributes["error"])

	// Only lines the base handler accepts are forwarded.
	assert.NotContains(t, buf.String(), "checking collection")
	assert.Contains(t, buf.String(), "export skipped")
}

func TestRunLog_WithAttrsAndGroups(t *testing.T) {
	base := Discard()
	runs := NewRunLog(5)

	logger := runs.Logger(base, "run-1").With("schedule", "0 6 * * *").WithGroup("export")
	logger.Info("written", "pages", 2)

	entries := runs.Entries("run-1")
	require.Len(t, entries, 1)
	assert.Equal(t, "0 6 * * *", entries[0].Attributes["schedule"])
	assert.Equal(t, int64(2), entries[0].Attributes["export.pages"])
}

func TestRunLog_EvictsOldestRun(t *testing.T) {
	runs := NewRunLog(2)
	base := Discard()

	first := runs.Logger(base, "a")
	runs.Logger(base, "b").Info("b")
	runs.Logger(base, "c").Info("c")

	assert.Equal(t, []string{"b", "c"}, runs.Runs())
	first.Info("late line")
	assert.Empty(t, runs.Entries("a"))
}

func TestRunLog_Concurrent(t *testing.T) {
	runs := NewRunLog(10)
	base := Discard()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger := runs.Logger(base, fmt.Sprintf("run-%d", i))
			for j := 0; j < 20; j++ {
				logger.Info("line", "n", j)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		assert.Len(t, runs.Entries(fmt.Sprintf("run-%d", i)), 20)
	}
}
