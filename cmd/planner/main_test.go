package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomis52/goplan/record"
)

const catalogPath = "../../catalog/testdata/kompetencemal.json"

// writeConfig writes a config that keeps all state inside a temp dir.
func writeConfig(t *testing.T, backend string) (path, dir string) {
	t.Helper()
	dir = t.TempDir()
	catalog, err := filepath.Abs(catalogPath)
	require.NoError(t, err)

	content := fmt.Sprintf(`catalog:
  path: %s
store:
  backend: %s
  path: %s
export:
  output_dir: %s
suggestions:
  delay: 1ms
logging:
  output: discard
`, catalog, backend, filepath.Join(dir, "data"), filepath.Join(dir, "out"))

	path = filepath.Join(dir, "planner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path, dir
}

// editConfig applies a textual replacement to the config file.
func editConfig(t *testing.T, path, old, repl string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), old)
	content := strings.Replace(string(data), old, repl, 1)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func planner(t *testing.T, cfg string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), append([]string{"-c", cfg}, args...), &out)
	return out.String(), err
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"version"}, &out))
	assert.Contains(t, out.String(), "Commit:")
}

func TestRun_Validate(t *testing.T) {
	cfg, _ := writeConfig(t, "file")
	out, err := planner(t, cfg, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration validation successful")

	bad, _ := writeConfig(t, "redis")
	_, err = planner(t, bad, "validate")
	assert.Error(t, err)
}

func TestRun_UnknownCommand(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"print"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")

	err = run(context.Background(), nil, &out)
	assert.Error(t, err)
}

func TestRun_Goals(t *testing.T) {
	cfg, _ := writeConfig(t, "file")

	out, err := planner(t, cfg, "goals")
	require.NoError(t, err)
	assert.Equal(t, "1. praktik\n2. praktik\n", out)

	out, err = planner(t, cfg, "goals", "1. praktik")
	require.NoError(t, err)
	assert.Contains(t, out, "  1. Den studerende kan skabe relationer til børn.")
	assert.Contains(t, out, "  3. Leg og læring")

	_, err = planner(t, cfg, "goals", "9. praktik")
	assert.Error(t, err)
}

func TestRun_AddListDeleteExport(t *testing.T) {
	for _, backend := range []string{"file", "bolt", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			cfg, dir := writeConfig(t, backend)
			if backend != "file" {
				// bolt and sqlite take a database file, not a directory.
				data := filepath.Join(dir, "data")
				editConfig(t, cfg, data+"\n", filepath.Join(data, "planner.db")+"\n")
			}

			out, err := planner(t, cfg, "add",
				"-placement", "1. praktik",
				"-goal", "3",
				"-goal", "Kommunikere nuanceret",
				"-title", "Maling med farver",
				"-description", "Vi maler med fingrene",
				"-duration", "45 minutter")
			require.NoError(t, err)
			assert.Equal(t, "✅ Aktivitet gemt!\n", out)

			_, err = planner(t, cfg, "add", "-placement", "1. praktik", "-title", "Sang")
			require.NoError(t, err)

			out, err = planner(t, cfg, "list", "-json")
			require.NoError(t, err)
			var records []record.Activity
			require.NoError(t, json.Unmarshal([]byte(out), &records))
			require.Len(t, records, 2)
			assert.Equal(t, []string{"Leg og læring", "Kommunikere nuanceret"}, records[0].Goals)
			assert.Equal(t, "Vi maler med fingrene", records[0].Description)

			out, err = planner(t, cfg, "list")
			require.NoError(t, err)
			assert.Contains(t, out, "1. Maling med farver")
			assert.Contains(t, out, "   Praktik: 1. praktik")
			assert.Contains(t, out, "   Varighed: 45 minutter")
			assert.Contains(t, out, "2. Sang")

			out, err = planner(t, cfg, "export")
			require.NoError(t, err)
			assert.Contains(t, out, "2 aktiviteter eksporteret på 1 sider")
			assert.FileExists(t, filepath.Join(dir, "out", "paedagogiske-aktiviteter.pdf"))

			out, err = planner(t, cfg, "delete", fmt.Sprint(records[0].ID))
			require.NoError(t, err)
			assert.Contains(t, out, "slettet")

			out, err = planner(t, cfg, "delete", "12345")
			require.NoError(t, err)
			assert.Contains(t, out, "Ingen aktivitet med id 12345")

			out, err = planner(t, cfg, "list")
			require.NoError(t, err)
			assert.NotContains(t, out, "Maling")
			assert.Contains(t, out, "1. Sang")
		})
	}
}

func TestRun_AddRejected(t *testing.T) {
	cfg, _ := writeConfig(t, "file")

	out, err := planner(t, cfg, "add", "-placement", "1. praktik")
	assert.ErrorIs(t, err, record.ErrTitleRequired)
	assert.Equal(t, "⚠️ Indtast en titel for aktiviteten\n", out)

	_, err = planner(t, cfg, "add", "-placement", "1. praktik", "-goal", "17", "-title", "x")
	assert.ErrorContains(t, err, "out of range")

	_, err = planner(t, cfg, "add", "-placement", "1. praktik", "-goal", "Svømning", "-title", "x")
	assert.ErrorContains(t, err, "unknown goal")
}

func TestRun_AddCapacity(t *testing.T) {
	cfg, _ := writeConfig(t, "file")
	editConfig(t, cfg, "store:\n", "store:\n  cap: 1\n")

	_, err := planner(t, cfg, "add", "-placement", "1. praktik", "-title", "Første")
	require.NoError(t, err)

	out, err := planner(t, cfg, "add", "-placement", "1. praktik", "-title", "Anden")
	assert.Error(t, err)
	assert.Equal(t, "⚠️ Maksimum 1 aktiviteter tilladt\n", out)
}

func TestRun_ExportEmpty(t *testing.T) {
	cfg, dir := writeConfig(t, "file")

	out, err := planner(t, cfg, "export")
	assert.Error(t, err)
	assert.Equal(t, "⚠️ Ingen aktiviteter at eksportere\n", out)
	assert.NoFileExists(t, filepath.Join(dir, "out", "paedagogiske-aktiviteter.pdf"))
}

func TestRun_ExportStdout(t *testing.T) {
	cfg, _ := writeConfig(t, "file")
	_, err := planner(t, cfg, "add", "-placement", "2. praktik", "-goal", "1", "-title", "Planlægning")
	require.NoError(t, err)

	out, err := planner(t, cfg, "export", "-stdout")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "%PDF-"))
}

func TestRun_Suggest(t *testing.T) {
	cfg, _ := writeConfig(t, "file")

	out, err := planner(t, cfg, "suggest", "-placement", "1. praktik", "-goal", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Kreativ Leg og Læring")
	assert.Contains(t, out, "3. Natur og Opdagelse")
	assert.Contains(t, out, "   Målgruppe: 2-5 årige børn")

	out, err = planner(t, cfg, "suggest", "-placement", "1. praktik")
	assert.Error(t, err)
	assert.Equal(t, "⚠️ Vælg praktik og mindst ét mål først\n", out)
}

func TestRun_AddFromSuggestion(t *testing.T) {
	cfg, _ := writeConfig(t, "file")

	_, err := planner(t, cfg, "add", "-placement", "1. praktik", "-goal", "2", "-suggestion", "2", "-duration", "20 minutter")
	require.NoError(t, err)

	out, err := planner(t, cfg, "list", "-json")
	require.NoError(t, err)
	var records []record.Activity
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Samarbejde og Kommunikation", records[0].Title)
	assert.Equal(t, "4-6 årige børn", records[0].TargetGroup)
	assert.Equal(t, "20 minutter", records[0].Duration, "flags override the suggestion")
}

func TestRun_ScheduleRequiresSchedule(t *testing.T) {
	cfg, _ := writeConfig(t, "file")
	_, err := planner(t, cfg, "schedule")
	assert.ErrorContains(t, err, "export.schedule")
}

func TestRun_ScheduleStopsOnCancel(t *testing.T) {
	cfg, _ := writeConfig(t, "memory")
	editConfig(t, cfg, "export:\n", "export:\n  schedule: \"@yearly\"\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	require.NoError(t, run(ctx, []string{"-c", cfg, "schedule"}, &out))
	assert.Contains(t, out.String(), "0 planlagte eksporter kørt, 0 fejlede")
}
