package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/nomis52/goplan/app"
	"github.com/nomis52/goplan/export"
	"github.com/nomis52/goplan/logging"
	"github.com/nomis52/goplan/record"
	"github.com/nomis52/goplan/scheduler"
	"github.com/nomis52/goplan/suggest"
)

type command struct {
	help string
	run  func(ctx context.Context, e *env, args []string, out io.Writer) error
}

// version and validate are handled before the environment is opened.
var commands = map[string]command{
	"goals":    {help: "List catalog entries, or the goals of one entry", run: runGoals},
	"add":      {help: "Save a new activity", run: runAdd},
	"list":     {help: "Show saved activities", run: runList},
	"delete":   {help: "Delete a saved activity by id", run: runDelete},
	"export":   {help: "Export saved activities as PDF", run: runExport},
	"suggest":  {help: "Show activity suggestions for a goal selection", run: runSuggest},
	"schedule": {help: "Export periodically on export.schedule until interrupted", run: runSchedule},
	"validate": {help: "Validate the configuration and exit"},
	"version":  {help: "Show version information"},
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// stringList is a flag that may be given more than once.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ", ")
}

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func runGoals(_ context.Context, e *env, args []string, out io.Writer) error {
	if len(args) == 0 {
		keys := e.planner.Placements()
		if len(keys) == 0 {
			return fmt.Errorf("the goal catalog %s is empty or could not be read", e.cfg.Catalog.Path)
		}
		for _, key := range keys {
			fmt.Fprintln(out, key)
		}
		return nil
	}

	placement := args[0]
	goals := e.planner.Goals(placement)
	if len(goals) == 0 {
		return fmt.Errorf("no catalog entry %q", placement)
	}
	fmt.Fprintln(out, placement)
	for i, g := range goals {
		fmt.Fprintf(out, "  %d. %s\n", i+1, g)
	}
	return nil
}

// selectGoals ticks the requested goals, given either as 1-based numbers
// from the goals listing or as the statement text.
func selectGoals(e *env, s app.State, goals []string) (app.State, error) {
	available := e.planner.Goals(s.Draft.Placement)
	for _, g := range goals {
		statement := g
		if n, err := strconv.Atoi(g); err == nil {
			if n < 1 || n > len(available) {
				return s, fmt.Errorf("goal number %d out of range 1-%d for %q", n, len(available), s.Draft.Placement)
			}
			statement = available[n-1]
		} else if !slices.Contains(available, g) {
			return s, fmt.Errorf("unknown goal %q for %q", g, s.Draft.Placement)
		}
		if !slices.Contains(s.Draft.Goals, statement) {
			s = app.ToggleGoal(s, statement)
		}
	}
	return s, nil
}

func runAdd(ctx context.Context, e *env, args []string, out io.Writer) error {
	fs := newFlagSet("add", out)
	placement := fs.String("placement", "", "Catalog entry the activity belongs to")
	var goals stringList
	fs.Var(&goals, "goal", "Goal number or statement (repeatable)")
	title := fs.String("title", "", "Activity title")
	suggestion := fs.Int("suggestion", 0, "Prefill the form from suggestion number N")
	text := make(map[record.Field]*string)
	for _, f := range e.planner.Variant().Fields {
		text[f] = fs.String(strings.ReplaceAll(string(f), "_", "-"), "", f.Label())
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	s := app.SelectPlacement(app.NewState(), *placement)
	s, err := selectGoals(e, s, goals)
	if err != nil {
		return err
	}

	if *suggestion > 0 {
		s, err = e.planner.AwaitSuggestions(ctx, s)
		if err != nil {
			printStatus(out, s)
			return err
		}
		if *suggestion > len(s.Suggestions) {
			return fmt.Errorf("suggestion %d out of range 1-%d", *suggestion, len(s.Suggestions))
		}
		s = app.ApplySuggestion(s, e.planner.Variant(), s.Suggestions[*suggestion-1])
	}

	if *title != "" {
		s = app.SetTitle(s, *title)
	}
	for _, f := range e.planner.Variant().Fields {
		if v := *text[f]; v != "" {
			s = app.SetField(s, e.planner.Variant(), f, v)
		}
	}

	s, err = e.planner.Save(ctx, s)
	printStatus(out, s)
	return err
}

func runList(_ context.Context, e *env, args []string, out io.Writer) error {
	fs := newFlagSet("list", out)
	asJSON := fs.Bool("json", false, "Print the collection as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	records := e.planner.Records()
	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "Ingen gemte aktiviteter")
		return nil
	}
	for i, b := range export.Blocks(records, e.planner.Variant()) {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, b.Heading)
		fmt.Fprintf(out, "   ID: %d\n", records[i].ID)
		for _, item := range b.Items {
			fmt.Fprintf(out, "   %s\n", item.Text)
		}
	}
	return nil
}

func runDelete(ctx context.Context, e *env, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: delete <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", args[0], err)
	}

	s, removed, err := e.planner.Delete(ctx, app.NewState(), id)
	if err != nil {
		printStatus(out, s)
		return err
	}
	if !removed {
		fmt.Fprintf(out, "Ingen aktivitet med id %d\n", id)
		return nil
	}
	fmt.Fprintf(out, "Aktivitet %d slettet\n", id)
	return nil
}

func runExport(_ context.Context, e *env, args []string, out io.Writer) error {
	fs := newFlagSet("export", out)
	dir := fs.String("o", e.cfg.Export.OutputDir, "Output directory")
	toStdout := fs.Bool("stdout", false, "Write the PDF to standard output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *toStdout {
		s, _, err := e.planner.Export(app.NewState(), out)
		if err != nil {
			e.logger.Warn(s.Status.Text)
		}
		return err
	}

	s, res, err := e.planner.ExportFile(app.NewState(), *dir)
	if err != nil {
		printStatus(out, s)
		return err
	}
	fmt.Fprintf(out, "%d aktiviteter eksporteret på %d sider til %s\n", res.Records, res.Pages, res.Path)
	return nil
}

func runSuggest(ctx context.Context, e *env, args []string, out io.Writer) error {
	fs := newFlagSet("suggest", out)
	placement := fs.String("placement", "", "Catalog entry")
	var goals stringList
	fs.Var(&goals, "goal", "Goal number or statement (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s := app.SelectPlacement(app.NewState(), *placement)
	s, err := selectGoals(e, s, goals)
	if err != nil {
		return err
	}

	s, err = e.planner.AwaitSuggestions(ctx, s)
	if err != nil {
		printStatus(out, s)
		return err
	}
	for i, sug := range s.Suggestions {
		printSuggestion(out, i+1, sug)
	}
	return nil
}

func printSuggestion(out io.Writer, n int, sug suggest.Suggestion) {
	fmt.Fprintf(out, "%d. %s\n", n, sug.Title)
	for _, line := range []struct{ label, value string }{
		{record.FieldDescription.Label(), sug.Description},
		{record.FieldTargetGroup.Label(), sug.TargetGroup},
		{record.FieldDuration.Label(), sug.Duration},
		{record.FieldMaterials.Label(), sug.Materials},
		{record.FieldEvaluation.Label(), sug.Evaluation},
	} {
		if line.value != "" {
			fmt.Fprintf(out, "   %s: %s\n", line.label, line.value)
		}
	}
}

func runSchedule(ctx context.Context, e *env, _ []string, out io.Writer) error {
	if e.cfg.Export.Schedule == "" {
		return errors.New("export.schedule is not configured")
	}

	runs := logging.NewRunLog(logging.DefaultMaxRuns)
	s, err := scheduler.New(e.cfg.Export.Schedule, e.planner, e.cfg.Export.OutputDir,
		scheduler.WithLogger(e.logger),
		scheduler.WithRunLog(runs))
	if err != nil {
		return err
	}

	if err := e.serveMetrics(ctx); err != nil {
		return err
	}

	fmt.Fprintf(out, "Eksporterer efter tidsplanen %q til %s, næste kørsel %s\n",
		e.cfg.Export.Schedule, e.cfg.Export.OutputDir, s.NextRun().Format("2.1.2006 15:04"))
	s.Loop(ctx)

	history := s.History()
	failed := 0
	for _, run := range history {
		if run.Error != "" {
			failed++
		}
	}
	fmt.Fprintf(out, "%d planlagte eksporter kørt, %d fejlede\n", len(history), failed)
	return nil
}

func printStatus(out io.Writer, s app.State) {
	if s.Status.Text != "" {
		fmt.Fprintln(out, s.Status.Text)
	}
}
