// Package suggest produces activity suggestions for a goal selection.
//
// Suggestions are produced asynchronously. A Requester runs at most one task
// at a time: starting a new request cancels the one in flight, and only the
// newest request reports a result.
package suggest

import (
	"context"
	"errors"
	"time"
)

// DefaultDelay is how long StaticSource takes to answer.
const DefaultDelay = 2 * time.Second

// ErrMissingSelection is returned when no placement or goal is selected.
var ErrMissingSelection = errors.New("select a placement and at least one goal first")

// Suggestion is a prefilled activity the user may apply to the form.
type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TargetGroup string `json:"target_group"`
	Duration    string `json:"duration"`
	Materials   string `json:"materials"`
	Evaluation  string `json:"evaluation"`
}

// Request is the selection suggestions are made for.
type Request struct {
	Placement string
	Goals     []string
}

// Validate checks that a placement and at least one goal are selected.
func (r Request) Validate() error {
	if r.Placement == "" || len(r.Goals) == 0 {
		return ErrMissingSelection
	}
	return nil
}

// Source produces suggestions.
type Source interface {
	Suggest(ctx context.Context, req Request) ([]Suggestion, error)
}

var builtin = []Suggestion{
	{
		Title:       "Kreativ Leg og Læring",
		Description: "En aktivitet der kombinerer kreativ udfoldelse med målrettet læring gennem leg og eksperimenter.",
		TargetGroup: "3-5 årige børn",
		Duration:    "45 minutter",
		Materials:   "Farver, papir, lim, naturmaterialer, kameraer til dokumentation",
		Evaluation:  "Observation af børnenes engagement, foto-dokumentation af proces og resultater, samtale med børnene om deres oplevelser",
	},
	{
		Title:       "Samarbejde og Kommunikation",
		Description: "Struktureret gruppeaktivitet der fremmer sociale kompetencer og kommunikative færdigheder.",
		TargetGroup: "4-6 årige børn",
		Duration:    "30 minutter",
		Materials:   "Byggeklodser, rollespilstøj, tavle til tegning",
		Evaluation:  "Struktureret observation af samarbejdsevner, dokumentation af kommunikative fremskridt",
	},
	{
		Title:       "Natur og Opdagelse",
		Description: "Udendørs læringsaktivitet der kobler naturoplevelser med faglig udvikling og kropslig udfoldelse.",
		TargetGroup: "2-5 årige børn",
		Duration:    "60 minutter",
		Materials:   "Lupper, indsamlingsbøtter, notesbøger, kamera",
		Evaluation:  "Portfolio-dokumentation, refleksionssamtaler, observation af nysgerrighed og engagement",
	},
}

// StaticSource answers every valid request with the built-in suggestions
// after a fixed delay.
type StaticSource struct {
	delay time.Duration
}

// NewStaticSource creates a StaticSource. A negative delay is treated as zero.
func NewStaticSource(delay time.Duration) *StaticSource {
	if delay < 0 {
		delay = 0
	}
	return &StaticSource{delay: delay}
}

// Suggest waits for the delay, or returns ctx.Err() if ctx is done first.
func (s *StaticSource) Suggest(ctx context.Context, req Request) ([]Suggestion, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	out := make([]Suggestion, len(builtin))
	copy(out, builtin)
	return out, nil
}
