package record

import (
	"errors"
	"slices"
	"strings"
	"time"
)

var (
	// ErrTitleRequired is returned when a draft has no title.
	ErrTitleRequired = errors.New("activity title is required")
	// ErrGoalRequired is returned when no catalog goal has been selected.
	ErrGoalRequired = errors.New("a competence goal must be selected")
)

// Draft holds the values of the activity form before they are saved.
type Draft struct {
	Placement string           `json:"placement,omitempty"`
	Goals     []string         `json:"goals,omitempty"`
	Title     string           `json:"title,omitempty"`
	Text      map[Field]string `json:"text,omitempty"`
}

// Validate checks the fields that must be present before a save.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrTitleRequired
	}
	if d.Placement == "" {
		return ErrGoalRequired
	}
	return nil
}

// Build turns the draft into a record created at now. Fields the variant
// does not offer are dropped.
func (d Draft) Build(v Variant, now time.Time) (Activity, error) {
	if err := d.Validate(); err != nil {
		return Activity{}, err
	}
	a := Activity{
		ID:        now.UnixMilli(),
		Placement: d.Placement,
		Goals:     slices.Clone(d.Goals),
		Title:     d.Title,
		CreatedAt: now,
	}
	for _, f := range v.Fields {
		a.setText(f, d.Text[f])
	}
	return a, nil
}

// Clone returns a deep copy of the draft.
func (d Draft) Clone() Draft {
	d.Goals = slices.Clone(d.Goals)
	if d.Text != nil {
		text := make(map[Field]string, len(d.Text))
		for k, v := range d.Text {
			text[k] = v
		}
		d.Text = text
	}
	return d
}
