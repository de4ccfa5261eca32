// Package app holds the planner's application state and the operations
// that act on it.
//
// State is a plain value. The update functions in this file never modify
// their argument; they return a new State. Operations that touch storage,
// export or suggestions live on Planner.
package app

import (
	"slices"
	"time"

	"github.com/nomis52/goplan/record"
	"github.com/nomis52/goplan/statusreporter"
	"github.com/nomis52/goplan/suggest"
)

// View is the screen being shown.
type View string

const (
	ViewForm  View = "form"
	ViewSaved View = "saved"
)

// Sections that can be collapsed.
const (
	SectionGoals       = "goals"
	SectionSuggestions = "suggestions"
	SectionDetails     = "details"
)

// State is everything the form shows. It round-trips through JSON.
type State struct {
	View        View                 `json:"view"`
	Draft       record.Draft         `json:"draft"`
	Suggestions []suggest.Suggestion `json:"suggestions,omitempty"`
	Loading     bool                 `json:"loading,omitempty"`
	// SuggestionSeq identifies the request whose result is awaited.
	SuggestionSeq uint64                `json:"suggestion_seq,omitempty"`
	Collapsed     map[string]bool       `json:"collapsed,omitempty"`
	Status        statusreporter.Status `json:"status"`
}

// NewState returns the state of a freshly opened form.
func NewState() State {
	return State{View: ViewForm}
}

// clone returns a deep copy so updates never alias the caller's state.
func (s State) clone() State {
	s.Draft = s.Draft.Clone()
	s.Suggestions = slices.Clone(s.Suggestions)
	if s.Collapsed != nil {
		collapsed := make(map[string]bool, len(s.Collapsed))
		for k, v := range s.Collapsed {
			collapsed[k] = v
		}
		s.Collapsed = collapsed
	}
	return s
}

// SelectPlacement chooses a catalog key. Goals picked for the previous key
// no longer apply and are cleared.
func SelectPlacement(s State, key string) State {
	s = s.clone()
	if s.Draft.Placement != key {
		s.Draft.Goals = nil
	}
	s.Draft.Placement = key
	return s
}

// ToggleGoal ticks goal when it is not selected and unticks it otherwise.
func ToggleGoal(s State, goal string) State {
	s = s.clone()
	if i := slices.Index(s.Draft.Goals, goal); i >= 0 {
		s.Draft.Goals = slices.Delete(s.Draft.Goals, i, i+1)
	} else {
		s.Draft.Goals = append(s.Draft.Goals, goal)
	}
	return s
}

// SetTitle sets the activity title.
func SetTitle(s State, title string) State {
	s = s.clone()
	s.Draft.Title = title
	return s
}

// SetField sets one text field of the draft. Fields the variant does not
// offer are ignored.
func SetField(s State, v record.Variant, f record.Field, value string) State {
	if !v.Has(f) {
		return s
	}
	s = s.clone()
	if s.Draft.Text == nil {
		s.Draft.Text = make(map[record.Field]string)
	}
	if value == "" {
		delete(s.Draft.Text, f)
	} else {
		s.Draft.Text[f] = value
	}
	return s
}

// ApplySuggestion copies a suggestion into the form, replacing the title
// and the fields of v it fills.
func ApplySuggestion(s State, v record.Variant, sug suggest.Suggestion) State {
	s = SetTitle(s, sug.Title)
	s = SetField(s, v, record.FieldDescription, sug.Description)
	s = SetField(s, v, record.FieldTargetGroup, sug.TargetGroup)
	s = SetField(s, v, record.FieldDuration, sug.Duration)
	s = SetField(s, v, record.FieldMaterials, sug.Materials)
	s = SetField(s, v, record.FieldEvaluation, sug.Evaluation)
	return s
}

// ClearForm empties the title, text fields, goals, suggestions and status.
// The selected placement is kept.
func ClearForm(s State) State {
	s = s.clone()
	s.Draft = record.Draft{Placement: s.Draft.Placement}
	s.Suggestions = nil
	s.Status = statusreporter.Status{}
	return s
}

// ShowView switches between the form and the saved list.
func ShowView(s State, v View) State {
	if v != ViewForm && v != ViewSaved {
		return s
	}
	s = s.clone()
	s.View = v
	return s
}

// ToggleSection collapses an expanded section or expands a collapsed one.
func ToggleSection(s State, section string) State {
	s = s.clone()
	if s.Collapsed == nil {
		s.Collapsed = make(map[string]bool)
	}
	if s.Collapsed[section] {
		delete(s.Collapsed, section)
	} else {
		s.Collapsed[section] = true
	}
	return s
}

// Expire clears the status once it has been shown long enough.
func Expire(s State, now time.Time) State {
	if s.Status.Active(now) {
		return s
	}
	s = s.clone()
	s.Status = statusreporter.Status{}
	return s
}
