// Package record defines the activity records saved by the planner and the
// variants that decide which text fields a record carries.
package record

import (
	"slices"
	"time"
)

// DateLayout renders dates the way the da-DK locale prints numeric dates.
const DateLayout = "2.1.2006"

// Field names an optional free-text field of an activity.
type Field string

const (
	FieldDescription Field = "description"
	FieldTargetGroup Field = "target_group"
	FieldDuration    Field = "duration"
	FieldMaterials   Field = "materials"
	FieldMethod      Field = "method"
	FieldEvaluation  Field = "evaluation"
	FieldReflection  Field = "reflection"
)

// AllFields lists every text field in export order.
var AllFields = []Field{
	FieldDescription,
	FieldTargetGroup,
	FieldDuration,
	FieldMaterials,
	FieldMethod,
	FieldEvaluation,
	FieldReflection,
}

var fieldLabels = map[Field]string{
	FieldDescription: "Beskrivelse",
	FieldTargetGroup: "Målgruppe",
	FieldDuration:    "Varighed",
	FieldMaterials:   "Materialer",
	FieldMethod:      "Metode",
	FieldEvaluation:  "Evaluering",
	FieldReflection:  "Refleksion",
}

// Label returns the Danish label printed in front of the field value.
func (f Field) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// Valid reports whether f is a known field.
func (f Field) Valid() bool {
	_, ok := fieldLabels[f]
	return ok
}

// Activity is a saved activity plan. Records are immutable once stored.
type Activity struct {
	// ID is derived from the creation time in unix milliseconds.
	ID int64 `json:"id"`
	// Placement is the catalog key selected when the record was created.
	Placement string `json:"placement,omitempty"`
	// Goals holds the goal statements ticked for this activity.
	Goals []string `json:"goals,omitempty"`
	Title string   `json:"title"`

	Description string `json:"description,omitempty"`
	TargetGroup string `json:"target_group,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Materials   string `json:"materials,omitempty"`
	Method      string `json:"method,omitempty"`
	Evaluation  string `json:"evaluation,omitempty"`
	Reflection  string `json:"reflection,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Text returns the value of a text field.
func (a Activity) Text(f Field) string {
	switch f {
	case FieldDescription:
		return a.Description
	case FieldTargetGroup:
		return a.TargetGroup
	case FieldDuration:
		return a.Duration
	case FieldMaterials:
		return a.Materials
	case FieldMethod:
		return a.Method
	case FieldEvaluation:
		return a.Evaluation
	case FieldReflection:
		return a.Reflection
	default:
		return ""
	}
}

func (a *Activity) setText(f Field, v string) {
	switch f {
	case FieldDescription:
		a.Description = v
	case FieldTargetGroup:
		a.TargetGroup = v
	case FieldDuration:
		a.Duration = v
	case FieldMaterials:
		a.Materials = v
	case FieldMethod:
		a.Method = v
	case FieldEvaluation:
		a.Evaluation = v
	case FieldReflection:
		a.Reflection = v
	}
}

// Created returns the creation date formatted for the fixed locale.
func (a Activity) Created() string {
	if a.CreatedAt.IsZero() {
		return ""
	}
	return a.CreatedAt.Format(DateLayout)
}

// Clone returns a copy that shares no slices with a.
func (a Activity) Clone() Activity {
	a.Goals = slices.Clone(a.Goals)
	return a
}

// CloneAll copies a collection so callers can hold it while the original is mutated.
func CloneAll(in []Activity) []Activity {
	out := make([]Activity, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}
