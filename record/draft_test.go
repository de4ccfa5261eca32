package record

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraft_Validate(t *testing.T) {
	tests := []struct {
		name    string
		draft   Draft
		wantErr error
	}{
		{
			name:  "title and placement",
			draft: Draft{Title: "Leg", Placement: "1. praktik"},
		},
		{
			name:    "missing title",
			draft:   Draft{Placement: "1. praktik"},
			wantErr: ErrTitleRequired,
		},
		{
			name:    "whitespace title",
			draft:   Draft{Title: "   ", Placement: "1. praktik"},
			wantErr: ErrTitleRequired,
		},
		{
			name:    "missing placement",
			draft:   Draft{Title: "Leg"},
			wantErr: ErrGoalRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestDraft_Build(t *testing.T) {
	now := time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC)
	d := Draft{
		Placement: "1. praktik",
		Goals:     []string{"a", "b"},
		Title:     "Natur",
		Text: map[Field]string{
			FieldDescription: "Ude",
			FieldTargetGroup: "3-5 årige",
			FieldMethod:      "not offered by placement",
		},
	}

	a, err := d.Build(PlacementVariant, now)
	require.NoError(t, err)

	assert.Equal(t, now.UnixMilli(), a.ID)
	assert.Equal(t, "Natur", a.Title)
	assert.Equal(t, "Ude", a.Description)
	assert.Equal(t, "3-5 årige", a.TargetGroup)
	assert.Empty(t, a.Method)
	assert.Equal(t, "5.1.2024", a.Created())

	// The record must not share the goal slice with the draft.
	d.Goals[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, a.Goals)
}

func TestDraft_BuildInvalid(t *testing.T) {
	_, err := Draft{Placement: "x"}.Build(CourseVariant, time.Now())
	assert.ErrorIs(t, err, ErrTitleRequired)
}

func TestActivity_JSONOmitsEmptyFields(t *testing.T) {
	a := Activity{ID: 1, Title: "T", Placement: "G"}
	data, err := json.Marshal(a)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "description")
	assert.NotContains(t, raw, "goals")
	assert.Equal(t, "T", raw["title"])
}

func TestVariantByName(t *testing.T) {
	v, err := VariantByName("placement")
	require.NoError(t, err)
	assert.Equal(t, 50, v.Cap)
	assert.True(t, v.Has(FieldTargetGroup))
	assert.False(t, v.Has(FieldReflection))

	v, err = VariantByName("course")
	require.NoError(t, err)
	assert.False(t, v.Capped())
	assert.True(t, v.Has(FieldReflection))

	_, err = VariantByName("nope")
	assert.Error(t, err)
}

func TestField_Label(t *testing.T) {
	assert.Equal(t, "Målgruppe", FieldTargetGroup.Label())
	assert.True(t, FieldMethod.Valid())
	assert.False(t, Field("colour").Valid())
}
