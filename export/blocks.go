package export

import (
	"fmt"
	"strings"

	"github.com/nomis52/goplan/layout"
	"github.com/nomis52/goplan/record"
)

const (
	placementLabel = "Praktik"
	goalsLabel     = "Mål"
	createdLabel   = "Oprettet"
)

// scalarFields are printed on one line; every other text field is wrapped.
var scalarFields = map[record.Field]bool{
	record.FieldTargetGroup: true,
	record.FieldDuration:    true,
}

// Blocks converts records into layout blocks, numbered from 1 in
// collection order. Empty fields are left out.
func Blocks(records []record.Activity, v record.Variant) []layout.Block {
	blocks := make([]layout.Block, 0, len(records))
	for i, a := range records {
		blocks = append(blocks, block(i+1, a, v))
	}
	return blocks
}

func block(n int, a record.Activity, v record.Variant) layout.Block {
	b := layout.Block{Heading: fmt.Sprintf("%d. %s", n, a.Title)}

	add := func(label, value string, wrap bool) {
		if strings.TrimSpace(value) == "" {
			return
		}
		b.Items = append(b.Items, layout.Item{Text: label + ": " + value, Wrap: wrap})
	}

	add(placementLabel, a.Placement, false)
	for _, f := range record.AllFields {
		if !v.Has(f) {
			continue
		}
		add(f.Label(), a.Text(f), !scalarFields[f])
	}
	add(goalsLabel, strings.Join(a.Goals, "; "), true)
	add(createdLabel, a.Created(), false)
	return b
}
