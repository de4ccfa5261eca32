package record

import (
	"fmt"
	"slices"
)

// Catalog shapes understood by the catalog loader.
const (
	ShapeStructured = "structured"
	ShapeCombined   = "combined"
)

// Variant describes one flavour of the planner form: which text fields it
// offers, how many records may be stored, and how its goal catalog is shaped.
type Variant struct {
	Name         string
	Fields       []Field
	Cap          int // 0 means uncapped
	CatalogShape string
}

// PlacementVariant is the internship planner: target group field, capped at 50.
var PlacementVariant = Variant{
	Name: "placement",
	Fields: []Field{
		FieldDescription,
		FieldTargetGroup,
		FieldDuration,
		FieldMaterials,
		FieldEvaluation,
	},
	Cap:          50,
	CatalogShape: ShapeStructured,
}

// CourseVariant is the course planner: method and reflection fields, uncapped.
var CourseVariant = Variant{
	Name: "course",
	Fields: []Field{
		FieldDescription,
		FieldDuration,
		FieldMaterials,
		FieldMethod,
		FieldEvaluation,
		FieldReflection,
	},
	CatalogShape: ShapeCombined,
}

// VariantByName returns the predefined variant with the given name.
func VariantByName(name string) (Variant, error) {
	switch name {
	case PlacementVariant.Name:
		return PlacementVariant, nil
	case CourseVariant.Name:
		return CourseVariant, nil
	default:
		return Variant{}, fmt.Errorf("unknown variant %q", name)
	}
}

// Has reports whether the variant offers field f.
func (v Variant) Has(f Field) bool {
	return slices.Contains(v.Fields, f)
}

// Capped reports whether the variant limits the collection size.
func (v Variant) Capped() bool {
	return v.Cap > 0
}
