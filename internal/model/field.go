// Package model defines the domain types shared by the OData translation
// layer: form definitions, their field trees, and stored submissions. All
// three are owned by the hosting system; this package only reads them.
package model

// Structural field types. Every other type string is a primitive leaf;
// unrecognized primitives are mapped permissively downstream rather than
// validated here.
const (
	FieldStructure = "structure"
	FieldRepeat    = "repeat"
)

// Primitive field types with a dedicated EDM mapping.
const (
	FieldInt      = "int"
	FieldDecimal  = "decimal"
	FieldGeopoint = "geopoint"
	FieldString   = "string"
)

// Field is a single node in a form's field tree. Structural fields
// (structure, repeat) carry an ordered list of children; leaf fields carry
// none.
type Field struct {
	Name     string   `json:"name"`               // Field name as declared in the form
	Type     string   `json:"type"`               // Primitive type name, or structure/repeat
	Children []*Field `json:"children,omitempty"` // Ordered child fields for structural types
}

// IsStructural returns true if the field groups children rather than
// holding a value.
func (f *Field) IsStructural() bool {
	return f.Type == FieldStructure || f.Type == FieldRepeat
}
