package model

import (
	"errors"
	"strings"
)

// ErrFormNotFound reports a lookup for an unknown xmlFormId. Sources wrap
// it so callers can map the failure to a 404.
var ErrFormNotFound = errors.New("form not found")

// Form is a form definition as supplied by the hosting system.
type Form struct {
	XMLFormID string   `json:"xmlFormId"` // Unique form identifier
	Name      string   `json:"name"`      // Human-readable title
	Fields    []*Field `json:"fields"`    // Ordered root fields
}

// Schema returns the ordered root fields of the form definition.
func (f *Form) Schema() []*Field {
	return f.Fields
}

// Tables returns the dotted path of every repeat group in the form, in
// definition order. Each path backs one dependent OData entity set.
func (f *Form) Tables() []string {
	return repeatPaths(f.Fields, nil)
}

func repeatPaths(fields []*Field, path []string) []string {
	var tables []string
	for _, field := range fields {
		if !field.IsStructural() {
			continue
		}
		subpath := joinPath(path, field.Name)
		if field.Type == FieldRepeat {
			tables = append(tables, strings.Join(subpath, "."))
		}
		tables = append(tables, repeatPaths(field.Children, subpath)...)
	}
	return tables
}

// joinPath copies path before appending so sibling recursions never share
// backing arrays.
func joinPath(path []string, name string) []string {
	subpath := make([]string, 0, len(path)+1)
	subpath = append(subpath, path...)
	return append(subpath, name)
}
