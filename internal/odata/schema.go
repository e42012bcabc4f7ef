// Package odata translates tree-shaped form definitions and stored
// submission rows into OData v4 documents: the service document, the EDMX
// metadata schema, and streamed Atom-XML and JSON data feeds.
package odata

import (
	"strings"

	"github.com/Urjashee/central-backend/internal/model"
)

// SubmissionsTable names the primary entity type and set; repeat groups
// become dependent tables named Submissions.<dotted.path>.
const SubmissionsTable = "Submissions"

// IDField is the synthetic per-row identifier every entity type keys on.
// It is injected by the surrounding system rather than declared by the
// form schema.
const IDField = "__id"

// namespacePrefix roots the per-form EDMX namespace.
const namespacePrefix = "org.opendatakit.user"

// EDM type names the flattener emits.
const (
	EdmInt64          = "Edm.Int64"
	EdmDecimal        = "Edm.Decimal"
	EdmGeographyPoint = "Edm.GeographyPoint"
	EdmString         = "Edm.String"
)

// edmTypes maps form primitive types onto EDM types. Types absent from the
// table map onto Edm.String; the flattener is a permissive mapper, not a
// validator.
var edmTypes = map[string]string{
	model.FieldInt:      EdmInt64,
	model.FieldDecimal:  EdmDecimal,
	model.FieldGeopoint: EdmGeographyPoint,
}

// Property is a flattened scalar attribute destined for an EDMX
// <Property> element.
type Property struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// EntityType is a flattened table-like unit: the primary Submissions table
// or one repeat group.
type EntityType struct {
	Name       string     `json:"name"`
	Key        string     `json:"key"`
	Properties []Property `json:"properties"`
	Primary    bool       `json:"primary,omitempty"`
}

// ComplexType is a flattened non-repeating structure, embedded by typed
// reference inside its owning entity or complex type.
type ComplexType struct {
	Name       string     `json:"name"`
	Properties []Property `json:"properties"`
}

// FlatSchema is the result of flattening one form's field tree into the
// flat type model OData requires.
type FlatSchema struct {
	EntityTypes  []EntityType
	ComplexTypes []ComplexType
}

// SchemaLookup maps flattened property names onto their EDM types. The
// field extractor consumes it to coerce leaf values.
type SchemaLookup map[string]string

// Flatten folds a form's field tree into ordered entity and complex types.
// The primary Submissions entity type comes first, followed by one entity
// type per repeat group and one complex type per structure, all in
// definition order.
func Flatten(fields []*model.Field, namespace string) *FlatSchema {
	properties, entityTypes, complexTypes := flatten(fields, namespace, nil, nil)

	primary := EntityType{
		Name:       SubmissionsTable,
		Key:        IDField,
		Properties: properties,
		Primary:    true,
	}

	return &FlatSchema{
		EntityTypes:  append([]EntityType{primary}, entityTypes...),
		ComplexTypes: complexTypes,
	}
}

// flatten walks one level of the field tree. path is the dotted location of
// that level; repeatPath is the location of the nearest enclosing repeat
// (nil at the root), which foreign-key synthesis refers back to. All three
// result sequences preserve field order, with descendants bubbling up
// behind the type that owns them.
func flatten(fields []*model.Field, namespace string, path, repeatPath []string) (properties []Property, entityTypes []EntityType, complexTypes []ComplexType) {
	for _, field := range fields {
		switch field.Type {
		case model.FieldStructure:
			// Structures flatten into complex types without changing the
			// nearest-repeat context.
			subpath := appendPath(path, field.Name)
			subProperties, subEntities, subComplexes := flatten(field.Children, namespace, subpath, repeatPath)

			name := strings.Join(subpath, ".")
			complexTypes = append(complexTypes, ComplexType{Name: name, Properties: subProperties})
			complexTypes = append(complexTypes, subComplexes...)
			entityTypes = append(entityTypes, subEntities...)
			properties = append(properties, Property{Name: field.Name, Type: namespace + "." + name})

		case model.FieldRepeat:
			// A repeat becomes its own entity type and the nearest-repeat
			// context for everything beneath it. The synthesized foreign
			// key points at the caller's context so repeat rows join back
			// to their parent.
			subpath := appendPath(path, field.Name)
			subProperties, subEntities, subComplexes := flatten(field.Children, namespace, subpath, subpath)

			name := SubmissionsTable + "." + strings.Join(subpath, ".")
			parentKey := Property{Name: ForeignKeyName(repeatPath), Type: EdmString}
			entityTypes = append(entityTypes, EntityType{
				Name:       name,
				Key:        IDField,
				Properties: append([]Property{parentKey}, subProperties...),
			})
			entityTypes = append(entityTypes, subEntities...)
			complexTypes = append(complexTypes, subComplexes...)
			properties = append(properties, Property{Name: field.Name, Type: "Collection(" + namespace + "." + name + ")"})

		default:
			properties = append(properties, Property{Name: field.Name, Type: edmType(field.Type)})
		}
	}

	return properties, entityTypes, complexTypes
}

// ForeignKeyName derives the synthesized parent-reference property for a
// repeat nested under repeatPath (nil for a repeat directly under the
// root): __Submissions followed by each path segment hyphen-prefixed,
// followed by -id.
func ForeignKeyName(repeatPath []string) string {
	var name strings.Builder
	name.WriteString("__" + SubmissionsTable)
	for _, segment := range repeatPath {
		name.WriteString("-")
		name.WriteString(segment)
	}
	name.WriteString("-id")
	return name.String()
}

// Lookup derives the property-name→EDM-type mapping the field extractor
// consumes, covering every flattened entity and complex type.
func (s *FlatSchema) Lookup() SchemaLookup {
	lookup := make(SchemaLookup)
	for _, entity := range s.EntityTypes {
		for _, property := range entity.Properties {
			lookup[property.Name] = property.Type
		}
	}
	for _, complex := range s.ComplexTypes {
		for _, property := range complex.Properties {
			lookup[property.Name] = property.Type
		}
	}
	return lookup
}

func edmType(fieldType string) string {
	if t, ok := edmTypes[fieldType]; ok {
		return t
	}
	return EdmString
}

// appendPath copies path before appending so sibling recursions never
// share backing arrays.
func appendPath(path []string, name string) []string {
	subpath := make([]string, 0, len(path)+1)
	subpath = append(subpath, path...)
	return append(subpath, name)
}

func namespaceFor(xmlFormID string) string {
	return namespacePrefix + "." + xmlFormID
}
