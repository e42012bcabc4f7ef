package data

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Urjashee/central-backend/internal/model"
	"github.com/Urjashee/central-backend/internal/odata"
)

// RecordExtractor decomposes a stored submission payload into the flat
// records belonging to one table. The schema lookup drives both value
// coercion and navigation: collection-typed names mark repeat boundaries,
// namespace-qualified names mark structures, Edm names mark leaves.
type RecordExtractor struct{}

func NewRecordExtractor() *RecordExtractor {
	return &RecordExtractor{}
}

// Extract implements odata.FieldExtractor. The primary table yields
// exactly one record keyed by the submission's instance id. A repeat table
// yields one record per instance of that repeat anywhere in the payload,
// each carrying a deterministic synthetic id and the id of its nearest
// repeat ancestor (or the submission itself) under the synthesized
// parent-reference property.
func (e *RecordExtractor) Extract(ctx context.Context, lookup odata.SchemaLookup, table string, sub *model.Submission) ([]map[string]interface{}, error) {
	root, err := parseTree(sub.XML)
	if err != nil {
		return nil, fmt.Errorf("malformed submission payload: %w", err)
	}

	if table == odata.SubmissionsTable {
		record := e.fieldValues(lookup, root)
		record[odata.IDField] = sub.InstanceID
		return []map[string]interface{}{record}, nil
	}

	segments := strings.Split(strings.TrimPrefix(table, odata.SubmissionsTable+"."), ".")
	fkName := odata.ForeignKeyName(enclosingRepeat(lookup, segments))

	var records []map[string]interface{}
	e.collect(lookup, root, segments, nil, sub.InstanceID, fkName, &records)
	return records, nil
}

// fieldValues turns one element's children into a flat record. Repeats are
// excluded (they surface in their own table), structures nest, leaves
// coerce per their EDM type, and elements the schema does not know are
// dropped.
func (e *RecordExtractor) fieldValues(lookup odata.SchemaLookup, n *xmlNode) map[string]interface{} {
	record := make(map[string]interface{})
	for _, child := range n.children {
		edm, ok := lookup[child.name]
		if !ok {
			continue
		}
		switch {
		case strings.HasPrefix(edm, "Collection("):
		case strings.HasPrefix(edm, "Edm."):
			record[child.name] = coerce(edm, child.text)
		default:
			record[child.name] = e.fieldValues(lookup, child)
		}
	}
	return record
}

// collect walks the payload along the table's path segments, fanning out
// at every repeated element. parentID tracks the synthetic id of the
// nearest repeat ancestor seen so far, starting at the submission's own
// instance id.
func (e *RecordExtractor) collect(lookup odata.SchemaLookup, n *xmlNode, remaining, consumed []string, parentID, fkName string, records *[]map[string]interface{}) {
	segment := remaining[0]
	isRepeat := strings.HasPrefix(lookup[segment], "Collection(")

	index := 0
	for _, child := range n.children {
		if child.name != segment {
			continue
		}

		path := make([]string, 0, len(consumed)+1)
		path = append(path, consumed...)
		path = append(path, segment)

		childID := parentID
		if isRepeat {
			childID = hashID(parentID, strings.Join(path, "."), index)
			index++
		}

		if len(remaining) == 1 {
			record := e.fieldValues(lookup, child)
			record[odata.IDField] = childID
			record[fkName] = parentID
			*records = append(*records, record)
			continue
		}
		e.collect(lookup, child, remaining[1:], path, childID, fkName, records)
	}
}

// enclosingRepeat returns the longest proper prefix of segments that ends
// at a repeat, or nil when the table's only repeat ancestor is the
// submission row itself.
func enclosingRepeat(lookup odata.SchemaLookup, segments []string) []string {
	for end := len(segments) - 1; end > 0; end-- {
		if strings.HasPrefix(lookup[segments[end-1]], "Collection(") {
			return segments[:end]
		}
	}
	return nil
}

// hashID derives a stable synthetic row id from the parent row's id, the
// repeat's dotted path, and the instance's position among its siblings.
// Re-extracting the same submission always yields the same ids.
func hashID(parentID, path string, index int) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s/%s[%d]", parentID, path, index)))
	return hex.EncodeToString(sum[:])
}

// coerce parses a leaf's text per its EDM type. Numeric values that fail
// to parse become null rather than failing the row; geopoints render as
// GeoJSON points with longitude leading.
func coerce(edmType, raw string) interface{} {
	value := strings.TrimSpace(raw)
	switch edmType {
	case odata.EdmInt64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil
		}
		return n
	case odata.EdmDecimal:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil
		}
		return f
	case odata.EdmGeographyPoint:
		return geographyPoint(value)
	default:
		return value
	}
}

// geographyPoint converts the space-separated "lat lon alt accuracy" leaf
// format into a GeoJSON point. Accuracy is dropped; altitude is kept when
// present.
func geographyPoint(value string) interface{} {
	parts := strings.Fields(value)
	if len(parts) < 2 {
		return nil
	}
	lat, latErr := strconv.ParseFloat(parts[0], 64)
	lon, lonErr := strconv.ParseFloat(parts[1], 64)
	if latErr != nil || lonErr != nil {
		return nil
	}

	coordinates := []float64{lon, lat}
	if len(parts) > 2 {
		if alt, err := strconv.ParseFloat(parts[2], 64); err == nil {
			coordinates = append(coordinates, alt)
		}
	}
	return map[string]interface{}{"type": "Point", "coordinates": coordinates}
}

// xmlNode is a minimal parsed element: name, accumulated character data,
// and child elements in document order.
type xmlNode struct {
	name     string
	text     string
	children []*xmlNode
}

func parseTree(data []byte) (*xmlNode, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	var root *xmlNode
	var stack []*xmlNode
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &xmlNode{name: t.Name.Local}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			} else if root == nil {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text += string(t)
			}
		}
	}

	if root == nil {
		return nil, errors.New("empty payload")
	}
	return root, nil
}
