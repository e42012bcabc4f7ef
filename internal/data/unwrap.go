// Package data implements the collaborators the feed streamers consume:
// unwrapping a stored submission payload for Atom embedding, and
// decomposing one into flat records for the JSON feed.
package data

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"

	"github.com/Urjashee/central-backend/internal/model"
)

// EnvelopeUnwrapper strips the outermost element from a stored submission
// payload and returns the inner XML verbatim, entities and comments
// included. The fragment embeds directly into Atom entries, so no
// re-rendering may happen here.
type EnvelopeUnwrapper struct{}

func NewEnvelopeUnwrapper() *EnvelopeUnwrapper {
	return &EnvelopeUnwrapper{}
}

// Unwrap implements odata.Unwrapper.
func (u *EnvelopeUnwrapper) Unwrap(ctx context.Context, sub *model.Submission) (string, error) {
	fragment, err := innerXML(sub.XML)
	if err != nil {
		return "", fmt.Errorf("malformed submission payload: %w", err)
	}
	return fragment, nil
}

// innerXML locates the root element and slices its content out of the raw
// document bytes. Offset slicing rather than token re-rendering keeps the
// stored bytes untouched.
func innerXML(data []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	if _, err := nextStart(decoder); err != nil {
		return "", fmt.Errorf("no root element: %w", err)
	}

	start := decoder.InputOffset()
	depth := 0
	for {
		before := decoder.InputOffset()
		tok, err := decoder.Token()
		if err != nil {
			return "", fmt.Errorf("unterminated root element: %w", err)
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				return string(data[start:before]), nil
			}
			depth--
		}
	}
}

func nextStart(decoder *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := decoder.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}
