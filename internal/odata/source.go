package odata

import (
	"context"

	"github.com/Urjashee/central-backend/internal/model"
)

// RowResult is one element of a row source's ordered output: a submission,
// or a mid-sequence failure. Closing the channel signals a clean end of
// sequence; after a RowResult carrying an error the source stops sending.
type RowResult struct {
	Submission *model.Submission
	Err        error
}

// Unwrapper strips the outer envelope from a submission's stored XML
// payload, yielding the bare property fragment the Atom feed embeds
// verbatim.
type Unwrapper interface {
	Unwrap(ctx context.Context, sub *model.Submission) (string, error)
}

// UnwrapperFunc adapts a plain function to the Unwrapper interface.
type UnwrapperFunc func(ctx context.Context, sub *model.Submission) (string, error)

// Unwrap calls f.
func (f UnwrapperFunc) Unwrap(ctx context.Context, sub *model.Submission) (string, error) {
	return f(ctx, sub)
}

// FieldExtractor decomposes a submission's stored payload into the flat
// JSON records belonging to one table: a single record when table is the
// primary Submissions set, zero or more when it names a repeat group.
type FieldExtractor interface {
	Extract(ctx context.Context, lookup SchemaLookup, table string, sub *model.Submission) ([]map[string]interface{}, error)
}

// FieldExtractorFunc adapts a plain function to the FieldExtractor
// interface.
type FieldExtractorFunc func(ctx context.Context, lookup SchemaLookup, table string, sub *model.Submission) ([]map[string]interface{}, error)

// Extract calls f.
func (f FieldExtractorFunc) Extract(ctx context.Context, lookup SchemaLookup, table string, sub *model.Submission) ([]map[string]interface{}, error) {
	return f(ctx, lookup, table, sub)
}
