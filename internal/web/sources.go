// Package web serves the OData surface over HTTP: service documents,
// metadata, and streamed Atom/JSON feeds under /v1/forms/{formId}.svc.
package web

import (
	"context"

	"github.com/Urjashee/central-backend/internal/model"
	"github.com/Urjashee/central-backend/internal/odata"
)

// FormSource yields form definitions by xmlFormId. A missing form wraps
// model.ErrFormNotFound.
type FormSource interface {
	Form(ctx context.Context, xmlFormID string) (*model.Form, error)
}

// SubmissionSource yields a form's submissions as an ordered stream, plus
// the total count pagination needs. Stream applies the window itself;
// limit odata.NoLimit means unbounded. The channel closes on a clean end
// and carries mid-sequence failures in-band.
type SubmissionSource interface {
	Count(ctx context.Context, xmlFormID string) (int64, error)
	Stream(ctx context.Context, xmlFormID string, offset, limit int64) <-chan odata.RowResult
}
