package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Urjashee/central-backend/internal/cache"
	"github.com/Urjashee/central-backend/internal/data"
	"github.com/Urjashee/central-backend/internal/model"
	"github.com/Urjashee/central-backend/internal/odata"
	"github.com/Urjashee/central-backend/internal/web/middleware"
)

// Resource bundles the OData handlers and their collaborators.
type Resource struct {
	forms    FormSource
	subs     SubmissionSource
	metadata *odata.Metadata
	atom     *odata.AtomStreamer
	jsonFeed *odata.JSONStreamer
	docs     *cache.Documents
	logger   *zap.Logger
}

// ResourceConfig carries the dependencies the handlers need. Unwrapper and
// Extractor default to the envelope unwrapper and record extractor;
// Documents defaults to an uncached pass-through and Logger to a no-op.
type ResourceConfig struct {
	Forms       FormSource
	Submissions SubmissionSource
	Domain      string
	Documents   *cache.Documents
	Logger      *zap.Logger
	Unwrapper   odata.Unwrapper
	Extractor   odata.FieldExtractor
}

// NewResource wires the handlers. Template compilation happens here, so a
// broken document shape surfaces at startup.
func NewResource(config ResourceConfig) (*Resource, error) {
	if config.Forms == nil || config.Submissions == nil {
		return nil, fmt.Errorf("form and submission sources are required")
	}
	if config.Domain == "" {
		return nil, fmt.Errorf("domain is required")
	}
	if config.Documents == nil {
		config.Documents = cache.NewDocuments(nil, 0)
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Unwrapper == nil {
		config.Unwrapper = data.NewEnvelopeUnwrapper()
	}
	if config.Extractor == nil {
		config.Extractor = data.NewRecordExtractor()
	}

	metadata, err := odata.NewMetadata(config.Domain)
	if err != nil {
		return nil, fmt.Errorf("failed to build metadata renderer: %w", err)
	}
	atom, err := odata.NewAtomStreamer(config.Domain, config.Unwrapper)
	if err != nil {
		return nil, fmt.Errorf("failed to build atom streamer: %w", err)
	}

	return &Resource{
		forms:    config.Forms,
		subs:     config.Submissions,
		metadata: metadata,
		atom:     atom,
		jsonFeed: odata.NewJSONStreamer(config.Domain, config.Extractor),
		docs:     config.Documents,
		logger:   config.Logger,
	}, nil
}

// Routes mounts the OData surface on a fresh chi router.
func (res *Resource) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/v1/forms/{formId}.svc", func(r chi.Router) {
		r.Get("/", res.serviceDocument)
		r.Get("/$metadata", res.metadataDocument)
		r.Get("/{table}", res.feed)
	})
	return r
}

// Handler wraps the routes with the standard middleware stack. CORS sits
// innermost so preflights are logged and recovered like any request.
func (res *Resource) Handler() http.Handler {
	return middleware.NewChain(
		middleware.RequestID(),
		middleware.Logging(res.logger),
		middleware.Recovery(res.logger),
		middleware.CORS(),
	).Then(res.Routes())
}

func (res *Resource) serviceDocument(w http.ResponseWriter, r *http.Request) {
	form, ok := res.lookupForm(w, r)
	if !ok {
		return
	}

	w.Header().Set("OData-Version", "4.0")

	if acceptsJSON(r) {
		writeJSON(w, http.StatusOK, res.metadata.ServiceDocumentJSON(form, r.URL.RequestURI()))
		return
	}

	key := cache.DocumentKey(form.XMLFormID, cache.KindService, r.URL.Path)
	doc, err := res.docs.GetOrRender(r.Context(), key, func() (string, error) {
		return res.metadata.ServiceDocumentXML(form, r.URL.RequestURI())
	})
	if err != nil {
		res.internalError(w, r, "failed to render service document", err)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write([]byte(doc))
}

func (res *Resource) metadataDocument(w http.ResponseWriter, r *http.Request) {
	form, ok := res.lookupForm(w, r)
	if !ok {
		return
	}

	key := cache.DocumentKey(form.XMLFormID, cache.KindEDMX, "")
	doc, err := res.docs.GetOrRender(r.Context(), key, func() (string, error) {
		return res.metadata.EDMXDocument(form)
	})
	if err != nil {
		res.internalError(w, r, "failed to render metadata document", err)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("OData-Version", "4.0")
	w.Write([]byte(doc))
}

func (res *Resource) feed(w http.ResponseWriter, r *http.Request) {
	form, ok := res.lookupForm(w, r)
	if !ok {
		return
	}

	table := chi.URLParam(r, "table")
	if !validTable(form, table) {
		writeError(w, http.StatusNotFound, "not-found",
			fmt.Sprintf("%q is not a table of form %s", table, form.XMLFormID))
		return
	}

	ctx := r.Context()
	total, err := res.subs.Count(ctx, form.XMLFormID)
	if err != nil {
		res.internalError(w, r, "failed to count submissions", err)
		return
	}

	offset, limit := odata.Window(r.URL.Query())
	rows := res.subs.Stream(ctx, form.XMLFormID, offset, limit)

	tableURL := r.URL.RequestURI()
	w.Header().Set("OData-Version", "4.0")

	out := newFlushWriter(w)
	if acceptsAtom(r) {
		w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
		err = res.atom.Stream(ctx, out, form, table, tableURL, rows)
	} else {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		err = res.jsonFeed.Stream(ctx, out, form, table, r.URL.Query(), tableURL, rows, total)
	}
	if err != nil {
		if out.wrote {
			// The status line is gone; cutting the stream short is the
			// only signal left. The truncated document will not parse,
			// which is what tells the client something broke.
			res.logger.Error("feed stream aborted",
				zap.String("request_id", middleware.GetRequestID(ctx)),
				zap.String("table", table),
				zap.Error(err))
			return
		}
		res.internalError(w, r, "failed to stream feed", err)
	}
}

// lookupForm resolves {formId}, writing the error response itself when the
// form cannot be served.
func (res *Resource) lookupForm(w http.ResponseWriter, r *http.Request) (*model.Form, bool) {
	formID := chi.URLParam(r, "formId")

	form, err := res.forms.Form(r.Context(), formID)
	if err != nil {
		if errors.Is(err, model.ErrFormNotFound) {
			writeError(w, http.StatusNotFound, "not-found", fmt.Sprintf("form %s does not exist", formID))
		} else {
			res.internalError(w, r, "failed to load form", err)
		}
		return nil, false
	}
	return form, true
}

func (res *Resource) internalError(w http.ResponseWriter, r *http.Request, message string, err error) {
	res.logger.Error(message,
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal", message)
}

// validTable accepts the primary set and any repeat table the form
// declares.
func validTable(form *model.Form, table string) bool {
	if table == odata.SubmissionsTable {
		return true
	}
	for _, t := range form.Tables() {
		if table == odata.SubmissionsTable+"."+t {
			return true
		}
	}
	return false
}

// acceptsJSON reports whether the request prefers the JSON flavor of a
// document that defaults to XML.
func acceptsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// acceptsAtom reports whether the request asks for the Atom feed flavor;
// anything else gets OData JSON.
func acceptsAtom(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/atom+xml") || strings.Contains(accept, "atom")
}
