package odata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/Urjashee/central-backend/internal/model"
	"github.com/Urjashee/central-backend/internal/util/urls"
)

// JSONStreamer renders OData JSON feed documents around ordered submission
// row streams. One streamer serves the whole process; every Stream call
// gets its own transformer.
type JSONStreamer struct {
	domain  string
	extract FieldExtractor
}

// NewJSONStreamer wires the field extractor that turns each stored row
// into flat JSON records.
func NewJSONStreamer(domain string, extract FieldExtractor) *JSONStreamer {
	return &JSONStreamer{domain: domain, extract: extract}
}

// Stream consumes rows in order and writes one complete OData JSON
// document to w. tableURL is the table's request URI (path and query);
// next links re-root it at the configured domain. Pagination and count
// annotations come from query and totalCount, fixed before the first row
// is read. Each row's extraction finishes and its records hit the writer
// before the next row is read. An empty stream still yields a complete
// document with an empty value array.
func (s *JSONStreamer) Stream(ctx context.Context, w io.Writer, form *model.Form, table string, query url.Values, tableURL string, rows <-chan RowResult, totalCount int64) error {
	paging, err := extractPaging(query, tableURL, s.domain, totalCount)
	if err != nil {
		return err
	}

	t := &jsonTransform{
		streamer:   s,
		w:          w,
		table:      table,
		tableURL:   tableURL,
		paging:     paging,
		totalCount: totalCount,
		lookup:     Flatten(form.Schema(), namespaceFor(form.XMLFormID)).Lookup(),
		state:      stateBeforeHeader,
		first:      true,
	}
	return t.run(ctx, rows)
}

// NoLimit marks an absent or unusable $top value.
const NoLimit = int64(-1)

// Window reads the requested paging window from query. Values that fail to
// parse, and negative values, count as absent: limit comes back NoLimit
// and offset zero. Row sources and the JSON streamer share this parse so
// the served window and the advertised nextLink never disagree.
func Window(query url.Values) (offset, limit int64) {
	limit = NoLimit
	if raw := query.Get("$top"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed >= 0 {
			limit = parsed
		}
	}
	if raw := query.Get("$skip"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			offset = parsed
		}
	}
	return offset, limit
}

// paging is the pre-row pagination computation for one JSON stream.
type paging struct {
	limit   int64
	offset  int64
	count   bool
	nextURL string
}

// extractPaging combines the window with $count handling. The nextLink is
// emitted only when a limit is set and offset+limit still falls short of
// totalCount; it reuses the request URL with $skip advanced past the
// current window and $top removed.
func extractPaging(query url.Values, tableURL, domain string, totalCount int64) (paging, error) {
	p := paging{}
	p.offset, p.limit = Window(query)
	p.count = strings.EqualFold(query.Get("$count"), "true")

	if p.limit != NoLimit && p.offset+p.limit < totalCount {
		skip := strconv.FormatInt(p.offset+p.limit, 10)
		next, err := urls.WithQueryParams(tableURL, map[string]*string{"$skip": &skip, "$top": nil})
		if err != nil {
			return paging{}, fmt.Errorf("failed to build next link: %w", err)
		}
		p.nextURL = domain + next
	}

	return p, nil
}

// jsonTransform owns the framing state for exactly one document.
type jsonTransform struct {
	streamer   *JSONStreamer
	w          io.Writer
	table      string
	tableURL   string
	paging     paging
	totalCount int64
	lookup     SchemaLookup
	state      feedState
	first      bool
}

func (t *jsonTransform) run(ctx context.Context, rows <-chan RowResult) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case row, ok := <-rows:
			if !ok {
				return t.finish()
			}
			if row.Err != nil {
				return fmt.Errorf("row source failed: %w", row.Err)
			}
			if err := t.writeRecords(ctx, row.Submission); err != nil {
				return err
			}
		}
	}
}

// writeHeader emits the opening brace, the annotations in OData's
// conventional order, and the opening of the value array. Built by hand
// rather than marshaled so the document can stay open while rows stream.
func (t *jsonTransform) writeHeader() error {
	var header strings.Builder
	header.WriteString(`{"@odata.context":`)
	header.WriteString(jsonString(t.contextURL()))
	if t.paging.nextURL != "" {
		header.WriteString(`,"@odata.nextLink":`)
		header.WriteString(jsonString(t.paging.nextURL))
	}
	if t.paging.count {
		header.WriteString(`,"@odata.count":`)
		header.WriteString(strconv.FormatInt(t.totalCount, 10))
	}
	header.WriteString(`,"value":[`)

	if err := writeString(t.w, header.String()); err != nil {
		return err
	}
	t.state = stateStreaming
	return nil
}

func (t *jsonTransform) contextURL() string {
	return t.streamer.domain + path.Dir(urls.Pathname(t.tableURL)) + "/$metadata#" + t.table
}

func (t *jsonTransform) writeRecords(ctx context.Context, sub *model.Submission) error {
	if t.state == stateBeforeHeader {
		if err := t.writeHeader(); err != nil {
			return err
		}
	}

	records, err := t.streamer.extract.Extract(ctx, t.lookup, t.table, sub)
	if err != nil {
		return fmt.Errorf("failed to extract submission %s: %w", sub.InstanceID, err)
	}

	// One row can contribute zero records (a repeat table with no
	// instances in this submission) or several; the separator flag spans
	// the whole stream, not the row.
	for _, record := range records {
		encoded, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to encode record for %s: %w", sub.InstanceID, err)
		}
		if !t.first {
			if err := writeString(t.w, ","); err != nil {
				return err
			}
		}
		t.first = false
		if _, err := t.w.Write(encoded); err != nil {
			return err
		}
	}
	return nil
}

func (t *jsonTransform) finish() error {
	if t.state == stateBeforeHeader {
		if err := t.writeHeader(); err != nil {
			return err
		}
	}
	if err := writeString(t.w, "]}"); err != nil {
		return err
	}
	t.state = stateDone
	return nil
}

// jsonString renders s as a JSON string literal. Marshaling a string
// cannot fail.
func jsonString(s string) string {
	encoded, _ := json.Marshal(s)
	return string(encoded)
}
