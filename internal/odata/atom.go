package odata

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/Urjashee/central-backend/internal/model"
	"github.com/Urjashee/central-backend/internal/templates"
	"github.com/Urjashee/central-backend/internal/util/urls"
)

// AtomStreamer renders Atom-XML feed documents around ordered submission
// row streams. One streamer serves the whole process; every Stream call
// gets its own transformer.
type AtomStreamer struct {
	domain   string
	unwrap   Unwrapper
	renderer *templates.Renderer
	preamble *templates.Compiled
	entry    *templates.Compiled
}

// NewAtomStreamer compiles the feed templates up front. unwrap supplies
// the per-row property fragment embedded in each entry.
func NewAtomStreamer(domain string, unwrap Unwrapper) (*AtomStreamer, error) {
	renderer := templates.NewRenderer(map[string]interface{}{"domain": domain})

	preamble, err := renderer.Compile("atom-preamble", templates.StripWhitespace(atomPreambleBody))
	if err != nil {
		return nil, err
	}
	entry, err := renderer.Compile("atom-entry", templates.StripWhitespace(atomEntryBody))
	if err != nil {
		return nil, err
	}

	return &AtomStreamer{
		domain:   domain,
		unwrap:   unwrap,
		renderer: renderer,
		preamble: preamble,
		entry:    entry,
	}, nil
}

// Stream consumes rows in order and writes one complete Atom feed document
// to w: the preamble when the first row arrives, one entry per row, and
// the closing tag at end of stream. Each row's unwrap finishes and its
// entry hits the writer before the next row is read, so output order
// matches input order with at most one unwrap in flight. An empty stream
// still yields a complete feed with no entries.
func (s *AtomStreamer) Stream(ctx context.Context, w io.Writer, form *model.Form, table, tableURL string, rows <-chan RowResult) error {
	t := &atomTransform{
		streamer: s,
		w:        w,
		form:     form,
		table:    table,
		tableURL: tableURL,
		state:    stateBeforeHeader,
	}
	return t.run(ctx, rows)
}

// atomTransform owns the framing state for exactly one document.
type atomTransform struct {
	streamer *AtomStreamer
	w        io.Writer
	form     *model.Form
	table    string
	tableURL string
	state    feedState
}

func (t *atomTransform) run(ctx context.Context, rows <-chan RowResult) error {
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
			if err := t.writeEntry(ctx, row.Submission); err != nil {
				return err
			}
		}
	}
}

func (t *atomTransform) writeHeader() error {
	feedPath := urls.Pathname(t.tableURL)
	header, err := t.streamer.renderer.Render(t.streamer.preamble, map[string]interface{}{
		"feedPath":    feedPath,
		"servicePath": path.Dir(feedPath),
		"table":       t.table,
	})
	if err != nil {
		return err
	}
	if err := writeString(t.w, header); err != nil {
		return err
	}
	t.state = stateStreaming
	return nil
}

func (t *atomTransform) writeEntry(ctx context.Context, sub *model.Submission) error {
	if t.state == stateBeforeHeader {
		if err := t.writeHeader(); err != nil {
			return err
		}
	}

	properties, err := t.streamer.unwrap.Unwrap(ctx, sub)
	if err != nil {
		return fmt.Errorf("failed to unwrap submission %s: %w", sub.InstanceID, err)
	}

	entry, err := t.streamer.renderer.Render(t.streamer.entry, map[string]interface{}{
		"instanceId": xmlEscape(sub.InstanceID),
		"uuid":       xmlEscape(strings.TrimPrefix(sub.InstanceID, "uuid:")),
		"submitter":  xmlEscape(sub.Submitter),
		"createdAt":  sub.CreatedAt.UTC().Format(time.RFC3339),
		"xmlFormId":  t.form.XMLFormID,
		"table":      t.table,
		"properties": properties,
	})
	if err != nil {
		return err
	}
	return writeString(t.w, entry)
}

func (t *atomTransform) finish() error {
	if t.state == stateBeforeHeader {
		if err := t.writeHeader(); err != nil {
			return err
		}
	}
	if err := writeString(t.w, atomFooter); err != nil {
		return err
	}
	t.state = stateDone
	return nil
}

// Feed templates are whitespace-stripped at compile time: the unwrapped
// row payload embeds verbatim, and consistent indentation around it would
// require a full XML rewrite per row.
const atomPreambleBody = `<?xml version="1.0" encoding="UTF-8"?>
<atom:feed xmlns:atom="http://www.w3.org/2005/Atom" xmlns:d="http://docs.oasis-open.org/odata/ns/data" xmlns:m="http://docs.oasis-open.org/odata/ns/metadata" m:context="{{.domain}}{{.servicePath}}/$metadata#{{.table}}">
  <atom:id>{{.domain}}{{.feedPath}}</atom:id>`

const atomEntryBody = `
<atom:entry>
  <atom:id>urn:uuid:{{.uuid}}</atom:id>
  <atom:title type="text"/>
  <atom:summary type="text"/>
  <atom:updated>{{.createdAt}}</atom:updated>
  <atom:author><atom:name>{{.submitter}}</atom:name></atom:author>
  <atom:category scheme="http://docs.oasis-open.org/odata/ns/scheme" term="#org.opendatakit.user.{{.xmlFormId}}.{{.table}}"/>
  <atom:content type="application/xml">
    <m:properties>
      <d:__id>{{.instanceId}}</d:__id>
      {{.properties}}
    </m:properties>
  </atom:content>
</atom:entry>`

const atomFooter = "</atom:feed>"
