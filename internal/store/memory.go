// Package store provides the process-local source the server reads from:
// seeded form definitions and their ordered submissions. It is not
// persistence; it exists so the server, the demo command, and the tests
// all run against the same row-stream contract.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/Urjashee/central-backend/internal/model"
	"github.com/Urjashee/central-backend/internal/odata"
)

// Memory holds forms and submissions in process memory. Submissions keep
// their insertion order, which is the order every stream replays.
type Memory struct {
	mu          sync.RWMutex
	forms       map[string]*model.Form
	submissions map[string][]*model.Submission
	failures    map[string]*failure
}

// failure is an injected mid-sequence fault: the stream delivers the first
// after rows and then errors instead of closing cleanly.
type failure struct {
	after int
	err   error
}

func NewMemory() *Memory {
	return &Memory{
		forms:       make(map[string]*model.Form),
		submissions: make(map[string][]*model.Submission),
		failures:    make(map[string]*failure),
	}
}

// AddForm registers a form definition, replacing any previous definition
// under the same xmlFormId.
func (m *Memory) AddForm(form *model.Form) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forms[form.XMLFormID] = form
}

// AddSubmissions appends submissions to a form's ordered list.
func (m *Memory) AddSubmissions(xmlFormID string, subs ...*model.Submission) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions[xmlFormID] = append(m.submissions[xmlFormID], subs...)
}

// FailAfter makes the next streams for xmlFormID deliver after rows and
// then fail with err instead of ending cleanly.
func (m *Memory) FailAfter(xmlFormID string, after int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[xmlFormID] = &failure{after: after, err: err}
}

// Form returns the definition registered under xmlFormID.
func (m *Memory) Form(ctx context.Context, xmlFormID string) (*model.Form, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	form, ok := m.forms[xmlFormID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrFormNotFound, xmlFormID)
	}
	return form, nil
}

// Count returns the total number of submissions stored for xmlFormID,
// ignoring any window.
func (m *Memory) Count(ctx context.Context, xmlFormID string) (int64, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.submissions[xmlFormID])), nil
}

// Stream sends xmlFormID's submissions in insertion order, restricted to
// the given window. limit odata.NoLimit means unbounded; offsets past the
// end yield an empty stream. The channel closes on a clean end; an
// injected fault arrives in-band as a RowResult error.
func (m *Memory) Stream(ctx context.Context, xmlFormID string, offset, limit int64) <-chan odata.RowResult {
	m.mu.RLock()
	window := windowOf(m.submissions[xmlFormID], offset, limit)
	fault := m.failures[xmlFormID]
	m.mu.RUnlock()

	rows := make(chan odata.RowResult)
	go func() {
		defer close(rows)
		for i, sub := range window {
			if fault != nil && i == fault.after {
				send(ctx, rows, odata.RowResult{Err: fault.err})
				return
			}
			if !send(ctx, rows, odata.RowResult{Submission: sub}) {
				return
			}
		}
		if fault != nil && len(window) == fault.after {
			send(ctx, rows, odata.RowResult{Err: fault.err})
		}
	}()
	return rows
}

func send(ctx context.Context, rows chan<- odata.RowResult, row odata.RowResult) bool {
	select {
	case rows <- row:
		return true
	case <-ctx.Done():
		return false
	}
}

func windowOf(subs []*model.Submission, offset, limit int64) []*model.Submission {
	if offset < 0 {
		offset = 0
	}
	if offset >= int64(len(subs)) {
		return nil
	}

	window := subs[offset:]
	if limit != odata.NoLimit && limit < int64(len(window)) {
		window = window[:limit]
	}
	return window
}
