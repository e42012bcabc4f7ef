package cache

import (
	"context"
	"fmt"
	"time"
)

// Kind names one cacheable rendered document flavor.
type Kind string

const (
	// KindService is the XML service document.
	KindService Kind = "service"
	// KindEDMX is the metadata document.
	KindEDMX Kind = "edmx"
)

// Documents caches rendered OData documents per form. A nil backend
// disables caching entirely: every lookup renders.
type Documents struct {
	backend Cache
	ttl     time.Duration
}

// NewDocuments wraps a backend. ttl 0 defers to the backend's default.
func NewDocuments(backend Cache, ttl time.Duration) *Documents {
	return &Documents{backend: backend, ttl: ttl}
}

// GetOrRender returns the cached document for key, rendering and storing
// it on a miss. Backend failures on either side degrade to rendering; the
// cache must never fail a request the renderer could serve.
func (d *Documents) GetOrRender(ctx context.Context, key string, render func() (string, error)) (string, error) {
	if d.backend == nil {
		return render()
	}

	if cached, err := d.backend.Get(ctx, key); err == nil {
		return string(cached), nil
	}

	doc, err := render()
	if err != nil {
		return "", err
	}

	// Best effort: a failed store costs a future render, nothing more.
	_ = d.backend.Set(ctx, key, []byte(doc), d.ttl)

	return doc, nil
}

// Invalidate drops the cached document for key.
func (d *Documents) Invalidate(ctx context.Context, key string) error {
	if d.backend == nil {
		return nil
	}
	return d.backend.Delete(ctx, key)
}

// DocumentKey builds the cache key for one form's rendered document. The
// service document embeds the request path in its context URL, so the path
// is part of the identity; the metadata document does not, and callers
// pass "" for it.
func DocumentKey(formID string, kind Kind, servicePath string) string {
	return fmt.Sprintf("doc:%s:%s:%s", formID, kind, servicePath)
}
