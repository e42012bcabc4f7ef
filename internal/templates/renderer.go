// Package templates provides the compile-once template renderer used by the
// OData document builders. A Renderer owns a fixed environment mapping and
// an inspectable cache of compiled handles; rendering merges the
// environment with per-call data and produces a string with no other side
// effects.
package templates

import (
	"bytes"
	"fmt"
	"regexp"
	"sync"
	"text/template"
)

// indentation matches a newline plus any horizontal whitespace that
// follows it.
var indentation = regexp.MustCompile("\n[ \t]*")

// Compiled is an immutable parsed template handle. Handles are safe for
// concurrent rendering.
type Compiled struct {
	name string
	tmpl *template.Template
}

// Name returns the identity the handle was compiled under.
func (c *Compiled) Name() string {
	return c.name
}

// Renderer compiles template bodies once and renders them against a merged
// environment and call context.
type Renderer struct {
	env map[string]interface{}

	mu       sync.RWMutex
	compiled map[string]*Compiled
}

// NewRenderer creates a renderer whose environment entries are available to
// every render call. Call-specific data shadows environment keys on
// conflict.
func NewRenderer(env map[string]interface{}) *Renderer {
	return &Renderer{
		env:      env,
		compiled: make(map[string]*Compiled),
	}
}

// Compile parses body and caches the handle under name. Compiling a name
// that is already cached returns the existing handle without re-parsing.
func (r *Renderer) Compile(name, body string) (*Compiled, error) {
	r.mu.RLock()
	cached, ok := r.compiled[name]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	tmpl, err := template.New(name).Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to compile template %s: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.compiled[name]; ok {
		return cached, nil
	}
	compiled := &Compiled{name: name, tmpl: tmpl}
	r.compiled[name] = compiled
	return compiled, nil
}

// MustCompile is Compile for bodies fixed at build time; it panics on a
// malformed body so broken templates surface at startup rather than
// per-request.
func (r *Renderer) MustCompile(name, body string) *Compiled {
	compiled, err := r.Compile(name, body)
	if err != nil {
		panic(err)
	}
	return compiled
}

// Lookup returns the cached handle for name, if one exists.
func (r *Renderer) Lookup(name string) (*Compiled, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	compiled, ok := r.compiled[name]
	return compiled, ok
}

// Render executes a compiled template against the renderer's environment
// merged with data. Data keys take precedence over environment keys.
func (r *Renderer) Render(compiled *Compiled, data map[string]interface{}) (string, error) {
	merged := make(map[string]interface{}, len(r.env)+len(data))
	for key, value := range r.env {
		merged[key] = value
	}
	for key, value := range data {
		merged[key] = value
	}

	var buf bytes.Buffer
	if err := compiled.tmpl.Execute(&buf, merged); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", compiled.name, err)
	}

	return buf.String(), nil
}

// StripWhitespace removes indentation following newlines. Template bodies
// written with source indentation pass through this before compilation
// when the output format cannot re-derive indentation for embedded
// fragments.
func StripWhitespace(body string) string {
	return indentation.ReplaceAllString(body, "\n")
}
