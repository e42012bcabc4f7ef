package web

import (
	"io"
	"net/http"
)

// flushWriter flushes after every write so feed output reaches the client
// row by row instead of pooling in server buffers. It also remembers
// whether anything went out, which decides how a late failure can be
// reported.
type flushWriter struct {
	w       io.Writer
	flusher http.Flusher
	wrote   bool
}

func newFlushWriter(w http.ResponseWriter) *flushWriter {
	fw := &flushWriter{w: w}
	if flusher, ok := w.(http.Flusher); ok {
		fw.flusher = flusher
	}
	return fw
}

func (fw *flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if n > 0 {
		fw.wrote = true
	}
	if fw.flusher != nil {
		fw.flusher.Flush()
	}
	return n, err
}
