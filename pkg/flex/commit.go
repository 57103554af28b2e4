package flex

import (
	"bufio"
	"net"
	"net/http"
)

// TrackedWriter records whether anything reached the underlying response
type TrackedWriter struct {
	http.ResponseWriter
	committed bool
}

// Track wraps w for commit tracking. An already tracked writer is returned
// unchanged.
func Track(w http.ResponseWriter) *TrackedWriter {
	if tw, ok := w.(*TrackedWriter); ok {
		return tw
	}
	return &TrackedWriter{ResponseWriter: w}
}

// Committed reports whether the status line or body has been sent
func (w *TrackedWriter) Committed() bool { return w.committed }

// WriteHeader commits the response
func (w *TrackedWriter) WriteHeader(code int) {
	w.committed = true
	w.ResponseWriter.WriteHeader(code)
}

// Write commits the response
func (w *TrackedWriter) Write(p []byte) (int, error) {
	w.committed = true
	return w.ResponseWriter.Write(p)
}

// Flush commits the response if the underlying writer can flush
func (w *TrackedWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		w.committed = true
		f.Flush()
	}
}

// Hijack hands the connection over when the underlying writer supports it
func (w *TrackedWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		w.committed = true
		return h.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Unwrap exposes the underlying writer to http.ResponseController
func (w *TrackedWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
