package cli

import (
	"io"
	"net/http"
)

// consoleWriter is the transport response of commands that run outside a
// server: headers are kept, the body goes to out.
type consoleWriter struct {
	out    io.Writer
	header http.Header
	status int
}

func newConsoleWriter(out io.Writer) *consoleWriter {
	return &consoleWriter{out: out, header: make(http.Header)}
}

func (w *consoleWriter) Header() http.Header { return w.header }

func (w *consoleWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
}

func (w *consoleWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.out.Write(p)
}
