package flex

import (
	"bytes"
	"net/http"
)

// Response buffers the output of one element. Streaming responses also pass
// output through to their parent as it is written, unless the response has
// been switched to only-buffering.
type Response struct {
	parent     http.ResponseWriter
	controller *Controller

	header http.Header
	status int
	buf    bytes.Buffer

	streaming     bool
	topElement    bool
	suspended     bool
	onlyBuffering bool
	headersSent   bool
}

// NewResponse wraps parent for controller c
func NewResponse(parent http.ResponseWriter, c *Controller, streaming, topElement bool) *Response {
	return &Response{
		parent:     parent,
		controller: c,
		header:     make(http.Header),
		streaming:  streaming,
		topElement: topElement,
	}
}

// Header returns the buffered headers
func (r *Response) Header() http.Header { return r.header }

// WriteHeader records the status code
func (r *Response) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	if r.passThrough() {
		r.sendHeaders()
	}
}

// Write buffers p and passes it through when streaming
func (r *Response) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, _ := r.buf.Write(p)
	if r.passThrough() {
		r.sendHeaders()
		return r.parent.Write(p)
	}
	return n, nil
}

// Flush forwards a flush to the parent when streaming
func (r *Response) Flush() {
	if !r.passThrough() {
		return
	}
	r.sendHeaders()
	if f, ok := r.parent.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *Response) passThrough() bool {
	return r.streaming && !r.onlyBuffering && !r.suspended && r.parent != nil
}

func (r *Response) sendHeaders() {
	if r.headersSent {
		return
	}
	r.headersSent = true
	ProcessHeaders(r.header, r.parent)
	if r.status != 0 {
		r.parent.WriteHeader(r.status)
	}
}

// Parent returns the response this one writes through to
func (r *Response) Parent() http.ResponseWriter { return r.parent }

// Controller returns the owning controller
func (r *Response) Controller() *Controller { return r.controller }

// WriterBytes returns a copy of everything written so far
func (r *Response) WriterBytes() []byte {
	return bytes.Clone(r.buf.Bytes())
}

// Headers returns the buffered headers
func (r *Response) Headers() http.Header { return r.header }

// Status returns the recorded status, or 0 when none was set
func (r *Response) Status() int { return r.status }

// HasStatus reports whether a status was recorded
func (r *Response) HasStatus() bool { return r.status != 0 }

// IsStreaming reports whether output passes through as it is written
func (r *Response) IsStreaming() bool { return r.streaming }

// IsTopElement reports whether this is the outermost element response
func (r *Response) IsTopElement() bool { return r.topElement }

// IsSuspended reports whether the output must not be transmitted
func (r *Response) IsSuspended() bool { return r.suspended }

// SetSuspended marks the output as not to be transmitted
func (r *Response) SetSuspended(suspended bool) { r.suspended = suspended }

// IsOnlyBuffering reports whether pass-through is disabled
func (r *Response) IsOnlyBuffering() bool { return r.onlyBuffering }

// SetOnlyBuffering disables or re-enables pass-through
func (r *Response) SetOnlyBuffering(only bool) { r.onlyBuffering = only }

// HeadersSent reports whether headers already reached the parent
func (r *Response) HeadersSent() bool { return r.headersSent }
