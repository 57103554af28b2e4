// Package cms models the content-management runtime the loader is embedded
// in: the per-request handle used to read the VFS and the request context
// it carries.
package cms

import (
	"golang.org/x/text/language"

	"github.com/arthur-debert/jsploader/pkg/vfs"
)

// DefaultEncoding is the CMS-wide encoding assumed when none is configured
const DefaultEncoding = "UTF-8"

// SystemInfo describes the host installation
type SystemInfo struct {
	// DefaultEncoding is the encoding all VFS bytes are authored in
	DefaultEncoding string

	// WebApplicationRfsPath is the RFS directory of the web application
	WebApplicationRfsPath string
}

// RequestContext is the CMS view of the request being served
type RequestContext struct {
	// URI is the VFS path that was requested
	URI string

	// Encoding is the output encoding of the request
	Encoding string

	// Online is true when the published project is being served
	Online bool

	// Locale is the locale the request is rendered for
	Locale language.Tag
}

// Object is the per-request CMS handle
type Object struct {
	fs      vfs.FS
	context *RequestContext
}

// New creates a handle reading from fs within the given request context
func New(fs vfs.FS, context RequestContext) *Object {
	if context.Encoding == "" {
		context.Encoding = DefaultEncoding
	}
	return &Object{fs: fs, context: &context}
}

// RequestContext returns the request context of the handle
func (o *Object) RequestContext() *RequestContext {
	return o.context
}

// ReadResource returns the header of a VFS file
func (o *Object) ReadResource(path string) (*vfs.Resource, error) {
	return o.fs.ReadResource(path)
}

// ReadFile returns the contents of a VFS file
func (o *Object) ReadFile(path string) ([]byte, error) {
	return o.fs.ReadFile(path)
}

// ReadProperty returns a property set directly on a VFS file, or ""
func (o *Object) ReadProperty(path, name string) (string, error) {
	return o.fs.ReadProperty(path, name)
}
