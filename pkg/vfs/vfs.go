// Package vfs defines how the loader reads the content-management virtual
// file system, and provides a tree implementation backed by afero.
//
// The loader only ever reads: resource headers (path, last modification),
// contents and properties. Paths are absolute and slash separated.
package vfs

import (
	"time"
)

// Property names the loader reads
const (
	// PropertyStream selects streaming, bypass or cached delivery
	PropertyStream = "stream"

	// PropertyContentEncoding is the storage encoding of a template
	PropertyContentEncoding = "content-encoding"
)

// Resource is the header of a VFS file
type Resource struct {
	// Path is the absolute VFS path
	Path string

	// LastModified is the time the contents last changed
	LastModified time.Time

	// Size is the length of the contents in bytes
	Size int64
}

// FS gives read access to VFS resources
type FS interface {
	// ReadResource returns the header of the file at path
	ReadResource(path string) (*Resource, error)

	// ReadFile returns the contents of the file at path
	ReadFile(path string) ([]byte, error)

	// ReadProperty returns the value of a property set directly on path,
	// or "" when it is not set.
	ReadProperty(path, name string) (string, error)
}
