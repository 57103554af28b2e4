package filesystem

import (
	"errors"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// FS is the subset of filesystem operations the materialiser needs
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	MkdirAll(path string, perm fs.FileMode) error

	// CheckReadableDir returns nil when path is a directory that can be listed
	CheckReadableDir(path string) error

	// WriteFileAtomic replaces name with data so that readers see either the
	// old or the new contents, never a partial write.
	WriteFileAtomic(name string, data []byte, perm fs.FileMode) error
}

// aferoFS implements FS using afero
type aferoFS struct {
	fs afero.Fs
}

// NewAferoFS creates a new afero filesystem implementation
func NewAferoFS(fs afero.Fs) FS {
	return &aferoFS{fs: fs}
}

// NewOS creates a filesystem backed by the operating system
func NewOS() FS {
	return &aferoFS{fs: afero.NewOsFs()}
}

// NewMemory creates an empty in-memory filesystem
func NewMemory() FS {
	return &aferoFS{fs: afero.NewMemMapFs()}
}

func (a *aferoFS) Stat(name string) (fs.FileInfo, error) {
	return a.fs.Stat(name)
}

func (a *aferoFS) ReadFile(name string) ([]byte, error) {
	info, err := a.fs.Stat(name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	return afero.ReadFile(a.fs, name)
}

func (a *aferoFS) MkdirAll(path string, perm fs.FileMode) error {
	return a.fs.MkdirAll(path, perm)
}

func (a *aferoFS) CheckReadableDir(path string) error {
	info, err := a.fs.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "open", Path: path, Err: fs.ErrInvalid}
	}
	f, err := a.fs.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (a *aferoFS) WriteFileAtomic(name string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(name)
	tmp, err := afero.TempFile(a.fs, dir, ".jsploader-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = a.fs.Remove(tmpName) // best-effort cleanup
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = a.fs.Remove(tmpName) // best-effort cleanup
		return err
	}
	_ = a.fs.Chmod(tmpName, perm) // TempFile creates 0600

	if err := a.fs.Rename(tmpName, name); err != nil {
		_ = a.fs.Remove(tmpName) // best-effort cleanup
		return err
	}
	return nil
}
