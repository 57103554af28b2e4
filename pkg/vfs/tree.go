package vfs

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/arthur-debert/jsploader/pkg/errors"
	"github.com/arthur-debert/jsploader/pkg/logging"
	"github.com/arthur-debert/jsploader/pkg/paths"
)

// Tree is a VFS whose files live in an afero filesystem and whose
// properties come from a manifest.
type Tree struct {
	fs afero.Fs

	mu    sync.RWMutex
	props Properties
}

// New creates a Tree over fsys. A nil props starts with no properties.
func New(fsys afero.Fs, props Properties) *Tree {
	if props == nil {
		props = Properties{}
	}
	return &Tree{fs: fsys, props: props}
}

// NewMemory creates an empty in-memory Tree
func NewMemory() *Tree {
	return New(afero.NewMemMapFs(), nil)
}

// Open creates a Tree rooted at an OS directory. The property manifest is
// read from manifest when given, otherwise from properties.toml or
// properties.yaml in root when present.
func Open(root, manifest string) (*Tree, error) {
	logger := logging.GetLogger("vfs")

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrVfsRead, "failed to access VFS root %s", root)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrVfsRead, "VFS root is not a directory: %s", root)
	}

	base := afero.NewBasePathFs(afero.NewOsFs(), root)

	if manifest == "" {
		for _, candidate := range ManifestNames {
			if _, err := os.Stat(filepath.Join(root, candidate)); err == nil {
				manifest = filepath.Join(root, candidate)
				break
			}
		}
	}

	props := Properties{}
	if manifest != "" {
		props, err = LoadManifest(afero.NewOsFs(), manifest)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("manifest", manifest).Int("resources", len(props)).Msg("Loaded property manifest")
	}

	return New(base, props), nil
}

// ReadResource implements FS
func (t *Tree) ReadResource(path string) (*Resource, error) {
	if err := paths.ValidateVFSPath(path); err != nil {
		return nil, err
	}
	info, err := t.fs.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrVfsRead, "failed to read resource %s", path).
			WithDetail("path", path)
	}
	if info.IsDir() {
		return nil, errors.Wrapf(&fs.PathError{Op: "read", Path: path, Err: fs.ErrInvalid},
			errors.ErrVfsRead, "resource %s is a folder", path)
	}
	return &Resource{
		Path:         path,
		LastModified: info.ModTime(),
		Size:         info.Size(),
	}, nil
}

// ReadFile implements FS
func (t *Tree) ReadFile(path string) ([]byte, error) {
	if err := paths.ValidateVFSPath(path); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(t.fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrVfsRead, "failed to read contents of %s", path).
			WithDetail("path", path)
	}
	return data, nil
}

// ReadProperty implements FS
func (t *Tree) ReadProperty(path, name string) (string, error) {
	if err := paths.ValidateVFSPath(path); err != nil {
		return "", err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.props[path][name], nil
}

// WriteFile stores contents at path, creating parent folders, and sets its
// modification time when modified is non-zero.
func (t *Tree) WriteFile(path string, contents []byte, modified time.Time) error {
	if err := paths.ValidateVFSPath(path); err != nil {
		return err
	}
	if err := t.fs.MkdirAll(filepath.Dir(filepath.FromSlash(path)), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "failed to create folder for %s", path)
	}
	if err := afero.WriteFile(t.fs, path, contents, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "failed to write %s", path)
	}
	if !modified.IsZero() {
		return t.Touch(path, modified)
	}
	return nil
}

// Touch sets the modification time of path
func (t *Tree) Touch(path string, modified time.Time) error {
	if err := t.fs.Chtimes(path, modified, modified); err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "failed to touch %s", path)
	}
	return nil
}

// SetProperty sets a property directly on path
func (t *Tree) SetProperty(path, name, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.props[path] == nil {
		t.props[path] = map[string]string{}
	}
	t.props[path][name] = value
}
