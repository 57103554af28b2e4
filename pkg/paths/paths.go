package paths

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/jsploader/pkg/errors"
)

const (
	// Extension is appended to every VFS path to name its materialised copy
	Extension = ".jsp"

	// DefaultFolder is the web-application relative folder holding the
	// materialised templates
	DefaultFolder = "/WEB-INF/jsp/"
)

// Realm selects the online or offline materialisation tree
type Realm int

const (
	// Offline is the realm of the editing project
	Offline Realm = iota
	// Online is the realm of the published project
	Online
)

// RealmOf returns Online when online is true, Offline otherwise
func RealmOf(online bool) Realm {
	if online {
		return Online
	}
	return Offline
}

// String returns the directory name of the realm
func (r Realm) String() string {
	if r == Online {
		return "online"
	}
	return "offline"
}

// Repository holds the immutable location of the materialised template tree
type Repository struct {
	// root is the absolute, OS-normalised RFS directory, with a trailing separator
	root string

	// webPath is the web-application relative folder, with a trailing slash
	webPath string
}

// NewRepository builds a Repository from the jsp.repository and jsp.folder
// settings. A missing trailing slash on folder is added.
func NewRepository(repository, folder string) (*Repository, error) {
	if repository == "" {
		return nil, errors.New(errors.ErrConfigInvalid, "jsp repository path cannot be empty")
	}
	if folder == "" {
		folder = DefaultFolder
	}
	if !strings.HasSuffix(folder, "/") {
		folder += "/"
	}

	root, err := NormalizeRfsPath(repository + folder)
	if err != nil {
		return nil, err
	}

	return &Repository{
		root:    root,
		webPath: folder,
	}, nil
}

// NormalizeRfsPath converts a slash separated path to an absolute path in
// the host's notation, keeping a trailing separator.
func NormalizeRfsPath(path string) (string, error) {
	abs, err := filepath.Abs(filepath.FromSlash(path))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrConfigInvalid, "failed to get absolute path for %s", path)
	}
	if !strings.HasSuffix(abs, string(filepath.Separator)) {
		abs += string(filepath.Separator)
	}
	return abs, nil
}

// Root returns the absolute RFS directory of the repository
func (r *Repository) Root() string {
	return r.root
}

// WebPath returns the web-application relative repository folder
func (r *Repository) WebPath() string {
	return r.webPath
}

// Name returns the name of the materialised copy of a VFS path
func Name(vfsPath string) string {
	return vfsPath + Extension
}

// RfsPath returns the absolute RFS location of the materialised copy of
// vfsPath in the given realm.
func (r *Repository) RfsPath(vfsPath string, realm Realm) string {
	return filepath.Join(r.root, realm.String(), filepath.FromSlash(Name(vfsPath)))
}

// RealmRoot returns the absolute RFS directory of a realm subtree
func (r *Repository) RealmRoot(realm Realm) string {
	return filepath.Join(r.root, realm.String())
}

// WebURI returns the URI under which the template engine finds the
// materialised copy of vfsPath. Forward slashes are used on every host.
func (r *Repository) WebURI(vfsPath string, realm Realm) string {
	var b strings.Builder
	b.Grow(len(r.webPath) + len(vfsPath) + 12)
	b.WriteString(strings.TrimSuffix(r.webPath, "/"))
	b.WriteByte('/')
	b.WriteString(realm.String())
	if !strings.HasPrefix(vfsPath, "/") {
		b.WriteByte('/')
	}
	b.WriteString(Name(vfsPath))
	return b.String()
}

// RfsPathForWebURI maps a URI produced by WebURI back to its RFS location.
// It reports false for URIs outside the repository folder.
func (r *Repository) RfsPathForWebURI(uri string) (string, bool) {
	rest, ok := strings.CutPrefix(uri, r.webPath)
	if !ok || rest == "" {
		return "", false
	}
	for _, segment := range strings.Split(rest, "/") {
		if segment == ".." {
			return "", false
		}
	}
	return filepath.Join(r.root, filepath.FromSlash(rest)), true
}
