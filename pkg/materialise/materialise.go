package materialise

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/jsploader/pkg/charset"
	"github.com/arthur-debert/jsploader/pkg/cms"
	"github.com/arthur-debert/jsploader/pkg/directive"
	"github.com/arthur-debert/jsploader/pkg/errors"
	"github.com/arthur-debert/jsploader/pkg/filesystem"
	"github.com/arthur-debert/jsploader/pkg/flex"
	"github.com/arthur-debert/jsploader/pkg/logging"
	"github.com/arthur-debert/jsploader/pkg/metrics"
	"github.com/arthur-debert/jsploader/pkg/paths"
	"github.com/arthur-debert/jsploader/pkg/vfs"
)

const (
	dirPerm  fs.FileMode = 0755
	filePerm fs.FileMode = 0644
)

// VisitState records how far a template got during one top-level call.
type VisitState int

const (
	// Visiting marks a template whose materialisation is still running.
	Visiting VisitState = iota
	// Done marks a template whose RFS copy is current.
	Done
	// Failed marks a template that could not be materialised.
	Failed
)

// Visited maps the materialised names seen during one top-level call to
// their state.
type Visited map[string]VisitState

// Materialiser keeps the RFS repository in sync with the VFS
type Materialiser struct {
	repo           *paths.Repository
	rfs            filesystem.FS
	systemEncoding string
	metrics        *metrics.Metrics
	logger         zerolog.Logger

	mu sync.Mutex
}

// New creates a Materialiser writing below repo. VFS bytes are assumed to
// be in systemEncoding. m may be nil.
func New(repo *paths.Repository, rfs filesystem.FS, systemEncoding string, m *metrics.Metrics) *Materialiser {
	if systemEncoding == "" {
		systemEncoding = cms.DefaultEncoding
	}
	return &Materialiser{
		repo:           repo,
		rfs:            rfs,
		systemEncoding: systemEncoding,
		metrics:        m,
		logger:         logging.GetLogger("materialise"),
	}
}

// Repository returns the repository the materialiser writes to
func (m *Materialiser) Repository() *paths.Repository {
	return m.repo
}

// Materialise brings the RFS copy of resource up to date and returns the
// web URI under which the engine finds it. It returns "" when resource was
// already visited. A nil visited set starts a new top-level call.
//
// The realm and the recompile marker come from req; without a request the
// realm of the CMS request context is used.
func (m *Materialiser) Materialise(ctx context.Context, cmsObject *cms.Object, resource *vfs.Resource, req *flex.Request, visited Visited) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(err, errors.ErrClientDisconnect, "materialisation canceled")
	}
	if resource == nil {
		return "", errors.New(errors.ErrInvalidInput, "resource cannot be nil")
	}
	if visited == nil {
		visited = Visited{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.update(cmsObject, resource, req, visited)
}

func (m *Materialiser) update(cmsObject *cms.Object, resource *vfs.Resource, req *flex.Request, visited Visited) (string, error) {
	logger := m.logger.With().Str("path", resource.Path).Logger()

	target := paths.Name(resource.Path)
	if _, ok := visited[target]; ok {
		logger.Debug().Msg("Template already visited")
		return "", nil
	}
	visited[target] = Visiting

	uri, err := m.refresh(cmsObject, resource, req, visited)
	if err != nil {
		visited[target] = Failed
		return "", err
	}
	visited[target] = Done
	return uri, nil
}

func (m *Materialiser) refresh(cmsObject *cms.Object, resource *vfs.Resource, req *flex.Request, visited Visited) (string, error) {
	logger := m.logger.With().Str("path", resource.Path).Logger()

	if err := paths.ValidateVFSPath(resource.Path); err != nil {
		m.metrics.ObserveMaterialisation(metrics.ResultFailed)
		return "", err
	}

	realm := realmOf(cmsObject, req)
	rfsPath := m.repo.RfsPath(resource.Path, realm)
	uri := m.repo.WebURI(resource.Path, realm)

	if err := m.prepareDir(filepath.Dir(rfsPath)); err != nil {
		m.metrics.ObserveMaterialisation(metrics.ResultFailed)
		return "", err
	}

	if !m.mustUpdate(rfsPath, resource, req) {
		logger.Debug().Str("rfs_path", rfsPath).Msg("Template is up to date")
		m.metrics.ObserveMaterialisation(metrics.ResultCurrent)
		return uri, nil
	}

	out, err := m.render(cmsObject, resource, req, realm, visited)
	if err != nil {
		m.metrics.ObserveMaterialisation(metrics.ResultFailed)
		return "", err
	}

	if err := m.rfs.WriteFileAtomic(rfsPath, out, filePerm); err != nil {
		m.metrics.ObserveMaterialisation(metrics.ResultFailed)
		return "", errors.Wrapf(err, errors.ErrIOWrite, "failed to write %s", rfsPath).
			WithDetail("path", resource.Path).
			WithDetail("rfs_path", rfsPath)
	}

	m.metrics.ObserveMaterialisation(metrics.ResultUpdated)
	logger.Info().
		Str("rfs_path", rfsPath).
		Str("realm", realm.String()).
		Int("bytes", len(out)).
		Msg("Updated JSP file")
	return uri, nil
}

// prepareDir creates dir when it is missing and checks it is a readable
// directory otherwise.
func (m *Materialiser) prepareDir(dir string) error {
	if _, err := m.rfs.Stat(dir); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(err, errors.ErrIOSetup, "failed to access %s", dir).
				WithDetail("dir", dir)
		}
		if err := m.rfs.MkdirAll(dir, dirPerm); err != nil {
			return errors.Wrapf(err, errors.ErrIOSetup, "failed to create %s", dir).
				WithDetail("dir", dir)
		}
		return nil
	}
	if err := m.rfs.CheckReadableDir(dir); err != nil {
		return errors.Wrapf(err, errors.ErrIOSetup, "%s is not a readable directory", dir).
			WithDetail("dir", dir)
	}
	return nil
}

func (m *Materialiser) mustUpdate(rfsPath string, resource *vfs.Resource, req *flex.Request) bool {
	if req != nil && req.IsDoRecompile() {
		return true
	}
	info, err := m.rfs.Stat(rfsPath)
	if err != nil {
		return true
	}
	return !info.ModTime().After(resource.LastModified)
}

// render reads the VFS contents of resource and returns the bytes of its
// materialised copy.
func (m *Materialiser) render(cmsObject *cms.Object, resource *vfs.Resource, req *flex.Request, realm paths.Realm, visited Visited) ([]byte, error) {
	defer logging.LogOperationStart(m.logger, "render "+resource.Path)()

	contents, err := cmsObject.ReadFile(resource.Path)
	if err != nil {
		return nil, vfsError(err, resource.Path, "failed to read contents of %s")
	}
	storage, err := cmsObject.ReadProperty(resource.Path, vfs.PropertyContentEncoding)
	if err != nil {
		return nil, vfsError(err, resource.Path, "failed to read encoding of %s")
	}
	storage = charset.Normalize(storage)

	text, err := charset.Decode(contents, m.systemEncoding)
	if err != nil {
		return nil, err
	}

	result := directive.Rewrite(text, m.resolver(cmsObject, resource, req, realm, visited))
	if result.Rewritten == 0 {
		return charset.Convert(contents, m.systemEncoding, storage)
	}
	m.logger.Debug().
		Str("path", resource.Path).
		Int("rewritten", result.Rewritten).
		Msg("Rewrote directives")
	return charset.Encode(result.Text, storage)
}

// resolver materialises the templates referenced from resource. A
// reference that cannot be materialised leaves its directive unchanged.
func (m *Materialiser) resolver(cmsObject *cms.Object, resource *vfs.Resource, req *flex.Request, realm paths.Realm, visited Visited) directive.Resolver {
	base := resource.Path
	if req != nil && req.ElementURI() != "" {
		base = req.ElementURI()
	}

	return func(form directive.Form, filename string) (string, bool) {
		logger := m.logger.With().
			Str("path", resource.Path).
			Str("directive", form.String()).
			Str("reference", filename).
			Logger()

		unresolved := func(err error, msg string) (string, bool) {
			err = errors.Wrapf(err, errors.ErrReference, "%s reference %q left unchanged", form, filename).
				WithDetail("path", resource.Path)
			logger.Debug().Err(err).Msg(msg)
			return "", false
		}

		target, err := paths.AbsoluteURI(filename, base)
		if err != nil {
			return unresolved(err, "Cannot resolve reference")
		}

		if state, ok := visited[paths.Name(target)]; ok {
			if state == Failed {
				err := errors.Newf(errors.ErrReference, "%s reference %q left unchanged", form, filename).
					WithDetail("target", target)
				logger.Debug().Err(err).Msg("Referenced template failed earlier")
				return "", false
			}
			m.metrics.ObserveRewrite(form.String())
			return m.repo.WebURI(target, realm), true
		}

		ref, err := cmsObject.ReadResource(target)
		if err != nil {
			return unresolved(err, "Cannot read referenced template")
		}

		uri, err := m.update(cmsObject, ref, req, visited)
		if err != nil {
			return unresolved(err, "Failed to materialise referenced template")
		}
		if uri == "" {
			return "", false
		}

		m.metrics.ObserveRewrite(form.String())
		return uri, true
	}
}

func realmOf(cmsObject *cms.Object, req *flex.Request) paths.Realm {
	if req != nil {
		return req.Realm()
	}
	if cmsObject != nil {
		return paths.RealmOf(cmsObject.RequestContext().Online)
	}
	return paths.Offline
}

func vfsError(err error, path, format string) error {
	if errors.IsErrorCode(err, errors.ErrVfsRead) || errors.IsErrorCode(err, errors.ErrInvalidPath) {
		return err
	}
	return errors.Wrapf(err, errors.ErrVfsRead, format, path).WithDetail("path", path)
}
