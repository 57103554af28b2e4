package loader

import (
	"context"
	"maps"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/jsploader/pkg/cms"
	"github.com/arthur-debert/jsploader/pkg/config"
	"github.com/arthur-debert/jsploader/pkg/engine"
	"github.com/arthur-debert/jsploader/pkg/errors"
	"github.com/arthur-debert/jsploader/pkg/filesystem"
	"github.com/arthur-debert/jsploader/pkg/flex"
	"github.com/arthur-debert/jsploader/pkg/logging"
	"github.com/arthur-debert/jsploader/pkg/materialise"
	"github.com/arthur-debert/jsploader/pkg/metrics"
	"github.com/arthur-debert/jsploader/pkg/paths"
	"github.com/arthur-debert/jsploader/pkg/vfs"
)

const (
	// LoaderID identifies the JSP loader in the loader registry
	LoaderID = 6

	// ResourceLoaderInfo describes the loader
	ResourceLoaderInfo = "The OpenCms default resource loader for JSP"
)

// Runtime is what the host hands the loader at initialisation
type Runtime struct {
	System     cms.SystemInfo
	Cache      flex.Cache
	Dispatcher engine.Dispatcher

	// RFS defaults to the operating system filesystem
	RFS filesystem.FS

	// Metrics may be nil
	Metrics *metrics.Metrics
}

// JspLoader loads JSP templates from the VFS
type JspLoader struct {
	mu            sync.RWMutex
	configuration map[string]string
	initialized   bool

	repo               *paths.Repository
	errorPageCommitted bool
	system             cms.SystemInfo
	cache              flex.Cache
	dispatcher         engine.Dispatcher
	materialiser       *materialise.Materialiser
	metrics            *metrics.Metrics

	logger zerolog.Logger
}

// New creates an uninitialised loader
func New() *JspLoader {
	return &JspLoader{
		configuration: make(map[string]string),
		logger:        logging.GetLogger("loader"),
	}
}

// LoaderID returns LoaderID
func (l *JspLoader) LoaderID() int { return LoaderID }

// ResourceLoaderInfo returns ResourceLoaderInfo
func (l *JspLoader) ResourceLoaderInfo() string { return ResourceLoaderInfo }

// IsStaticExportEnabled reports that JSP output can be exported
func (l *JspLoader) IsStaticExportEnabled() bool { return true }

// IsUsableForTemplates reports that JSPs can serve as templates
func (l *JspLoader) IsUsableForTemplates() bool { return true }

// IsUsingUriWhenLoadingTemplate reports that the template, not the
// requested URI, is loaded
func (l *JspLoader) IsUsingUriWhenLoadingTemplate() bool { return false }

// AddConfigurationParameter records a configuration parameter. A repeated
// name keeps the last value. Parameters cannot change after Initialize.
func (l *JspLoader) AddConfigurationParameter(name, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.initialized {
		return errors.Newf(errors.ErrAlreadyInitialized, "cannot set %s after initialisation", name).
			WithDetail("name", name)
	}
	l.configuration[name] = value
	return nil
}

// Configuration returns a copy of the configured parameters
func (l *JspLoader) Configuration() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return maps.Clone(l.configuration)
}

// Initialize resolves the repository from the configuration and captures
// the runtime collaborators. jsp.repository defaults to the web application
// path of the host.
func (l *JspLoader) Initialize(rt Runtime) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.initialized {
		return errors.New(errors.ErrAlreadyInitialized, "loader is already initialized")
	}
	if rt.Dispatcher == nil {
		return errors.New(errors.ErrConfigInvalid, "runtime has no dispatcher")
	}

	params, err := config.LoadParams(l.configuration)
	if err != nil {
		return err
	}

	repository := params.Repository()
	if repository == "" {
		repository = rt.System.WebApplicationRfsPath
	}
	repo, err := paths.NewRepository(repository, params.Folder())
	if err != nil {
		return err
	}

	rfs := rt.RFS
	if rfs == nil {
		rfs = filesystem.NewOS()
	}
	if rt.System.DefaultEncoding == "" {
		rt.System.DefaultEncoding = cms.DefaultEncoding
	}

	l.repo = repo
	l.errorPageCommitted = params.ErrorPageCommitted()
	l.system = rt.System
	l.cache = rt.Cache
	l.dispatcher = rt.Dispatcher
	l.metrics = rt.Metrics
	l.materialiser = materialise.New(repo, rfs, rt.System.DefaultEncoding, rt.Metrics)
	l.initialized = true

	if binder, ok := rt.Dispatcher.(interface{ Bind(engine.Host) }); ok {
		binder.Bind(l)
	}

	l.logger.Info().
		Str("repository", repo.Root()).
		Str("web_path", repo.WebPath()).
		Bool("errorpage_committed", l.errorPageCommitted).
		Msg("JSP loader initialized")
	return nil
}

// Destroy releases nothing; it exists for symmetry with Initialize
func (l *JspLoader) Destroy() {
	l.logger.Debug().Msg("JSP loader destroyed")
}

// Repository returns the repository, nil before Initialize
func (l *JspLoader) Repository() *paths.Repository {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.repo
}

// ErrorPageCommitted returns the jsp.errorpage.committed setting
func (l *JspLoader) ErrorPageCommitted() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.errorPageCommitted
}

// Materialise brings the RFS copy of resource up to date and returns its
// web URI. req may be nil, in which case the realm of the CMS request
// context is used.
func (l *JspLoader) Materialise(ctx context.Context, cmsObject *cms.Object, resource *vfs.Resource, req *flex.Request) (string, error) {
	if err := l.ready(); err != nil {
		return "", err
	}
	return l.materialiser.Materialise(ctx, cmsObject, resource, req, nil)
}

// Service materialises resource and includes the RFS copy into w. It must
// run inside a Flex transaction: the current response is switched to
// only-buffering.
func (l *JspLoader) Service(ctx context.Context, cmsObject *cms.Object, resource *vfs.Resource, r *http.Request, w http.ResponseWriter) error {
	if err := l.ready(); err != nil {
		return err
	}
	c := flex.ControllerFrom(r)
	if c == nil {
		return errors.Newf(errors.ErrNoController, "no flex controller while servicing %s", resource.Path).
			WithDetail("path", resource.Path)
	}

	target, err := l.materialiser.Materialise(ctx, cmsObject, resource, c.CurrentRequest(), nil)
	if err != nil {
		return err
	}
	if res := c.CurrentResponse(); res != nil {
		res.SetOnlyBuffering(true)
	}
	return l.dispatcher.IncludeExternal(ctx, target, r, w)
}

func (l *JspLoader) ready() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.initialized {
		return errors.New(errors.ErrNotInitialized, "loader is not initialized")
	}
	return nil
}
