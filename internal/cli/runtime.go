package cli

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/text/language"

	"github.com/arthur-debert/jsploader/pkg/cms"
	"github.com/arthur-debert/jsploader/pkg/config"
	"github.com/arthur-debert/jsploader/pkg/engine"
	"github.com/arthur-debert/jsploader/pkg/filesystem"
	"github.com/arthur-debert/jsploader/pkg/flex"
	"github.com/arthur-debert/jsploader/pkg/loader"
	"github.com/arthur-debert/jsploader/pkg/logging"
	"github.com/arthur-debert/jsploader/pkg/metrics"
	"github.com/arthur-debert/jsploader/pkg/vfs"
)

// runtime is everything a command needs to drive the loader
type runtime struct {
	app      *config.App
	tree     *vfs.Tree
	loader   *loader.JspLoader
	registry *prometheus.Registry
}

// newRuntime loads the configuration at configPath and initialises a loader
// backed by the passthrough engine.
func newRuntime(configPath string) (*runtime, error) {
	logger := logging.GetLogger("cli")

	app, err := config.LoadApp(configPath)
	if err != nil {
		return nil, fmt.Errorf(MsgErrConfig, err)
	}
	logger.Debug().
		Str("vfs", app.VFS.Root).
		Str("webapp", app.System.Webapp).
		Msg("Configuration loaded")
	rt, err := buildRuntime(app, filesystem.NewOS())
	if err != nil {
		return nil, fmt.Errorf(MsgErrRuntime, err)
	}
	return rt, nil
}

func buildRuntime(app *config.App, rfs filesystem.FS) (*runtime, error) {
	tree, err := vfs.Open(app.VFS.Root, app.VFS.Manifest)
	if err != nil {
		return nil, err
	}
	cache, err := flex.NewLRUCache(app.Cache.Size)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	m := metrics.New()
	m.RegisterMetrics(registry)

	l := loader.New()
	params, err := app.LoaderParams()
	if err != nil {
		return nil, err
	}
	for _, p := range params {
		if err := l.AddConfigurationParameter(p.Name, p.Value); err != nil {
			return nil, err
		}
	}

	err = l.Initialize(loader.Runtime{
		System: cms.SystemInfo{
			DefaultEncoding:       app.System.Encoding,
			WebApplicationRfsPath: app.System.Webapp,
		},
		Cache:      cache,
		Dispatcher: engine.NewPassthrough(rfs),
		RFS:        rfs,
		Metrics:    m,
	})
	if err != nil {
		return nil, err
	}

	return &runtime{app: app, tree: tree, loader: l, registry: registry}, nil
}

// cmsFor returns a CMS handle for path in the given realm
func (rt *runtime) cmsFor(path string, online bool, encoding string, locale language.Tag) *cms.Object {
	if encoding == "" {
		encoding = rt.app.System.Encoding
	}
	return cms.New(rt.tree, cms.RequestContext{
		URI:      path,
		Encoding: encoding,
		Online:   online,
		Locale:   locale,
	})
}

// offlineRequest builds the transport request a command runs under
func offlineRequest(ctx context.Context, path string, recompile bool) (*http.Request, error) {
	u := &url.URL{Path: path}
	if recompile {
		u.RawQuery = url.Values{flex.RecompileParam: {flex.RecompileValue}}.Encode()
	}
	return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
}
