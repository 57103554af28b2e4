package engine

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/jsploader/pkg/errors"
	"github.com/arthur-debert/jsploader/pkg/filesystem"
	"github.com/arthur-debert/jsploader/pkg/flex"
	"github.com/arthur-debert/jsploader/pkg/logging"
)

// Passthrough is a Dispatcher that executes nothing: materialised templates
// are served byte for byte. VFS includes go through the Flex cache and the
// bound Host.
type Passthrough struct {
	rfs    filesystem.FS
	logger zerolog.Logger

	mu   sync.RWMutex
	host Host
}

// NewPassthrough creates an engine reading materialised templates from rfs
func NewPassthrough(rfs filesystem.FS) *Passthrough {
	return &Passthrough{
		rfs:    rfs,
		logger: logging.GetLogger("engine.passthrough"),
	}
}

// Bind connects the engine to the loader it dispatches back into
func (p *Passthrough) Bind(host Host) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.host = host
}

func (p *Passthrough) boundHost() (Host, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.host == nil {
		return nil, errors.New(errors.ErrNotInitialized, "engine is not bound to a loader")
	}
	return p.host, nil
}

// Include renders the VFS element target into w. Renderings are cached per
// realm and resource version unless the request asks for a recompile.
func (p *Passthrough) Include(ctx context.Context, target string, r *http.Request, w http.ResponseWriter) error {
	if err := canceled(ctx); err != nil {
		return err
	}
	host, err := p.boundHost()
	if err != nil {
		return err
	}
	c := flex.ControllerFrom(r)
	if c == nil {
		return errors.Newf(errors.ErrNoController, "no flex controller for include of %s", target)
	}

	parent := c.CurrentRequest()
	if parent == nil {
		parent = flex.NewRequest(r, c)
	}

	resource, err := c.Cms().ReadResource(target)
	if err != nil {
		return err
	}

	key := CacheKey(parent.Realm(), resource.Path, resource.LastModified)
	cache := c.Cache()
	if cache != nil && !parent.IsDoRecompile() {
		if entry, ok := cache.Get(key); ok {
			p.logger.Debug().Str("target", target).Msg("Serving include from flex cache")
			return replay(entry, w)
		}
	}

	nested := flex.NewResponse(w, c, false, false)
	c.PushRequest(parent.WithElementURI(resource.Path))
	c.PushResponse(nested)
	defer func() {
		c.PopResponse()
		c.PopRequest()
	}()

	if err := host.Service(ctx, c.Cms(), resource, r, nested); err != nil {
		return err
	}
	if nested.IsSuspended() {
		return nil
	}

	entry := &flex.Entry{
		Body:    nested.WriterBytes(),
		Header:  nested.Headers().Clone(),
		Status:  nested.Status(),
		Created: resource.LastModified,
	}
	if cache != nil {
		cache.Put(key, entry)
	}
	return replay(entry, w)
}

// Forward serves the materialised template at webURI as the whole response
func (p *Passthrough) Forward(ctx context.Context, webURI string, r *http.Request, w http.ResponseWriter) error {
	if err := canceled(ctx); err != nil {
		return err
	}
	body, err := p.read(webURI)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		return errors.Wrapf(err, errors.ErrDispatch, "failed to forward %s", webURI)
	}
	p.logger.Debug().Str("uri", webURI).Int("bytes", len(body)).Msg("Forwarded request")
	return nil
}

// IncludeExternal writes the materialised template at webURI into w
func (p *Passthrough) IncludeExternal(ctx context.Context, webURI string, r *http.Request, w http.ResponseWriter) error {
	if err := canceled(ctx); err != nil {
		return err
	}
	body, err := p.read(webURI)
	if err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return errors.Wrapf(err, errors.ErrDispatch, "failed to include %s", webURI)
	}
	return nil
}

func (p *Passthrough) read(webURI string) ([]byte, error) {
	host, err := p.boundHost()
	if err != nil {
		return nil, err
	}
	rfsPath, ok := host.Repository().RfsPathForWebURI(webURI)
	if !ok {
		return nil, errors.Newf(errors.ErrDispatch, "%s is not a materialised template", webURI).
			WithDetail("uri", webURI)
	}
	body, err := p.rfs.ReadFile(rfsPath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrDispatch, "failed to read %s", rfsPath).
			WithDetail("uri", webURI)
	}
	return body, nil
}

func replay(entry *flex.Entry, w http.ResponseWriter) error {
	flex.ProcessHeaders(entry.Header, w)
	if entry.Status != 0 && entry.Status != http.StatusOK {
		w.WriteHeader(entry.Status)
	}
	if _, err := w.Write(entry.Body); err != nil {
		return errors.Wrap(err, errors.ErrDispatch, "failed to write include")
	}
	return nil
}

func canceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrClientDisconnect, "request canceled")
	}
	return nil
}
