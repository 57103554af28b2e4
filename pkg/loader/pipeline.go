package loader

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/text/language"

	"github.com/arthur-debert/jsploader/pkg/charset"
	"github.com/arthur-debert/jsploader/pkg/cms"
	"github.com/arthur-debert/jsploader/pkg/errors"
	"github.com/arthur-debert/jsploader/pkg/flex"
	"github.com/arthur-debert/jsploader/pkg/vfs"
)

// Attributes set for the duration of a Dump
const (
	ElementAttribute = "org.opencms.loader.element"
	LocaleAttribute  = "org.opencms.loader.locale"
)

// Load delivers resource to w. The stream property of the resource selects
// buffered, streaming or bypass delivery. A Flex controller already attached
// to r is reused; a controller created here is detached on return.
func (l *JspLoader) Load(ctx context.Context, cmsObject *cms.Object, resource *vfs.Resource, r *http.Request, w http.ResponseWriter) error {
	if err := l.ready(); err != nil {
		return err
	}
	start := time.Now()

	stream, err := cmsObject.ReadProperty(resource.Path, vfs.PropertyStream)
	if err != nil {
		return vfsError(err, resource.Path, "failed to read stream property of %s")
	}
	mode := streamModeOf(stream)
	logger := l.logger.With().Str("path", resource.Path).Str("mode", mode.String()).Logger()

	r = flex.WithAttributes(r)
	c, created := l.attach(cmsObject, resource, r, w, mode == modeStreaming)
	if created {
		defer flex.RemoveController(r)
	}
	req, res := c.CurrentRequest(), c.CurrentResponse()
	out := l.transport(c, w, created)

	if mode == modeBypass {
		target, err := l.materialiser.Materialise(ctx, cmsObject, resource, req, nil)
		if err != nil {
			return err
		}
		c.MarkLoaded()
		if err := l.dispatcher.Forward(ctx, target, req.HTTP(), out); err != nil {
			if errors.IsClientDisconnect(err) {
				logger.Debug().Err(err).Msg("Client disconnected during forward")
				return nil
			}
			return err
		}
		c.MarkDelivered(false)
		l.metrics.ObserveLoad(mode.String(), time.Since(start))
		return nil
	}

	if err := l.include(ctx, resource.Path, req, res); err != nil {
		return err
	}
	c.MarkLoaded()

	if mode != modeStreaming {
		if err := l.deliver(cmsObject, res, out); err != nil {
			return err
		}
	}
	c.MarkDelivered(res.IsSuspended())

	l.metrics.ObserveLoad(mode.String(), time.Since(start))
	logger.Debug().Dur("elapsed", time.Since(start)).Msg("Delivered JSP")
	return nil
}

// Dump renders resource and returns the output in the request encoding.
// It always runs in a fresh Flex controller; a controller attached to r is
// restored on return. Dump returns nil when the output is suspended or the
// engine committed the response.
func (l *JspLoader) Dump(ctx context.Context, cmsObject *cms.Object, resource *vfs.Resource, element string, locale language.Tag, r *http.Request, w http.ResponseWriter) ([]byte, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	start := time.Now()

	r = flex.WithAttributes(r)
	attrs := flex.AttributesOf(r)
	previous := flex.ControllerFrom(r)
	prevElement, prevLocale := attrs.Get(ElementAttribute), attrs.Get(LocaleAttribute)

	c := flex.NewController(cmsObject, resource, l.cache, r, w)
	flex.SetController(r, c)
	attrs.Set(ElementAttribute, element)
	attrs.Set(LocaleAttribute, locale)
	defer func() {
		flex.RemoveController(r)
		if previous != nil {
			flex.SetController(r, previous)
		}
		restore(attrs, ElementAttribute, prevElement)
		restore(attrs, LocaleAttribute, prevLocale)
	}()

	req := flex.NewRequest(r, c)
	res := flex.NewResponse(c.TransportResponse(), c, false, false)
	c.PushRequest(req)
	c.PushResponse(res)

	if err := l.include(ctx, resource.Path, req, res); err != nil {
		return nil, err
	}
	c.MarkLoaded()
	c.MarkDelivered(res.IsSuspended())
	l.metrics.ObserveLoad("dump", time.Since(start))

	if !l.mayWrite(res, c.TransportResponse()) {
		return nil, nil
	}
	return charset.Convert(res.WriterBytes(), l.system.DefaultEncoding, cmsObject.RequestContext().Encoding)
}

// Export delivers resource like a buffered Load and then writes the
// unmodified VFS contents of resource to sink, when sink is not nil.
func (l *JspLoader) Export(ctx context.Context, cmsObject *cms.Object, resource *vfs.Resource, sink io.Writer, r *http.Request, w http.ResponseWriter) error {
	if err := l.ready(); err != nil {
		return err
	}
	start := time.Now()

	contents, err := cmsObject.ReadFile(resource.Path)
	if err != nil {
		return vfsError(err, resource.Path, "failed to read contents of %s")
	}

	r = flex.WithAttributes(r)
	c, created := l.attach(cmsObject, resource, r, w, false)
	if created {
		defer flex.RemoveController(r)
	}
	req, res := c.CurrentRequest(), c.CurrentResponse()

	if err := l.include(ctx, resource.Path, req, res); err != nil {
		return err
	}
	c.MarkLoaded()
	if err := l.deliver(cmsObject, res, l.transport(c, w, created)); err != nil {
		return err
	}
	c.MarkDelivered(res.IsSuspended())
	l.metrics.ObserveLoad("export", time.Since(start))

	if sink != nil {
		if _, err := sink.Write(contents); err != nil {
			return errors.Wrapf(err, errors.ErrIOWrite, "failed to export %s", resource.Path).
				WithDetail("path", resource.Path)
		}
	}
	return nil
}

// attach returns the controller of r, creating and attaching one with a
// top-level request/response pair when there is none.
func (l *JspLoader) attach(cmsObject *cms.Object, resource *vfs.Resource, r *http.Request, w http.ResponseWriter, streaming bool) (*flex.Controller, bool) {
	if c := flex.ControllerFrom(r); c != nil && c.CurrentRequest() != nil && c.CurrentResponse() != nil {
		return c, false
	}
	c := flex.NewController(cmsObject, resource, l.cache, r, w)
	flex.SetController(r, c)
	c.PushRequest(flex.NewRequest(r, c))
	c.PushResponse(flex.NewResponse(c.TransportResponse(), c, streaming, true))
	return c, true
}

// transport returns the commit-tracked response the loader writes to
func (l *JspLoader) transport(c *flex.Controller, w http.ResponseWriter, created bool) *flex.TrackedWriter {
	if created {
		return c.TransportResponse()
	}
	return flex.Track(w)
}

// include dispatches path to the engine. A client disconnect ends the
// dispatch without error.
func (l *JspLoader) include(ctx context.Context, path string, req *flex.Request, res *flex.Response) error {
	err := l.dispatcher.Include(ctx, path, req.HTTP(), res)
	if err == nil {
		return nil
	}
	if errors.IsClientDisconnect(err) {
		l.logger.Debug().Err(err).Str("path", path).Msg("Client disconnected during include")
		return nil
	}
	return err
}

// mayWrite reports whether buffered output of res may be sent to out
func (l *JspLoader) mayWrite(res *flex.Response, out *flex.TrackedWriter) bool {
	if res.IsSuspended() {
		return false
	}
	return !out.Committed() || !l.errorPageCommitted
}

// deliver writes the buffered output of res to out in the request
// encoding. Late commits and client disconnects are logged and dropped.
func (l *JspLoader) deliver(cmsObject *cms.Object, res *flex.Response, out *flex.TrackedWriter) error {
	if !l.mayWrite(res, out) {
		l.logger.Debug().
			Bool("suspended", res.IsSuspended()).
			Bool("committed", out.Committed()).
			Msg("Skipping buffered output")
		return nil
	}

	body, err := charset.Convert(res.WriterBytes(), l.system.DefaultEncoding, cmsObject.RequestContext().Encoding)
	if err != nil {
		return err
	}

	committed := out.Committed()
	flex.ProcessHeaders(res.Headers(), out)
	out.Header().Set("Content-Length", strconv.Itoa(len(body)))
	if !committed && res.HasStatus() && res.Status() != http.StatusOK {
		out.WriteHeader(res.Status())
	}

	if _, err := out.Write(body); err != nil {
		switch {
		case errors.IsIllegalState(err):
			l.logger.Debug().Err(err).Msg("Response already committed")
			return nil
		case errors.IsClientDisconnect(err):
			l.logger.Debug().Err(err).Msg("Client disconnected during flush")
			return nil
		default:
			return errors.Wrap(err, errors.ErrDispatch, "failed to write response")
		}
	}
	out.Flush()
	return nil
}

func restore(attrs *flex.Attributes, name string, value interface{}) {
	if value == nil {
		attrs.Remove(name)
		return
	}
	attrs.Set(name, value)
}

func vfsError(err error, path, format string) error {
	if errors.IsErrorCode(err, errors.ErrVfsRead) || errors.IsErrorCode(err, errors.ErrInvalidPath) {
		return err
	}
	return errors.Wrapf(err, errors.ErrVfsRead, format, path).WithDetail("path", path)
}
