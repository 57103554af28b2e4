package loader_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/arthur-debert/jsploader/pkg/config"
	"github.com/arthur-debert/jsploader/pkg/errors"
	"github.com/arthur-debert/jsploader/pkg/flex"
	"github.com/arthur-debert/jsploader/pkg/loader"
	"github.com/arthur-debert/jsploader/pkg/paths"
	"github.com/arthur-debert/jsploader/pkg/vfs"
)

// failingWriter accepts headers but fails every body write
type failingWriter struct {
	*httptest.ResponseRecorder
	err error
}

func (f *failingWriter) Write(p []byte) (int, error) {
	return 0, f.err
}

func TestLoad_Buffered(t *testing.T) {
	env := newEnv(t, nil)
	env.engine.include = func(r *http.Request, w http.ResponseWriter) error {
		w.Header().Set("X-Test", "1")
		_, err := w.Write([]byte("hello"))
		return err
	}

	r := newRequest()
	rec := httptest.NewRecorder()
	require.NoError(t, env.loader.Load(context.Background(), env.cms(""), env.resource(t), r, rec))

	assert.Equal(t, "hello", rec.Body.String())
	assert.Equal(t, "5", rec.Header().Get("Content-Length"))
	assert.Equal(t, "1", rec.Header().Get("X-Test"))
	assert.Equal(t, []string{"/a.jsp"}, env.engine.includes)
	assert.Nil(t, flex.ControllerFrom(r), "controller is detached")
}

func TestLoad_StatusForwarded(t *testing.T) {
	env := newEnv(t, nil)
	env.engine.include = func(r *http.Request, w http.ResponseWriter) error {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("missing"))
		return err
	}

	rec := httptest.NewRecorder()
	require.NoError(t, env.loader.Load(context.Background(), env.cms(""), env.resource(t), newRequest(), rec))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "missing", rec.Body.String())
}

func TestLoad_Streaming(t *testing.T) {
	env := newEnv(t, nil)
	env.tree.SetProperty("/a.jsp", vfs.PropertyStream, "Yes")
	env.engine.include = writeBody("abc")

	rec := httptest.NewRecorder()
	require.NoError(t, env.loader.Load(context.Background(), env.cms(""), env.resource(t), newRequest(), rec))

	assert.Equal(t, "abc", rec.Body.String(), "written once, while streaming")
	assert.Empty(t, rec.Header().Get("Content-Length"))
}

func TestLoad_Bypass(t *testing.T) {
	env := newEnv(t, nil)
	env.tree.SetProperty("/a.jsp", vfs.PropertyStream, "bypasscache")

	rec := httptest.NewRecorder()
	require.NoError(t, env.loader.Load(context.Background(), env.cms(""), env.resource(t), newRequest(), rec))

	uri := env.loader.Repository().WebURI("/a.jsp", paths.Online)
	assert.Equal(t, []string{uri}, env.engine.forwards)
	assert.Empty(t, env.engine.includes)
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, rec.Header().Get("Content-Length"))

	data, err := env.rfs.ReadFile(env.loader.Repository().RfsPath("/a.jsp", paths.Online))
	require.NoError(t, err)
	assert.Equal(t, "source", string(data))
}

func TestLoad_BypassClientDisconnect(t *testing.T) {
	env := newEnv(t, nil)
	env.tree.SetProperty("/a.jsp", vfs.PropertyStream, "bypass")
	env.engine.forwardErr = syscall.ECONNRESET

	err := env.loader.Load(context.Background(), env.cms(""), env.resource(t), newRequest(), httptest.NewRecorder())
	assert.NoError(t, err)
}

func TestLoad_LateCommit(t *testing.T) {
	tests := []struct {
		name      string
		committed string
		want      string
	}{
		{name: "error pages committed", committed: "true", want: "error page"},
		{name: "error pages not committed", committed: "false", want: "error pagebuffered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t, map[string]string{config.ParamErrorPageCommitted: tt.committed})
			env.engine.include = func(r *http.Request, w http.ResponseWriter) error {
				if _, err := w.Write([]byte("buffered")); err != nil {
					return err
				}
				// an error page written straight to the client
				transport := flex.ControllerFrom(r).TransportResponse()
				transport.WriteHeader(http.StatusInternalServerError)
				_, err := transport.Write([]byte("error page"))
				return err
			}

			rec := httptest.NewRecorder()
			require.NoError(t, env.loader.Load(context.Background(), env.cms(""), env.resource(t), newRequest(), rec))
			assert.Equal(t, tt.want, rec.Body.String())
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
		})
	}
}

func TestLoad_Suspended(t *testing.T) {
	env := newEnv(t, nil)
	env.engine.include = func(r *http.Request, w http.ResponseWriter) error {
		_, _ = w.Write([]byte("cached elsewhere"))
		w.(*flex.Response).SetSuspended(true)
		return nil
	}

	r := newRequest()
	rec := httptest.NewRecorder()
	require.NoError(t, env.loader.Load(context.Background(), env.cms(""), env.resource(t), r, rec))
	assert.Empty(t, rec.Body.String())
}

func TestLoad_ClientDisconnect(t *testing.T) {
	t.Run("during include", func(t *testing.T) {
		env := newEnv(t, nil)
		env.engine.include = func(r *http.Request, w http.ResponseWriter) error {
			_, _ = w.Write([]byte("partial"))
			return errors.Wrap(syscall.ECONNRESET, errors.ErrDispatch, "include failed")
		}

		rec := httptest.NewRecorder()
		require.NoError(t, env.loader.Load(context.Background(), env.cms(""), env.resource(t), newRequest(), rec))
		assert.Equal(t, "partial", rec.Body.String())
	})

	t.Run("during flush", func(t *testing.T) {
		env := newEnv(t, nil)
		env.engine.include = writeBody("hello")

		w := &failingWriter{ResponseRecorder: httptest.NewRecorder(), err: syscall.EPIPE}
		assert.NoError(t, env.loader.Load(context.Background(), env.cms(""), env.resource(t), newRequest(), w))
	})

	t.Run("illegal state during flush", func(t *testing.T) {
		env := newEnv(t, nil)
		env.engine.include = writeBody("hello")

		w := &failingWriter{ResponseRecorder: httptest.NewRecorder(), err: http.ErrBodyNotAllowed}
		assert.NoError(t, env.loader.Load(context.Background(), env.cms(""), env.resource(t), newRequest(), w))
	})

	t.Run("other write errors surface", func(t *testing.T) {
		env := newEnv(t, nil)
		env.engine.include = writeBody("hello")

		w := &failingWriter{ResponseRecorder: httptest.NewRecorder(), err: syscall.ENOSPC}
		err := env.loader.Load(context.Background(), env.cms(""), env.resource(t), newRequest(), w)
		assert.True(t, errors.IsErrorCode(err, errors.ErrDispatch))
	})
}

func TestLoad_DispatchError(t *testing.T) {
	env := newEnv(t, nil)
	env.engine.include = func(r *http.Request, w http.ResponseWriter) error {
		return errors.New(errors.ErrDispatch, "engine failed")
	}

	r := newRequest()
	err := env.loader.Load(context.Background(), env.cms(""), env.resource(t), r, httptest.NewRecorder())
	assert.True(t, errors.IsErrorCode(err, errors.ErrDispatch))
	assert.Nil(t, flex.ControllerFrom(r), "controller is detached on failure")
}

func TestLoad_RequestEncoding(t *testing.T) {
	env := newEnv(t, nil)
	env.engine.include = writeBody("café")

	rec := httptest.NewRecorder()
	require.NoError(t, env.loader.Load(context.Background(), env.cms("ISO-8859-1"), env.resource(t), newRequest(), rec))
	assert.Equal(t, []byte("caf\xe9"), rec.Body.Bytes())
	assert.Equal(t, "4", rec.Header().Get("Content-Length"))
}

func TestLoad_VfsReadError(t *testing.T) {
	env := newEnv(t, nil)
	resource := &vfs.Resource{Path: "../a.jsp"}

	err := env.loader.Load(context.Background(), env.cms(""), resource, newRequest(), httptest.NewRecorder())
	assert.Error(t, err)
	assert.Empty(t, env.engine.includes)
}

func TestLoad_ReusesController(t *testing.T) {
	env := newEnv(t, nil)
	cmsObject := env.cms("")
	resource := env.resource(t)

	r := newRequest()
	rec := httptest.NewRecorder()
	outer := flex.NewController(cmsObject, resource, nil, r, rec)
	require.True(t, flex.SetController(r, outer))
	outer.PushRequest(flex.NewRequest(r, outer))
	outer.PushResponse(flex.NewResponse(outer.TransportResponse(), outer, false, true))

	var seen *flex.Response
	env.engine.include = func(r *http.Request, w http.ResponseWriter) error {
		seen = w.(*flex.Response)
		_, err := w.Write([]byte("inner"))
		return err
	}

	require.NoError(t, env.loader.Load(context.Background(), cmsObject, resource, r, rec))
	assert.Same(t, outer.CurrentResponse(), seen)
	assert.Same(t, outer, flex.ControllerFrom(r), "outer controller stays attached")
	assert.Equal(t, "inner", rec.Body.String())
}

func TestDump(t *testing.T) {
	env := newEnv(t, nil)
	cmsObject := env.cms("ISO-8859-1")
	resource := env.resource(t)

	r := newRequest()
	rec := httptest.NewRecorder()
	outer := flex.NewController(cmsObject, resource, nil, r, rec)
	require.True(t, flex.SetController(r, outer))
	outer.MarkLoaded()

	env.engine.include = func(r *http.Request, w http.ResponseWriter) error {
		c := flex.ControllerFrom(r)
		require.NotNil(t, c)
		assert.NotSame(t, outer, c, "dump runs in a fresh controller")
		assert.Equal(t, 1, c.Depth())
		assert.False(t, c.CurrentResponse().IsTopElement())

		attrs := flex.AttributesOf(r)
		assert.Equal(t, "body", attrs.Get(loader.ElementAttribute))
		assert.Equal(t, language.German, attrs.Get(loader.LocaleAttribute))

		_, err := w.Write([]byte("dumpé"))
		return err
	}

	out, err := env.loader.Dump(context.Background(), cmsObject, resource, "body", language.German, r, rec)
	require.NoError(t, err)
	assert.Equal(t, []byte("dump\xe9"), out)

	assert.Same(t, outer, flex.ControllerFrom(r), "previous controller is restored")
	assert.Nil(t, flex.AttributesOf(r).Get(loader.ElementAttribute))
	assert.Empty(t, rec.Body.String(), "dump does not write the response")
}

func TestDump_RestoresOnError(t *testing.T) {
	env := newEnv(t, nil)
	cmsObject := env.cms("")
	resource := env.resource(t)

	r := newRequest()
	outer := flex.NewController(cmsObject, resource, nil, r, httptest.NewRecorder())
	require.True(t, flex.SetController(r, outer))

	env.engine.include = func(r *http.Request, w http.ResponseWriter) error {
		return errors.New(errors.ErrDispatch, "boom")
	}

	_, err := env.loader.Dump(context.Background(), cmsObject, resource, "", language.Und, r, httptest.NewRecorder())
	assert.True(t, errors.IsErrorCode(err, errors.ErrDispatch))
	assert.Same(t, outer, flex.ControllerFrom(r))
}

func TestDump_Null(t *testing.T) {
	t.Run("without previous controller", func(t *testing.T) {
		env := newEnv(t, nil)
		env.engine.include = func(r *http.Request, w http.ResponseWriter) error {
			w.(*flex.Response).SetSuspended(true)
			return nil
		}

		r := newRequest()
		out, err := env.loader.Dump(context.Background(), env.cms(""), env.resource(t), "", language.Und, r, httptest.NewRecorder())
		require.NoError(t, err)
		assert.Nil(t, out)
		assert.Nil(t, flex.ControllerFrom(r))
	})

	t.Run("committed by the engine", func(t *testing.T) {
		env := newEnv(t, nil)
		env.engine.include = func(r *http.Request, w http.ResponseWriter) error {
			flex.ControllerFrom(r).TransportResponse().WriteHeader(http.StatusInternalServerError)
			_, err := w.Write([]byte("x"))
			return err
		}

		out, err := env.loader.Dump(context.Background(), env.cms(""), env.resource(t), "", language.Und, newRequest(), httptest.NewRecorder())
		require.NoError(t, err)
		assert.Nil(t, out)
	})
}

func TestExport(t *testing.T) {
	env := newEnv(t, nil)
	env.tree.SetProperty("/a.jsp", vfs.PropertyStream, "yes")
	env.engine.include = writeBody("rendered")

	var sink bytes.Buffer
	rec := httptest.NewRecorder()
	r := newRequest()
	require.NoError(t, env.loader.Export(context.Background(), env.cms(""), env.resource(t), &sink, r, rec))

	assert.Equal(t, "rendered", rec.Body.String(), "export always buffers")
	assert.Equal(t, "8", rec.Header().Get("Content-Length"))
	assert.Equal(t, "source", sink.String())
	assert.Nil(t, flex.ControllerFrom(r))
}

func TestExport_NilSink(t *testing.T) {
	env := newEnv(t, nil)
	env.engine.include = writeBody("rendered")

	rec := httptest.NewRecorder()
	require.NoError(t, env.loader.Export(context.Background(), env.cms(""), env.resource(t), nil, newRequest(), rec))
	assert.Equal(t, "rendered", rec.Body.String())
}

func TestExport_SinkError(t *testing.T) {
	env := newEnv(t, nil)

	w := &failingWriter{ResponseRecorder: httptest.NewRecorder(), err: syscall.ENOSPC}
	err := env.loader.Export(context.Background(), env.cms(""), env.resource(t), w, newRequest(), httptest.NewRecorder())
	assert.True(t, errors.IsErrorCode(err, errors.ErrIOWrite))
}

func TestExport_MissingResource(t *testing.T) {
	env := newEnv(t, nil)
	resource := &vfs.Resource{Path: "/missing.jsp"}

	err := env.loader.Export(context.Background(), env.cms(""), resource, nil, newRequest(), httptest.NewRecorder())
	assert.True(t, errors.IsErrorCode(err, errors.ErrVfsRead))
	assert.Empty(t, env.engine.includes)
}
