package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/arthur-debert/jsploader/pkg/errors"
	"github.com/arthur-debert/jsploader/pkg/flex"
	"github.com/arthur-debert/jsploader/pkg/logging"
	"github.com/arthur-debert/jsploader/pkg/paths"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(configPath *string) *cobra.Command {
	var (
		listen string
		online bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: MsgServeShort,
		Long:  MsgServeLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(*configPath)
			if err != nil {
				return err
			}
			defer rt.loader.Destroy()

			if listen == "" {
				listen = rt.app.Listen
			}
			srv := &http.Server{
				Addr:              listen,
				Handler:           rt.handler(online),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()
			fmt.Fprintf(cmd.OutOrStdout(), MsgServing, formatPath(rt.app.VFS.Root), paths.RealmOf(online), listen)

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf(MsgErrServe, err)
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", MsgFlagListen)
	cmd.Flags().BoolVar(&online, "online", false, MsgFlagOnline)

	return cmd
}

// handler serves VFS resources through the loader and metrics on /metrics
func (rt *runtime) handler(online bool) http.Handler {
	logger := logging.WithFields(map[string]interface{}{
		"component": "cli.serve",
		"realm":     paths.RealmOf(online).String(),
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		cmsObject := rt.cmsFor(r.URL.Path, online, "", requestLocale(r))
		resource, err := cmsObject.ReadResource(r.URL.Path)
		if err != nil {
			logger.Debug().Err(err).Str("path", r.URL.Path).Msg("Resource not found")
			http.NotFound(w, r)
			return
		}

		out := flex.Track(w)
		if err := rt.loader.Load(r.Context(), cmsObject, resource, r, out); err != nil {
			logger.Error().Err(err).
				Str("path", r.URL.Path).
				Str("code", string(errors.GetErrorCode(err))).
				Msg("Failed to load resource")
			if !out.Committed() {
				http.Error(out, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}
	})
	return mux
}

// requestLocale returns the preferred locale of r, or language.Und
func requestLocale(r *http.Request) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return language.Und
	}
	return tags[0]
}
