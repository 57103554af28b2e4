package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/arthur-debert/jsploader/pkg/errors"
	"github.com/arthur-debert/jsploader/pkg/flex"
	"github.com/arthur-debert/jsploader/pkg/logging"
	"github.com/arthur-debert/jsploader/pkg/paths"
)

func newMaterialiseCmd(configPath *string) *cobra.Command {
	var online, recompile bool

	cmd := &cobra.Command{
		Use:   "materialise <vfs-path>",
		Short: MsgMaterialiseShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer logging.LogDuration(time.Now(), "materialise")

			rt, err := newRuntime(*configPath)
			if err != nil {
				return err
			}
			defer rt.loader.Destroy()

			path := args[0]
			cmsObject := rt.cmsFor(path, online, "", language.Und)
			resource, err := cmsObject.ReadResource(path)
			if err != nil {
				return fmt.Errorf(MsgErrResource, err)
			}

			r, err := offlineRequest(cmd.Context(), path, recompile)
			if err != nil {
				return fmt.Errorf(MsgErrMaterialise, err)
			}
			c := flex.NewController(cmsObject, resource, nil, r, newConsoleWriter(io.Discard))

			uri, err := rt.loader.Materialise(cmd.Context(), cmsObject, resource, flex.NewRequest(r, c))
			if err != nil {
				return fmt.Errorf(MsgErrMaterialise, err)
			}
			rfsPath := rt.loader.Repository().RfsPath(path, paths.RealmOf(online))
			fmt.Fprintf(cmd.OutOrStdout(), MsgMaterialised, uri, formatPath(rfsPath))
			return nil
		},
	}

	cmd.Flags().BoolVar(&online, "online", false, MsgFlagOnline)
	cmd.Flags().BoolVar(&recompile, "recompile", false, MsgFlagRecompile)

	return cmd
}

func newDumpCmd(configPath *string) *cobra.Command {
	var (
		online   bool
		element  string
		locale   string
		encoding string
	)

	cmd := &cobra.Command{
		Use:   "dump <vfs-path>",
		Short: MsgDumpShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, err := language.Parse(locale)
			if err != nil {
				return fmt.Errorf(MsgErrDump, errors.Wrapf(err, errors.ErrInvalidInput, "invalid locale %q", locale))
			}

			defer logging.LogDuration(time.Now(), "dump")

			rt, err := newRuntime(*configPath)
			if err != nil {
				return err
			}
			defer rt.loader.Destroy()

			path := args[0]
			cmsObject := rt.cmsFor(path, online, encoding, tag)
			resource, err := cmsObject.ReadResource(path)
			if err != nil {
				return fmt.Errorf(MsgErrResource, err)
			}

			r, err := offlineRequest(cmd.Context(), path, false)
			if err != nil {
				return fmt.Errorf(MsgErrDump, err)
			}
			out, err := rt.loader.Dump(cmd.Context(), cmsObject, resource, element, tag, r, newConsoleWriter(io.Discard))
			if err != nil {
				return fmt.Errorf(MsgErrDump, err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().BoolVar(&online, "online", false, MsgFlagOnline)
	cmd.Flags().StringVar(&element, "element", "", MsgFlagElement)
	cmd.Flags().StringVar(&locale, "locale", "en", MsgFlagLocale)
	cmd.Flags().StringVar(&encoding, "encoding", "", MsgFlagEncoding)

	return cmd
}

func newExportCmd(configPath *string) *cobra.Command {
	var (
		online bool
		target string
	)

	cmd := &cobra.Command{
		Use:   "export <vfs-path>",
		Short: MsgExportShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer logging.LogDuration(time.Now(), "export")

			rt, err := newRuntime(*configPath)
			if err != nil {
				return err
			}
			defer rt.loader.Destroy()

			path := args[0]
			cmsObject := rt.cmsFor(path, online, "", language.Und)
			resource, err := cmsObject.ReadResource(path)
			if err != nil {
				return fmt.Errorf(MsgErrResource, err)
			}

			r, err := offlineRequest(cmd.Context(), path, false)
			if err != nil {
				return fmt.Errorf(MsgErrExport, err)
			}

			var sink io.Writer
			if target != "" {
				f, err := os.Create(target)
				if err != nil {
					return fmt.Errorf(MsgErrExport, errors.Wrapf(err, errors.ErrIOWrite, "failed to create %s", target))
				}
				defer f.Close()
				sink = f
			}

			w := newConsoleWriter(cmd.OutOrStdout())
			if err := rt.loader.Export(cmd.Context(), cmsObject, resource, sink, r, w); err != nil {
				return fmt.Errorf(MsgErrExport, err)
			}
			if target != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), MsgExported, path, formatPath(target))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&online, "online", false, MsgFlagOnline)
	cmd.Flags().StringVarP(&target, "out", "o", "", MsgFlagOut)

	return cmd
}
