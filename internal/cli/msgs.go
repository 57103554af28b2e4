package cli

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort        = "Materialise and serve JSP templates from a virtual file system"
	MsgVersionShort     = "Print version information"
	MsgVersionLong      = "Print detailed version information including commit hash and build date"
	MsgServeShort       = "Serve VFS resources over HTTP"
	MsgMaterialiseShort = "Write a template and everything it includes to the repository"
	MsgDumpShort        = "Render a template and print the output"
	MsgExportShort      = "Render a template and export its VFS contents"
	MsgCompletionShort  = "Generate shell completion script"

	// Status messages
	MsgServing      = "Serving %s (%s) on http://%s\n"
	MsgMaterialised = "%s -> %s\n"
	MsgExported     = "Exported %s to %s\n"

	// Version output
	MsgVersionFormat = "jsploader version %s\n"
	MsgCommitFormat  = "Commit: %s\n"
	MsgBuiltFormat   = "Built:  %s\n"

	// Error messages
	MsgErrConfig      = "failed to load configuration: %w"
	MsgErrRuntime     = "failed to set up loader: %w"
	MsgErrResource    = "failed to read resource: %w"
	MsgErrMaterialise = "failed to materialise: %w"
	MsgErrDump        = "failed to dump: %w"
	MsgErrExport      = "failed to export: %w"
	MsgErrServe       = "server stopped: %w"

	// Flag descriptions
	MsgFlagVerbose   = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig    = "Config file (default $XDG_CONFIG_HOME/jsploader/config.toml)"
	MsgFlagListen    = "Address to listen on (overrides listen)"
	MsgFlagOnline    = "Use the online realm"
	MsgFlagRecompile = "Rewrite files even when they are up to date"
	MsgFlagElement   = "Element to render"
	MsgFlagLocale    = "Locale to render for"
	MsgFlagEncoding  = "Output encoding (defaults to the system encoding)"
	MsgFlagOut       = "File the unmodified VFS contents are exported to"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/serve-long.txt
	msgServeLongRaw string
	MsgServeLong    = strings.TrimSpace(msgServeLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw) + "\n"
)
