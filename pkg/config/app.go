package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/jsploader/pkg/errors"
	"github.com/arthur-debert/jsploader/pkg/logging"
)

// EnvPrefix prefixes environment overrides: JSPLOADER_VFS_ROOT sets vfs.root
const EnvPrefix = "JSPLOADER_"

// App is the configuration of the jsploader command
type App struct {
	// Listen is the address serve binds to
	Listen string `koanf:"listen"`

	VFS struct {
		// Root is the OS directory holding the VFS tree
		Root string `koanf:"root"`

		// Manifest is the property manifest, detected in Root when empty
		Manifest string `koanf:"manifest"`
	} `koanf:"vfs"`

	System struct {
		// Encoding is the CMS-wide default encoding
		Encoding string `koanf:"encoding"`

		// Webapp is the RFS path of the web application
		Webapp string `koanf:"webapp"`
	} `koanf:"system"`

	Cache struct {
		// Size is the entry count of the flex cache
		Size int `koanf:"size"`
	} `koanf:"cache"`

	Loader struct {
		// XML is an optional loader parameter file
		XML string `koanf:"xml"`

		// Params are loader parameters keyed by their dotted name
		Params map[string]string `koanf:"-"`
	} `koanf:"loader"`
}

// DefaultAppPath returns the config file read when none is given
func DefaultAppPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = xdg.ConfigHome
	}
	return filepath.Join(configHome, "jsploader", "config.toml")
}

// LoadApp loads the application configuration. Sources, lowest precedence
// first: embedded defaults, the file at path (or DefaultAppPath when path is
// empty and that file exists), JSPLOADER_* environment variables.
func LoadApp(path string) (*App, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultApp}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to load application defaults")
	}

	if path == "" {
		if candidate := DefaultAppPath(); fileExists(candidate) {
			path = candidate
		}
	}
	if path != "" {
		if !fileExists(path) {
			return nil, errors.Newf(errors.ErrConfigInvalid, "config file not found: %s", path)
		}
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigInvalid, "failed to load config from %s", path)
		}
		logger.Debug().Str("path", path).Msg("Loaded config file")
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigInvalid, "failed to load environment")
	}

	var app App
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &app,
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf("", &app, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigInvalid, "failed to unmarshal configuration")
	}

	// koanf flattens loader.params, which keeps dotted parameter names intact
	app.Loader.Params = make(map[string]string)
	for key, value := range k.Cut("loader.params").All() {
		app.Loader.Params[key] = fmt.Sprint(value)
	}

	return &app, nil
}

// LoaderParams returns the loader parameters in the order they are to be
// added: the XML file first, then loader.params.
func (a *App) LoaderParams() ([]Param, error) {
	var params []Param
	if a.Loader.XML != "" {
		f, err := os.Open(a.Loader.XML)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigInvalid, "failed to open %s", a.Loader.XML)
		}
		defer f.Close()
		fromXML, err := ReadParamsXML(f)
		if err != nil {
			return nil, err
		}
		params = append(params, fromXML...)
	}

	keys := make([]string, 0, len(a.Loader.Params))
	for key := range a.Loader.Params {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		params = append(params, Param{Name: key, Value: a.Loader.Params[key]})
	}
	return params, nil
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
