package config

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/jsploader/pkg/errors"
)

// Recognised loader parameters
const (
	ParamRepository         = "jsp.repository"
	ParamFolder             = "jsp.folder"
	ParamErrorPageCommitted = "jsp.errorpage.committed"
)

// LoaderParams are the resolved loader parameters
type LoaderParams struct {
	JSP struct {
		// Repository is the RFS base of the repository, empty for the
		// web application path
		Repository string `koanf:"repository"`

		// Folder is the repository folder below Repository
		Folder string `koanf:"folder"`

		ErrorPage struct {
			// Committed stops the loader from writing to a response the
			// engine already committed
			Committed bool `koanf:"committed"`
		} `koanf:"errorpage"`
	} `koanf:"jsp"`
}

// Repository returns the jsp.repository value
func (p *LoaderParams) Repository() string { return p.JSP.Repository }

// Folder returns the jsp.folder value
func (p *LoaderParams) Folder() string { return p.JSP.Folder }

// ErrorPageCommitted returns the jsp.errorpage.committed value
func (p *LoaderParams) ErrorPageCommitted() bool { return p.JSP.ErrorPage.Committed }

// LoadParams resolves loader parameters from the embedded defaults
// overlaid with params. Keys are dotted and case-sensitive; unknown keys are
// ignored. A value that cannot be converted yields ErrConfigInvalid.
func LoadParams(params map[string]string) (*LoaderParams, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultParams}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to load parameter defaults")
	}

	overrides := make(map[string]interface{}, len(params))
	for key, value := range params {
		overrides[key] = value
	}
	if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigInvalid, "failed to load loader parameters")
	}

	var p LoaderParams
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &p,
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf("", &p, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigInvalid, "invalid loader parameter").
			WithDetails(map[string]interface{}{"params": params})
	}

	return &p, nil
}
