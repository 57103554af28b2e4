package vfs

import (
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/jsploader/pkg/errors"
)

// Properties maps a VFS path to its directly set properties
type Properties map[string]map[string]string

// ManifestNames are the manifest files Open looks for in a VFS root
var ManifestNames = []string{"properties.toml", "properties.yaml", "properties.yml"}

// LoadManifest reads a property manifest. The format follows the file
// extension: TOML for .toml, YAML for .yaml and .yml.
//
//	["/sites/default/index.jsp"]
//	stream = "bypass"
//	content-encoding = "UTF-8"
func LoadManifest(fsys afero.Fs, name string) (Properties, error) {
	data, err := afero.ReadFile(fsys, name)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrVfsRead, "failed to read property manifest %s", name)
	}

	props := Properties{}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml":
		err = toml.Unmarshal(data, &props)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &props)
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unsupported property manifest format: %s", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrVfsRead, "failed to parse property manifest %s", name)
	}
	return props, nil
}
