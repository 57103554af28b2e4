package config

import (
	_ "embed"
	"errors"
)

//go:embed embedded/defaults.toml
var defaultParams []byte

//go:embed embedded/app.toml
var defaultApp []byte

// DefaultAppContent returns the embedded application defaults
func DefaultAppContent() string {
	return string(defaultApp)
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}
