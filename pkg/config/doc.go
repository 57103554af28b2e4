// Package config loads loader parameters and the jsploader application
// configuration.
//
// Both are layered with koanf: embedded TOML defaults first, then the
// configured sources. Loader parameters come from AddConfigurationParameter
// calls or an XML parameter list; the application reads a TOML or YAML
// file and JSPLOADER_* environment variables.
package config
