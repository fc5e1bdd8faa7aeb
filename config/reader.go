package config

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"go.viam.com/utils"
	"gopkg.in/yaml.v3"
)

// Read loads a Config from a YAML file at path, matching the teacher's
// config.Read(path) entry point.
func Read(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening config file %q", path)
	}
	defer utils.UncheckedErrorFunc(f.Close)
	return FromReader(path, f)
}

// FromReader decodes a Config from r, tagging it with path for later
// diffing/display; path may be empty for in-memory configs (e.g. tests).
func FromReader(path string, r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "decoding config %q", path)
	}
	cfg.ConfigFilePath = path
	cfg.applyDefaults()
	return &cfg, nil
}
