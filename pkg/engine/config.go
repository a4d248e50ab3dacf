package engine

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"os"
)

// Config is the on-disk YAML configuration shape loaded by Load: a defaults
// block shared by every file the engine processes, plus a plugin manifest
// loaded eagerly so configuration errors surface before the pipeline starts
// rather than mid-run.
type Config struct {
	Defaults ConfigDefaults `yaml:"defaults"`
	Plugins  []string       `yaml:"plugins"`
}

// ConfigDefaults mirrors the subset of engine Options a config file can set.
type ConfigDefaults struct {
	Encoding                string `yaml:"encoding"`
	Overwrite               bool   `yaml:"overwrite"`
	SourceMaps              bool   `yaml:"sourceMaps"`
	SourceMapInline         bool   `yaml:"sourceMapInline"`
	SourceMapIncludeContent bool   `yaml:"sourceMapIncludeContent"`
}

// Load reads and strictly decodes a YAML configuration file from path,
// passing through os.IsNotExist rather than wrapping it, so callers can
// treat a missing config file as "use defaults" without an errors.Is dance.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg := &Config{}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}
