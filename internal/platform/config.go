package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the name searched for by FindConfig.
const ConfigFile = "rabbithole.yaml"

// FileConfig is the optional YAML configuration file.
//
//	event_buffer: 200
//	strict: true
//	database: wiki.db
//	preload:
//	  - notes.tid
type FileConfig struct {
	EventBuffer int      `yaml:"event_buffer"`
	Strict      bool     `yaml:"strict"`
	Database    string   `yaml:"database"`
	Preload     []string `yaml:"preload"`

	// Dir is the directory of the file; relative preload paths resolve against it.
	Dir string `yaml:"-"`
}

// LoadConfig reads a configuration file.
func LoadConfig(path string) (FileConfig, error) {
	var cfg FileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// Options converts the file settings to wiki options.
func (c FileConfig) Options() []Option {
	opts := []Option{
		WithEventBuffer(c.EventBuffer),
		WithStrict(c.Strict),
	}
	if c.Database != "" {
		opts = append(opts, WithDatabase(c.resolve(c.Database)))
	}
	return opts
}

func (c FileConfig) resolve(p string) string {
	if !filepath.IsAbs(p) && c.Dir != "" {
		return filepath.Join(c.Dir, p)
	}
	return p
}

// PreloadFiles returns the preload list with relative paths resolved.
func (c FileConfig) PreloadFiles() []string {
	out := make([]string, 0, len(c.Preload))
	for _, p := range c.Preload {
		out = append(out, c.resolve(p))
	}
	return out
}
