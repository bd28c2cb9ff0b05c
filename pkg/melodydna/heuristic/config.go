package heuristic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/himanishpuri/MelodyDNA/configs"
	"gopkg.in/yaml.v3"
)

// BuiltinPrefix selects an embedded pattern file instead of a path on disk.
const BuiltinPrefix = "builtin:"

var configValidate = validator.New()

// Config names the pattern to score against and its numeric parameters.
// It is read once and never modified afterwards.
type Config struct {
	Name      string             `json:"name,omitempty" yaml:"name,omitempty"`
	Pattern   string             `json:"pattern" yaml:"pattern" validate:"required"`
	Params    map[string]float64 `json:"params" yaml:"params" validate:"required"`
	Intervals []int              `json:"intervals,omitempty" yaml:"intervals,omitempty" validate:"omitempty,dive,min=-12,max=12"`
	Scale     []int              `json:"scale,omitempty" yaml:"scale,omitempty" validate:"omitempty,dive,min=0,max=11"`
}

// ConfigError reports a missing or structurally invalid heuristic configuration.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("heuristic config %q: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Validate checks required fields, value ranges and that every parameter is known to the pattern.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return err
	}
	p, ok := patterns[c.Pattern]
	if !ok {
		return fmt.Errorf("unknown pattern %q (known: %s)", c.Pattern, strings.Join(Patterns(), ", "))
	}
	for name := range c.Params {
		if _, known := p.defaults[name]; !known {
			return fmt.Errorf("pattern %q has no parameter %q", c.Pattern, name)
		}
	}
	if p.check != nil {
		if err := p.check(c.merged()); err != nil {
			return fmt.Errorf("pattern %q: %w", c.Pattern, err)
		}
	}
	return nil
}

// merged overlays the file parameters on the pattern defaults.
func (c *Config) merged() map[string]float64 {
	out := make(map[string]float64)
	if p, ok := patterns[c.Pattern]; ok {
		for k, v := range p.defaults {
			out[k] = v
		}
	}
	for k, v := range c.Params {
		out[k] = v
	}
	return out
}

// Load reads a JSON or YAML configuration from disk.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, &ConfigError{Path: configPath, Err: err}
	}
	return parse(configPath, filepath.Ext(configPath), data)
}

// Resolve loads either "builtin:<name>" from the embedded pattern files or a path on disk.
func Resolve(ref string) (*Config, error) {
	name, ok := strings.CutPrefix(ref, BuiltinPrefix)
	if !ok {
		return Load(ref)
	}
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		file := path.Join("patterns", name+ext)
		data, err := fs.ReadFile(configs.Patterns, file)
		if err == nil {
			return parse(ref, ext, data)
		}
	}
	return nil, &ConfigError{Path: ref, Err: fmt.Errorf("no builtin pattern file named %q", name)}
}

// Builtins lists the names accepted after BuiltinPrefix.
func Builtins() []string {
	entries, err := fs.ReadDir(configs.Patterns, "patterns")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

func parse(source, ext string, data []byte) (*Config, error) {
	var cfg Config
	if err := decode(ext, data, &cfg); err != nil {
		return nil, &ConfigError{Path: source, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Path: source, Err: err}
	}
	return &cfg, nil
}

func decode(ext string, data []byte, cfg *Config) error {
	switch strings.ToLower(ext) {
	case ".json":
		return decodeJSON(data, cfg)
	case ".yaml", ".yml":
		return decodeYAML(data, cfg)
	}
	// Unknown extension: YAML first, then JSON.
	if yamlErr := decodeYAML(data, cfg); yamlErr != nil {
		*cfg = Config{}
		if jsonErr := decodeJSON(data, cfg); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", yamlErr, jsonErr)
		}
	}
	return nil
}

func decodeJSON(data []byte, cfg *Config) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("decoding json: %w", err)
	}
	return nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("decoding yaml: %w", err)
	}
	return nil
}
