// Package config loads the optional run configuration for the corruption
// pipeline. Files ending in .yaml or .yml are decoded strictly with
// yaml.v3; files ending in .cue are evaluated with CUE, which lets a run
// configuration carry its own constraints.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/facet/internal/catalog"
	"github.com/roach88/facet/internal/imageio"
)

// Config is the run configuration. Zero values mean "use the default".
type Config struct {
	// Catalog lists corruption names in generation order.
	Catalog []string `yaml:"catalog,omitempty" json:"catalog,omitempty"`

	// TransformSize is the square resolution images are resized to before
	// corruption.
	TransformSize int `yaml:"transform_size,omitempty" json:"transform_size,omitempty"`

	// Corrupter configures the external corruption command.
	Corrupter CorrupterConfig `yaml:"corrupter,omitempty" json:"corrupter,omitempty"`

	NumWorkers int `yaml:"num_workers,omitempty" json:"num_workers,omitempty"`
	BatchSize  int `yaml:"batch_size,omitempty" json:"batch_size,omitempty"`
}

// CorrupterConfig configures corrupt.ExecCorrupter.
type CorrupterConfig struct {
	// Command is the argv template; {input}, {output}, {name} and
	// {severity} are substituted per variant.
	Command []string `yaml:"command,omitempty" json:"command,omitempty"`

	// TempDir hosts per-variant scratch files. Empty means os.TempDir().
	TempDir string `yaml:"temp_dir,omitempty" json:"temp_dir,omitempty"`
}

// knownFields are the top-level keys a CUE config may define.
var knownFields = map[string]bool{
	"catalog":        true,
	"transform_size": true,
	"corrupter":      true,
	"num_workers":    true,
	"batch_size":     true,
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads the configuration at path, fills defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = decodeYAML(data)
	case ".cue":
		cfg, err = decodeCUE(path, data)
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .yaml, .yml or .cue)", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeYAML(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // reject typos such as "catalogue:"
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &cfg, nil
}

func decodeCUE(path string, data []byte) (*Config, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("building CUE value: %w", err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validating CUE value: %w", err)
	}

	iter, err := value.Fields()
	if err != nil {
		return nil, fmt.Errorf("iterating CUE fields: %w", err)
	}
	for iter.Next() {
		if !knownFields[iter.Label()] {
			return nil, fmt.Errorf("unknown config field %q", iter.Label())
		}
	}

	var cfg Config
	if err := value.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding CUE value: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.Catalog) == 0 {
		c.Catalog = catalog.DefaultNames()
	}
	if c.TransformSize == 0 {
		c.TransformSize = imageio.DefaultTransformSize
	}
}

// Validate checks value ranges and the catalog.
func (c *Config) Validate() error {
	if c.TransformSize < 0 {
		return fmt.Errorf("transform_size must be positive, got %d", c.TransformSize)
	}
	if c.NumWorkers < 0 {
		return fmt.Errorf("num_workers must not be negative, got %d", c.NumWorkers)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("batch_size must not be negative, got %d", c.BatchSize)
	}
	if _, err := catalog.New(c.Catalog); err != nil {
		return err
	}
	return nil
}

// BuildCatalog returns the validated corruption catalog.
func (c *Config) BuildCatalog() (catalog.Catalog, error) {
	return catalog.New(c.Catalog)
}
