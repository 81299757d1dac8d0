package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/halfdome/swfkit/pkg/pipeline"
)

// configFileName is the per-project config file looked up in the working
// directory when --config is not given.
const configFileName = "swfkit.toml"

// Config holds file-based defaults for the extract pipeline. Flags given on
// the command line always win over config values.
type Config struct {
	Render RenderConfig `toml:"render"`
	Limits LimitsConfig `toml:"limits"`
}

// RenderConfig configures artifact rendering.
type RenderConfig struct {
	Scale          float64 `toml:"scale"`
	Supersample    int     `toml:"supersample"`
	Background     string  `toml:"background"`
	MinStrokeWidth float64 `toml:"stroke_min_width"`
}

// LimitsConfig bounds timeline resolution.
type LimitsConfig struct {
	MaxDepth int `toml:"max_depth"`
	MaxSteps int `toml:"max_steps"`
}

// loadConfig reads a config file. With an explicit path, a missing or broken
// file is an error; otherwise ./swfkit.toml is tried and silently skipped
// when absent.
func loadConfig(path string) (Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		path = configFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// apply copies config values into opts where the corresponding option is
// still at its zero value, so explicit flags take precedence.
func (c Config) apply(opts *pipeline.Options) {
	if opts.Scale == 0 && c.Render.Scale != 0 {
		opts.Scale = c.Render.Scale
	}
	if opts.Supersample == 0 && c.Render.Supersample != 0 {
		opts.Supersample = c.Render.Supersample
	}
	if opts.Background == "" && c.Render.Background != "" {
		opts.Background = c.Render.Background
	}
	if opts.MinStrokeWidth == 0 && c.Render.MinStrokeWidth != 0 {
		opts.MinStrokeWidth = c.Render.MinStrokeWidth
	}
	if opts.MaxDepth == 0 && c.Limits.MaxDepth != 0 {
		opts.MaxDepth = c.Limits.MaxDepth
	}
	if opts.MaxSteps == 0 && c.Limits.MaxSteps != 0 {
		opts.MaxSteps = c.Limits.MaxSteps
	}
}
