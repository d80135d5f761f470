package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"gsa-map-porter/internal/assetpath"
)

// Config holds conversion, batch and preview settings.
// Values come from an optional YAML/JSON/TOML file, then GSA_* environment
// variables, then CLI flags via Resolve.
type Config struct {
	// Paths
	SourceRoot string `yaml:"source_root" json:"source_root" toml:"source_root" env:"GSA_SOURCE_ROOT"`
	TargetRoot string `yaml:"target_root" json:"target_root" toml:"target_root" env:"GSA_TARGET_ROOT"`
	Manifest   string `yaml:"manifest" json:"manifest" toml:"manifest" env:"GSA_MANIFEST"`

	// Output
	Format string `yaml:"format" json:"format" toml:"format" env:"GSA_FORMAT" env-default:"json"`
	Indent int    `yaml:"indent" json:"indent" toml:"indent" env:"GSA_INDENT" env-default:"4"`
	Strict bool   `yaml:"strict" json:"strict" toml:"strict" env:"GSA_STRICT"`

	Workers int `yaml:"workers" json:"workers" toml:"workers" env:"GSA_WORKERS"`

	Assets  AssetConfig   `yaml:"assets" json:"assets" toml:"assets"`
	Log     LogConfig     `yaml:"log" json:"log" toml:"log"`
	Preview PreviewConfig `yaml:"preview" json:"preview" toml:"preview"`
}

// AssetConfig controls how source model paths become engine asset paths.
type AssetConfig struct {
	Marker     string   `yaml:"marker" json:"marker" toml:"marker" env:"GSA_ASSET_MARKER" env-default:"Data"`
	Prefix     string   `yaml:"prefix" json:"prefix" toml:"prefix" env:"GSA_ASSET_PREFIX" env-default:"/Game"`
	Extensions []string `yaml:"extensions" json:"extensions" toml:"extensions" env:"GSA_MODEL_EXTENSIONS" env-separator:"," env-default:".nif"`
}

// LogConfig selects the log level and an optional log file, truncated per run.
type LogConfig struct {
	Level string `yaml:"level" json:"level" toml:"level" env:"GSA_LOG_LEVEL" env-default:"info"`
	File  string `yaml:"file" json:"file" toml:"file" env:"GSA_LOG_FILE"`
}

// PreviewConfig holds layout preview render settings.
type PreviewConfig struct {
	Size        int     `yaml:"size" json:"size" toml:"size" env:"GSA_PREVIEW_SIZE" env-default:"1024"`
	Supersample int     `yaml:"supersample" json:"supersample" toml:"supersample" env:"GSA_PREVIEW_SUPERSAMPLE" env-default:"2"`
	Scale       float64 `yaml:"scale" json:"scale" toml:"scale" env:"GSA_PREVIEW_SCALE" env-default:"0.02"`
	Backdrop    string  `yaml:"backdrop" json:"backdrop" toml:"backdrop" env:"GSA_PREVIEW_BACKDROP"`
}

// Load reads the config file at path (format chosen by extension) with
// environment overrides. An empty path reads the environment only.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("config: read env: %w", err)
		}
		return cfg, nil
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	SourceRoot string
	TargetRoot string
	Format     string
	Strict     bool
	Workers    int
	LogFile    string
	LogLevel   string
	Manifest   string
}

// Resolve applies CLI flags, then fills any field still unset.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.SourceRoot != "" {
		c.SourceRoot = flags.SourceRoot
	}
	if flags.TargetRoot != "" {
		c.TargetRoot = flags.TargetRoot
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Strict {
		c.Strict = true
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.LogFile != "" {
		c.Log.File = flags.LogFile
	}
	if flags.LogLevel != "" {
		c.Log.Level = flags.LogLevel
	}
	if flags.Manifest != "" {
		c.Manifest = flags.Manifest
	}

	if c.Format == "" {
		c.Format = "json"
	}
	c.Format = strings.ToLower(c.Format)
	if c.Indent <= 0 {
		c.Indent = 4
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.Assets.Marker == "" {
		c.Assets.Marker = assetpath.DefaultMarker
	}
	if c.Assets.Prefix == "" {
		c.Assets.Prefix = assetpath.DefaultPrefix
	}
	if len(c.Assets.Extensions) == 0 {
		c.Assets.Extensions = assetpath.DefaultExtensions
	}

	if c.Preview.Size <= 0 {
		c.Preview.Size = 1024
	}
	if c.Preview.Supersample <= 0 {
		c.Preview.Supersample = 2
	}
	if c.Preview.Scale <= 0 {
		c.Preview.Scale = 0.02
	}
}

// Paths returns the asset path resolver for the configured marker, prefix
// and model extensions.
func (c Config) Paths() assetpath.Resolver {
	return assetpath.Resolver{
		Marker:     c.Assets.Marker,
		Prefix:     c.Assets.Prefix,
		Extensions: c.Assets.Extensions,
	}
}
