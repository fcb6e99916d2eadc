// Package config holds the litweave configuration surface.
//
// Configuration is an explicit struct passed into parse/render, never
// ambient process state; a loaded Config is treated as immutable.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Title   string              `yaml:"title,omitempty"`
	Output  OutputConfig        `yaml:"output"`
	Render  RenderOptions       `yaml:"render"`
	Cache   CacheConfig         `yaml:"cache"`
	Engines map[string][]string `yaml:"engines,omitempty"`
	Preview PreviewConfig       `yaml:"preview"`
}

// OutputConfig controls where rendered documents are written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Remove stale output before writing
}

// RenderOptions is the option store consulted during a render pass.
//
// It is populated once (config file plus per-document frontmatter
// overrides) and passed by value; nothing mutates it after rendering
// begins.
type RenderOptions struct {
	// Cache enables fragment-result caching for executable chunks.
	Cache bool `yaml:"cache"`

	// Digits is the display precision applied to numeric values in
	// evaluator output.
	Digits int `yaml:"digits"`

	// CodeFolding is the initial visibility of code chunks: "show" or "hide".
	CodeFolding string `yaml:"code_folding"`

	// CommentMarker prefixes echoed evaluator output lines.
	CommentMarker string `yaml:"comment_marker"`
}

// CacheConfig locates the fragment cache database.
type CacheConfig struct {
	Path string `yaml:"path"`
}

// PreviewConfig configures the local preview server.
type PreviewConfig struct {
	Port            int    `yaml:"port"`
	RebuildInterval string `yaml:"rebuild_interval"` // Go duration; periodic full rebuild
	Metrics         bool   `yaml:"metrics"`          // expose /metrics on the preview server
}

const (
	DefaultDigits        = 4
	DefaultCommentMarker = "#>"
	DefaultCodeFolding   = FoldingShow
	DefaultCachePath     = ".litweave/cache.db"
	DefaultOutputDir     = "./site"
	DefaultPreviewPort   = 1316

	FoldingShow = "show"
	FoldingHide = "hide"
)

// Load loads configuration from the specified file.
//
// A .env/.env.local file, if present, is loaded first (without overriding
// existing process environment), and ${VAR} references in the YAML are
// expanded before unmarshalling.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields with documented defaults.
func (c *Config) ApplyDefaults() {
	if c.Output.Directory == "" {
		c.Output.Directory = DefaultOutputDir
	}
	if c.Render.Digits == 0 {
		c.Render.Digits = DefaultDigits
	}
	if c.Render.CodeFolding == "" {
		c.Render.CodeFolding = DefaultCodeFolding
	}
	if c.Render.CommentMarker == "" {
		c.Render.CommentMarker = DefaultCommentMarker
	}
	if c.Cache.Path == "" {
		c.Cache.Path = DefaultCachePath
	}
	if c.Preview.Port == 0 {
		c.Preview.Port = DefaultPreviewPort
	}
}

// Validate rejects option values the renderer cannot honor.
func (c *Config) Validate() error {
	if c.Render.Digits < 1 || c.Render.Digits > 15 {
		return fmt.Errorf("render.digits must be between 1 and 15, got %d", c.Render.Digits)
	}
	if c.Render.CodeFolding != FoldingShow && c.Render.CodeFolding != FoldingHide {
		return fmt.Errorf("render.code_folding must be %q or %q, got %q",
			FoldingShow, FoldingHide, c.Render.CodeFolding)
	}
	return nil
}

// loadEnvFiles loads the first .env file found. Existing process
// environment variables are never overwritten (godotenv.Load semantics).
func loadEnvFiles() {
	for _, p := range []string{".env", ".env.local"} {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err == nil {
			fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", p)
			return
		}
	}
}
