// Package config loads the tilequest YAML configuration. Every field has a
// default, so a missing file is not an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/leonelquinteros/gotext"
	"gopkg.in/yaml.v3"
)

// LocaleDomain is the gettext domain of the advisory text catalogue.
const LocaleDomain = "tilequest"

// Config is the full configuration.
type Config struct {
	World     string          `yaml:"world"`
	SaveDir   string          `yaml:"save_dir"`
	Log       LogConfig       `yaml:"log"`
	Analyzer  AnalyzerConfig  `yaml:"analyzer"`
	Server    ServerConfig    `yaml:"server"`
	Locale    LocaleConfig    `yaml:"locale"`
	Generator GeneratorConfig `yaml:"generator"`
}

// LogConfig selects the log level and format ("text" or "json").
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AnalyzerConfig tunes the solvability searches.
type AnalyzerConfig struct {
	BudgetFactor int  `yaml:"budget_factor"`
	HoleBridging bool `yaml:"hole_bridging"`
}

// ServerConfig configures the editor bridge.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LocaleConfig points at a gettext catalogue directory.
type LocaleConfig struct {
	Dir      string `yaml:"dir"`
	Language string `yaml:"language"`
}

// GeneratorConfig sizes generated levels. A zero seed means time-based.
type GeneratorConfig struct {
	Width  int   `yaml:"width"`
	Height int   `yaml:"height"`
	Passes int   `yaml:"passes"`
	Seed   int64 `yaml:"seed"`
}

// Default returns the built-in configuration.
func Default() Config {
	saveDir := ".tilequest/saves"
	if home, err := os.UserHomeDir(); err == nil {
		saveDir = filepath.Join(home, ".tilequest", "saves")
	}
	return Config{
		SaveDir:   saveDir,
		Log:       LogConfig{Level: "info", Format: "text"},
		Analyzer:  AnalyzerConfig{BudgetFactor: 64, HoleBridging: true},
		Server:    ServerConfig{Addr: ":8080"},
		Generator: GeneratorConfig{Width: 22, Height: 16, Passes: 5},
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.SaveDir = expandHome(cfg.SaveDir)
	return cfg, cfg.Validate()
}

// Validate rejects values no component can run with.
func (c Config) Validate() error {
	var problems []string
	if c.Analyzer.BudgetFactor <= 0 {
		problems = append(problems, "analyzer.budget_factor must be positive")
	}
	if c.Generator.Width <= 0 || c.Generator.Height <= 0 {
		problems = append(problems, "generator.width and generator.height must be positive")
	}
	if c.Generator.Passes < 0 {
		problems = append(problems, "generator.passes must not be negative")
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("unknown log.format %q", c.Log.Format))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ConfigureLocale installs the configured catalogue for advisory text.
// Without a language the English message ids are shown as is.
func (c Config) ConfigureLocale() {
	if c.Locale.Language == "" {
		return
	}
	dir := c.Locale.Dir
	if dir == "" {
		dir = "locales"
	}
	gotext.Configure(dir, c.Locale.Language, LocaleDomain)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
