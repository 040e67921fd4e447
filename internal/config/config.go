// Package config loads dirproto settings from a YAML file with environment
// overrides. Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/mfateev/dirproto/internal/manifest"
)

// Config defines runtime settings for dirproto.
type Config struct {
	Root         string `yaml:"root"`
	ManifestName string `yaml:"manifest_name"`
	PreviewLines int    `yaml:"preview_lines"`
	AutoReload   bool   `yaml:"auto_reload"`
	JournalPath  string `yaml:"journal_path"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
	LLM          LLM    `yaml:"llm"`
}

// LLM configures the agent's model provider.
type LLM struct {
	Provider         string  `yaml:"provider"`
	Model            string  `yaml:"model"`
	MaxTokens        int     `yaml:"max_tokens"`
	Temperature      float64 `yaml:"temperature"`
	MaxTurns         int     `yaml:"max_turns"`
	InstructionsPath string  `yaml:"instructions_path"`
	// APIKey is usually left empty so the provider SDK reads its own
	// environment variable.
	APIKey string `yaml:"api_key"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Root:         ".",
		ManifestName: manifest.DefaultFileName,
		PreviewLines: 5,
		AutoReload:   true,
		LogLevel:     "info",
		LogFormat:    "text",
		LLM: LLM{
			Provider:  "anthropic",
			MaxTokens: 2048,
			MaxTurns:  8,
		},
	}
}

// LoadConfig loads configuration from a YAML file and environment overrides.
// An empty path skips the file. A missing file is an error only when
// required is true.
func LoadConfig(path string, required bool) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist) && !required:
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"DIRPROTO_ROOT":             &cfg.Root,
		"DIRPROTO_MANIFEST_NAME":    &cfg.ManifestName,
		"DIRPROTO_JOURNAL_PATH":     &cfg.JournalPath,
		"DIRPROTO_LOG_LEVEL":        &cfg.LogLevel,
		"DIRPROTO_LOG_FORMAT":       &cfg.LogFormat,
		"DIRPROTO_LLM_PROVIDER":     &cfg.LLM.Provider,
		"DIRPROTO_LLM_MODEL":        &cfg.LLM.Model,
		"DIRPROTO_LLM_API_KEY":      &cfg.LLM.APIKey,
		"DIRPROTO_LLM_INSTRUCTIONS": &cfg.LLM.InstructionsPath,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"DIRPROTO_PREVIEW_LINES":  &cfg.PreviewLines,
		"DIRPROTO_LLM_MAX_TOKENS": &cfg.LLM.MaxTokens,
		"DIRPROTO_LLM_MAX_TURNS":  &cfg.LLM.MaxTurns,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}

	if v := os.Getenv("DIRPROTO_AUTO_RELOAD"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DIRPROTO_AUTO_RELOAD: %w", err)
		}
		cfg.AutoReload = b
	}
	return nil
}

// Validate checks values that cannot be fixed up silently.
func (c *Config) Validate() error {
	switch name := c.ManifestName; {
	case name == "", name == ".", name == "..", filepath.Base(name) != name:
		return fmt.Errorf("manifest_name must be a plain file name: %q", c.ManifestName)
	}
	if c.PreviewLines < 0 {
		return fmt.Errorf("preview_lines must not be negative: %d", c.PreviewLines)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json: %q", c.LogFormat)
	}
	return nil
}

// ConfigPath picks the config file: explicit (from --config), then
// $DIRPROTO_CONFIG, then ~/.dirproto/config.yaml. required is true when the
// path was named explicitly, so a missing file there is an error.
func ConfigPath(explicit string) (path string, required bool) {
	if explicit != "" {
		return explicit, true
	}
	if path := os.Getenv("DIRPROTO_CONFIG"); path != "" {
		return path, true
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".dirproto", "config.yaml"), false
}
