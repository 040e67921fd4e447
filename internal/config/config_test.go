package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("", false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "dirproto.json", cfg.ManifestName)
	assert.True(t, cfg.AutoReload)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
root: /srv/box
manifest_name: .access.json
preview_lines: 2
auto_reload: false
log_format: json
llm:
  provider: openai
  model: gpt-4.1
  max_turns: 3
`)
	cfg, err := LoadConfig(path, true)
	require.NoError(t, err)
	assert.Equal(t, "/srv/box", cfg.Root)
	assert.Equal(t, ".access.json", cfg.ManifestName)
	assert.Equal(t, 2, cfg.PreviewLines)
	assert.False(t, cfg.AutoReload)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4.1", cfg.LLM.Model)
	assert.Equal(t, 3, cfg.LLM.MaxTurns)
	// Unset keys keep their defaults.
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 2048, cfg.LLM.MaxTokens)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "root: /from/file\npreview_lines: 2\n")
	t.Setenv("DIRPROTO_ROOT", "/from/env")
	t.Setenv("DIRPROTO_PREVIEW_LINES", "9")
	t.Setenv("DIRPROTO_AUTO_RELOAD", "false")
	t.Setenv("DIRPROTO_LLM_MODEL", "claude-haiku-4.5")

	cfg, err := LoadConfig(path, true)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Root)
	assert.Equal(t, 9, cfg.PreviewLines)
	assert.False(t, cfg.AutoReload)
	assert.Equal(t, "claude-haiku-4.5", cfg.LLM.Model)
}

func TestLoadConfig_Errors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	_, err := LoadConfig(missing, true)
	assert.Error(t, err)

	cfg, err := LoadConfig(missing, false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = LoadConfig(writeConfig(t, "preview_lines: [1"), true)
	assert.ErrorContains(t, err, "parse config")

	_, err = LoadConfig(writeConfig(t, "manifest_name: sub/dirproto.json"), true)
	assert.ErrorContains(t, err, "manifest_name")

	for _, name := range []string{".", ".."} {
		_, err = LoadConfig(writeConfig(t, "manifest_name: \""+name+"\""), true)
		assert.ErrorContains(t, err, "manifest_name", name)
	}

	_, err = LoadConfig(writeConfig(t, "log_format: xml"), true)
	assert.ErrorContains(t, err, "log_format")

	t.Setenv("DIRPROTO_PREVIEW_LINES", "lots")
	_, err = LoadConfig("", false)
	assert.ErrorContains(t, err, "DIRPROTO_PREVIEW_LINES")
}

func TestConfigPath(t *testing.T) {
	t.Setenv("DIRPROTO_CONFIG", "/etc/dirproto.yaml")
	path, required := ConfigPath("./mine.yaml")
	assert.Equal(t, "./mine.yaml", path)
	assert.True(t, required)

	path, required = ConfigPath("")
	assert.Equal(t, "/etc/dirproto.yaml", path)
	assert.True(t, required)

	t.Setenv("DIRPROTO_CONFIG", "")
	path, required = ConfigPath("")
	assert.True(t, strings.HasSuffix(path, filepath.Join(".dirproto", "config.yaml")))
	assert.False(t, required)
}

func TestConfigPath_MissingEnvFileIsAnError(t *testing.T) {
	t.Setenv("DIRPROTO_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := LoadConfig(ConfigPath(""))
	assert.ErrorContains(t, err, "read config file")
}
