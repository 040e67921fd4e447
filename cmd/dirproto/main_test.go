package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSandbox(t *testing.T, files map[string]string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log_level: error\n"), 0o644))
	t.Setenv("DIRPROTO_CONFIG", cfgPath)
	root := t.TempDir()
	for rel, body := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return root
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd := newApp()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestInit(t *testing.T) {
	root := newSandbox(t, map[string]string{"sub/a.txt": "a"})

	out, err := run(t, "", "init", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "created 2 manifests")
	assert.FileExists(t, filepath.Join(root, "dirproto.json"))
	assert.FileExists(t, filepath.Join(root, "sub", "dirproto.json"))
}

func TestExecArgsAndTree(t *testing.T) {
	root := newSandbox(t, map[string]string{
		"dirproto.json": `{"visible_entries": ["notes.txt"], "operable_entries": ["notes.txt", "<create>"], "show_content": true}`,
	})

	out, err := run(t, "", "exec", "--root", root, `notes.txt = "hello"`)
	require.NoError(t, err)
	assert.NotContains(t, out, "[")

	out, err = run(t, "", "tree", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "notes.txt")
	assert.Contains(t, out, "hello")
}

func TestExecStdinReportsFailures(t *testing.T) {
	root := newSandbox(t, map[string]string{"dirproto.json": `{}`})
	stdin := "# comment\n\ntouch a.txt\nmkdir b\n"

	out, err := run(t, stdin, "exec", "--root", root, "--json")
	require.Error(t, err)
	assert.EqualError(t, err, "2 of 2 commands failed")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"command":"touch a.txt"`)
	assert.Contains(t, lines[0], `"ok":false`)
	assert.Contains(t, lines[0], "PermissionDenied{creation}")
}

func TestExecStopOnError(t *testing.T) {
	root := newSandbox(t, map[string]string{"dirproto.json": `{}`})

	out, err := run(t, "", "exec", "--root", root, "--stop-on-error", "touch a.txt", "touch b.txt")
	require.Error(t, err)
	assert.EqualError(t, err, "1 of 1 commands failed")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestReadAndInspect(t *testing.T) {
	root := newSandbox(t, map[string]string{
		"dirproto.json": `{"visible_entries": ["a.txt"]}`,
		"a.txt":         "alpha",
		"hidden.txt":    "secret",
	})

	out, err := run(t, "", "read", "--root", root, "--markdown=false", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "alpha\n", out)

	_, err = run(t, "", "read", "--root", root, "hidden.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found or not visible")

	out, err = run(t, "", "inspect", "--root", root, "a.txt", "new.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "a.txt (file): visible yes · operable no")
	assert.Contains(t, out, "new.txt: does not exist (create no)")
}

func TestInspectAllEffective(t *testing.T) {
	root := newSandbox(t, map[string]string{
		"dirproto.json":     `{"visible_entries": ["sub"], "operable_entries": ["<create>"]}`,
		"sub/dirproto.json": `{"inherit_parent": true, "show_content": true}`,
	})

	out, err := run(t, "", "inspect", "--root", root, "--all", "--effective")
	require.NoError(t, err)
	assert.Contains(t, out, ". (directory): visible yes")
	assert.Contains(t, out, "sub (directory): visible yes")
	assert.Contains(t, out, `"show_content": true`)
	assert.Equal(t, 2, strings.Count(out, `"<create>"`))

	_, err = run(t, "", "inspect", "--root", root)
	require.Error(t, err)
}

func TestHistory(t *testing.T) {
	root := newSandbox(t, map[string]string{
		"dirproto.json": `{"operable_entries": ["<create>"]}`,
	})
	journal := filepath.Join(t.TempDir(), "journal.jsonl")

	_, err := run(t, "", "exec", "--root", root, "--journal", journal, "mkdir logs")
	require.NoError(t, err)

	out, err := run(t, "", "history", "--journal", journal)
	require.NoError(t, err)
	assert.Contains(t, out, "cli")
	assert.Contains(t, out, "mkdir logs")

	_, err = run(t, "", "history")
	require.Error(t, err)
}

func TestMissingConfigFromEnv(t *testing.T) {
	root := newSandbox(t, nil)
	t.Setenv("DIRPROTO_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := run(t, "", "tree", "--root", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestInvalidGlobalFlags(t *testing.T) {
	newSandbox(t, nil)

	_, err := run(t, "", "tree", "--log-level", "loud")
	require.Error(t, err)

	_, err = run(t, "", "tree", "--manifest", "a/b.json")
	require.Error(t, err)

	_, err = run(t, "", "tree", "--manifest", "..")
	require.Error(t, err)
}
