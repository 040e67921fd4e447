package instructions

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- GetBaseInstructions tests ---

func TestGetBaseInstructions_Default(t *testing.T) {
	result := GetBaseInstructions("")
	assert.Contains(t, result, "<create>")
	assert.Contains(t, result, "src -> dest")
	assert.Contains(t, result, "mkdir path")
}

func TestGetBaseInstructions_Override(t *testing.T) {
	assert.Equal(t, "custom system prompt", GetBaseInstructions("custom system prompt"))
}

// --- BuildSandboxContext tests ---

func TestBuildSandboxContext(t *testing.T) {
	result := BuildSandboxContext("project", "dirproto.json", []string{"project/", "└── a.txt"})
	assert.Contains(t, result, "<name>project</name>")
	assert.Contains(t, result, "<manifest>dirproto.json</manifest>")
	assert.Contains(t, result, "project/\n└── a.txt")
}

// --- LoadPersonalInstructions tests ---

func TestLoadPersonalInstructions(t *testing.T) {
	dir := t.TempDir()

	got, err := LoadPersonalInstructions("")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = LoadPersonalInstructions(filepath.Join(dir, "missing.md"))
	require.NoError(t, err)
	assert.Empty(t, got)

	path := filepath.Join(dir, "instructions.md")
	require.NoError(t, os.WriteFile(path, []byte("  prefer small files\n"), 0o644))
	got, err = LoadPersonalInstructions(path)
	require.NoError(t, err)
	assert.Equal(t, "prefer small files", got)
}

func TestLoadPersonalInstructions_Truncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.md")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", MaxPersonalInstructionsBytes+10)), 0o644))
	got, err := LoadPersonalInstructions(path)
	require.NoError(t, err)
	assert.Len(t, got, MaxPersonalInstructionsBytes)
}

// --- MergeInstructions tests ---

func TestMergeInstructions_AllSources(t *testing.T) {
	merged := MergeInstructions(MergeInput{
		PersonalInstructions: "be terse",
		Task:                 "tidy up",
		SandboxContext:       "<sandbox_context/>",
		Feedback:             []string{"[PermissionDenied{visibility}] .secret is not visible"},
	})
	assert.True(t, strings.HasPrefix(merged.System, defaultBaseInstructions))
	assert.Contains(t, merged.System, "be terse")
	assert.Equal(t, "Task: tidy up\n\n<sandbox_context/>\n\nResults of your previous commands:\n[PermissionDenied{visibility}] .secret is not visible", merged.User)
}

func TestMergeInstructions_Minimal(t *testing.T) {
	merged := MergeInstructions(MergeInput{BaseOverride: "base", Task: "t"})
	assert.Equal(t, "base", merged.System)
	assert.Equal(t, "Task: t", merged.User)
}
