package handlers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfateev/dirproto/internal/access"
	"github.com/mfateev/dirproto/internal/engine"
	"github.com/mfateev/dirproto/internal/tools"
)

func newSandbox(t *testing.T, files map[string]string) *engine.Engine {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	e, err := engine.Open(root)
	require.NoError(t, err)
	return e
}

func invoke(t *testing.T, router *tools.ToolRouter, name string, args map[string]any) *tools.ToolOutput {
	t.Helper()
	out, err := router.DispatchToolCall(context.Background(), &tools.ToolInvocation{
		CallID:    "test-call",
		ToolName:  name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.NotNil(t, out)
	return out
}

// ---------------------------------------------------------------------------
// execute_command
// ---------------------------------------------------------------------------

func TestExecuteCommand_SuccessAndDenial(t *testing.T) {
	sb := newSandbox(t, map[string]string{
		"dirproto.json": `{"visible_entries": ["a.txt"], "operable_entries": ["a.txt"]}`,
		"a.txt":         "a",
		".secret":       "s",
	})
	router := NewRouter(sb)

	out := invoke(t, router, tools.ExecuteCommandTool, map[string]any{"command": `a.txt += "b"`})
	assert.True(t, out.Succeeded(), out.Content)

	out = invoke(t, router, tools.ExecuteCommandTool, map[string]any{"command": ".secret ×"})
	assert.False(t, out.Succeeded())
	assert.Contains(t, out.Content, "[PermissionDenied{visibility}]")
}

func TestExecuteCommand_MissingArgument(t *testing.T) {
	router := NewRouter(newSandbox(t, nil))
	_, err := router.DispatchToolCall(context.Background(), &tools.ToolInvocation{
		ToolName:  tools.ExecuteCommandTool,
		Arguments: map[string]any{},
	})
	assert.True(t, tools.IsValidationError(err))

	_, err = router.DispatchToolCall(context.Background(), &tools.ToolInvocation{
		ToolName:  tools.ExecuteCommandTool,
		Arguments: map[string]any{"command": 42},
	})
	assert.True(t, tools.IsValidationError(err))
}

// ---------------------------------------------------------------------------
// read_file
// ---------------------------------------------------------------------------

func TestReadFile(t *testing.T) {
	sb := newSandbox(t, map[string]string{
		"dirproto.json": `{"visible_entries": ["a.txt", "pic.png"]}`,
		"a.txt":         "hello",
		"pic.png":       "x",
		"hidden.txt":    "h",
	})
	router := NewRouter(sb)

	out := invoke(t, router, tools.ReadFileTool, map[string]any{"path": "a.txt"})
	assert.True(t, out.Succeeded())
	assert.Equal(t, "hello", out.Content)

	out = invoke(t, router, tools.ReadFileTool, map[string]any{"path": "pic.png"})
	assert.Equal(t, access.BinaryMarker, out.Content)

	hidden := invoke(t, router, tools.ReadFileTool, map[string]any{"path": "hidden.txt"})
	missing := invoke(t, router, tools.ReadFileTool, map[string]any{"path": "missing.txt"})
	assert.False(t, hidden.Succeeded())
	assert.False(t, missing.Succeeded())
	assert.Equal(t, "cannot read hidden.txt: not found or not visible", hidden.Content)
}

// ---------------------------------------------------------------------------
// display_tree
// ---------------------------------------------------------------------------

func TestDisplayTree(t *testing.T) {
	sb := newSandbox(t, map[string]string{
		"dirproto.json": `{"visible_entries": ["a.txt"], "show_content": true}`,
		"a.txt":         "one\ntwo",
	})
	router := NewRouter(sb)
	name := filepath.Base(sb.Root())

	out := invoke(t, router, tools.DisplayTreeTool, map[string]any{"max_lines": float64(1)})
	assert.Equal(t, name+"/\n└── a.txt\n    one\n    ... (+1 more lines)", out.Content)

	out = invoke(t, router, tools.DisplayTreeTool, map[string]any{"show_sizes": true})
	assert.Contains(t, out.Content, "a.txt (7B)")

	_, err := router.DispatchToolCall(context.Background(), &tools.ToolInvocation{
		ToolName:  tools.DisplayTreeTool,
		Arguments: map[string]any{"max_lines": "many"},
	})
	assert.True(t, tools.IsValidationError(err))
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

func TestRegistry(t *testing.T) {
	r := NewRegistry(newSandbox(t, nil))
	assert.Equal(t, []string{tools.DisplayTreeTool, tools.ExecuteCommandTool, tools.ReadFileTool}, r.Names())

	h, err := r.GetHandler(tools.ExecuteCommandTool)
	require.NoError(t, err)
	assert.True(t, h.IsMutating(nil))

	h, err = r.GetHandler(tools.ReadFileTool)
	require.NoError(t, err)
	assert.False(t, h.IsMutating(nil))

	_, err = r.GetHandler("shell")
	assert.Error(t, err)
}
