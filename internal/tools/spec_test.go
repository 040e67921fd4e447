package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputSchema(t *testing.T) {
	schema := NewExecuteCommandToolSpec().InputSchema()
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"command"}, schema["required"])
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "command")

	schema = NewDisplayTreeToolSpec().InputSchema()
	assert.NotContains(t, schema, "required")
}

func TestDefaultToolSpecs(t *testing.T) {
	var names []string
	for _, s := range DefaultToolSpecs() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{ExecuteCommandTool, ReadFileTool, DisplayTreeTool}, names)
}

func TestInvocationArgs(t *testing.T) {
	inv := &ToolInvocation{Arguments: map[string]any{
		"s": "x",
		"f": float64(3),
		"i": 4,
		"b": true,
		"n": nil,
	}}

	s, err := inv.StringArg("s")
	require.NoError(t, err)
	assert.Equal(t, "x", s)
	_, err = inv.StringArg("missing")
	assert.True(t, IsValidationError(err))

	n, err := inv.IntArg("f", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = inv.IntArg("i", 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	n, err = inv.IntArg("n", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	_, err = inv.IntArg("s", 0)
	assert.True(t, IsValidationError(err))

	b, err := inv.BoolArg("b", false)
	require.NoError(t, err)
	assert.True(t, b)
	_, err = inv.BoolArg("s", false)
	assert.True(t, IsValidationError(err))
}

func TestToolOutput_Succeeded(t *testing.T) {
	assert.True(t, (&ToolOutput{}).Succeeded())
	assert.True(t, NewOutput("ok", true).Succeeded())
	assert.False(t, NewOutput("no", false).Succeeded())
}
