// Package tools exposes sandbox operations as named tools with declared
// parameters, so the same handlers serve the agent loop and the MCP server.
package tools

// ToolOutput represents the result of tool execution.
type ToolOutput struct {
	Content string `json:"content"`
	Success *bool  `json:"success,omitempty"`
}

// NewOutput builds a ToolOutput with Success set.
func NewOutput(content string, success bool) *ToolOutput {
	return &ToolOutput{Content: content, Success: &success}
}

// Succeeded reports whether the output is marked successful. An unset
// Success counts as success.
func (o *ToolOutput) Succeeded() bool {
	return o.Success == nil || *o.Success
}

// ToolInvocation provides context for tool execution.
type ToolInvocation struct {
	CallID    string         `json:"call_id"`
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments"`
}

// StringArg returns a required string argument.
func (inv *ToolInvocation) StringArg(name string) (string, error) {
	raw, ok := inv.Arguments[name]
	if !ok {
		return "", NewValidationErrorf("missing required argument: %s", name)
	}
	s, ok := raw.(string)
	if !ok {
		return "", NewValidationErrorf("%s must be a string", name)
	}
	return s, nil
}

// IntArg returns an optional integer argument. JSON numbers decode as
// float64, so both float64 and int are accepted.
func (inv *ToolInvocation) IntArg(name string, def int) (int, error) {
	raw, ok := inv.Arguments[name]
	if !ok || raw == nil {
		return def, nil
	}
	switch v := raw.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	default:
		return 0, NewValidationErrorf("%s must be a number", name)
	}
}

// BoolArg returns an optional boolean argument.
func (inv *ToolInvocation) BoolArg(name string, def bool) (bool, error) {
	raw, ok := inv.Arguments[name]
	if !ok || raw == nil {
		return def, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, NewValidationErrorf("%s must be a boolean", name)
	}
	return b, nil
}
