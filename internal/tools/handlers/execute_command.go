package handlers

import (
	"context"

	"github.com/mfateev/dirproto/internal/tools"
)

// ExecuteCommandTool runs one command line through the sandbox.
type ExecuteCommandTool struct {
	sb Sandbox
}

// NewExecuteCommandTool creates a new execute_command tool handler.
func NewExecuteCommandTool(sb Sandbox) *ExecuteCommandTool {
	return &ExecuteCommandTool{sb: sb}
}

// Name returns the tool's name.
func (t *ExecuteCommandTool) Name() string {
	return tools.ExecuteCommandTool
}

// IsMutating returns true; commands change the sandbox when they succeed.
func (t *ExecuteCommandTool) IsMutating(*tools.ToolInvocation) bool {
	return true
}

// Handle executes the command. A refused or failed command is a normal
// output with Success false; only bad arguments return an error.
func (t *ExecuteCommandTool) Handle(ctx context.Context, invocation *tools.ToolInvocation) (*tools.ToolOutput, error) {
	line, err := invocation.StringArg("command")
	if err != nil {
		return nil, err
	}
	res := t.sb.Execute(ctx, line)
	return tools.NewOutput(res.String(), res.OK), nil
}
