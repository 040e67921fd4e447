package handlers

import (
	"context"
	"fmt"

	"github.com/mfateev/dirproto/internal/tools"
)

// ReadFileTool returns the content of a visible file.
type ReadFileTool struct {
	sb Sandbox
}

// NewReadFileTool creates a new read_file tool handler.
func NewReadFileTool(sb Sandbox) *ReadFileTool {
	return &ReadFileTool{sb: sb}
}

// Name returns the tool's name.
func (t *ReadFileTool) Name() string {
	return tools.ReadFileTool
}

// IsMutating returns false - reading files doesn't modify the sandbox.
func (t *ReadFileTool) IsMutating(*tools.ToolInvocation) bool {
	return false
}

// Handle reads the file. Missing, hidden and non-regular paths all produce
// the same refusal so that hidden entries cannot be probed.
func (t *ReadFileTool) Handle(_ context.Context, invocation *tools.ToolInvocation) (*tools.ToolOutput, error) {
	path, err := invocation.StringArg("path")
	if err != nil {
		return nil, err
	}
	content, ok := t.sb.ReadFileContent(path)
	if !ok {
		return tools.NewOutput(fmt.Sprintf("cannot read %s: not found or not visible", path), false), nil
	}
	content, _ = tools.LimitOutput(content, 0)
	return tools.NewOutput(content, true), nil
}
