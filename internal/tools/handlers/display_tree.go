package handlers

import (
	"context"
	"iter"
	"strings"

	"github.com/mfateev/dirproto/internal/tools"
	"github.com/mfateev/dirproto/internal/tree"
)

const defaultPreviewLines = 5

// DisplayTreeTool renders the visible tree.
type DisplayTreeTool struct {
	sb Sandbox
}

// NewDisplayTreeTool creates a new display_tree tool handler.
func NewDisplayTreeTool(sb Sandbox) *DisplayTreeTool {
	return &DisplayTreeTool{sb: sb}
}

// Name returns the tool's name.
func (t *DisplayTreeTool) Name() string {
	return tools.DisplayTreeTool
}

// IsMutating returns false.
func (t *DisplayTreeTool) IsMutating(*tools.ToolInvocation) bool {
	return false
}

// Handle renders the tree with the requested options.
func (t *DisplayTreeTool) Handle(_ context.Context, invocation *tools.ToolInvocation) (*tools.ToolOutput, error) {
	maxLines, err := invocation.IntArg("max_lines", defaultPreviewLines)
	if err != nil {
		return nil, err
	}
	sizes, err := invocation.BoolArg("show_sizes", false)
	if err != nil {
		return nil, err
	}
	lines := t.sb.DisplayWith(tree.Options{MaxPreviewLines: maxLines, ShowSizes: sizes})
	out, _ := tools.LimitOutput(joinLines(lines), 0)
	return tools.NewOutput(out, true), nil
}

func joinLines(seq iter.Seq[string]) string {
	var sb strings.Builder
	for line := range seq {
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
	}
	return sb.String()
}
