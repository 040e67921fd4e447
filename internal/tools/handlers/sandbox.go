// Package handlers implements the sandbox tools on top of the engine.
package handlers

import (
	"context"
	"iter"

	"github.com/mfateev/dirproto/internal/command"
	"github.com/mfateev/dirproto/internal/tools"
	"github.com/mfateev/dirproto/internal/tree"
)

// Sandbox is the part of the engine the handlers use.
type Sandbox interface {
	Execute(ctx context.Context, line string) command.Result
	ReadFileContent(rel string) (string, bool)
	DisplayWith(opts tree.Options) iter.Seq[string]
}

// NewRegistry registers every sandbox tool against sb.
func NewRegistry(sb Sandbox) *tools.ToolRegistry {
	r := tools.NewToolRegistry()
	r.Register(NewExecuteCommandTool(sb))
	r.Register(NewReadFileTool(sb))
	r.Register(NewDisplayTreeTool(sb))
	return r
}

// NewRouter pairs NewRegistry with the default specs.
func NewRouter(sb Sandbox) *tools.ToolRouter {
	return tools.NewToolRouter(NewRegistry(sb), tools.DefaultToolSpecs())
}
