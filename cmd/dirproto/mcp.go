package main

import (
	"github.com/spf13/cobra"

	"github.com/mfateev/dirproto/internal/mcp"
	"github.com/mfateev/dirproto/internal/tools/handlers"
	"github.com/mfateev/dirproto/internal/version"
)

func newMCPCommand() *cobra.Command {
	mcpCommand := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the sandbox tools over MCP on stdin and stdout",
		Long: `Serve execute_command, read_file and display_tree to an MCP client over
stdio. Every call goes through the same manifests as the CLI. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: mcpAction,
	}
	return mcpCommand
}

func mcpAction(cmd *cobra.Command, _ []string) error {
	a := appFrom(cmd)
	e, err := a.openEngine()
	if err != nil {
		return err
	}
	a.log.WithField("root", e.Root()).Info("serving MCP on stdio")
	return mcp.NewServer(handlers.NewRouter(e), version.String(), a.log).ServeStdio(cmd.Context())
}
