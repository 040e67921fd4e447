package cli

import "github.com/mfateev/dirproto/internal/agent"

// AgentDoneMsg is sent when an agent run started from the REPL finishes.
type AgentDoneMsg struct {
	Task   string
	Report agent.Report
	Err    error
}
