package agent

import (
	"strings"
)

// commandFence is the info string of the fenced block holding commands.
const commandFence = "commands"

// ExtractCommands pulls command lines out of a model reply. When the reply
// has a fenced block marked "commands", only lines inside such blocks are
// taken; otherwise every line is a candidate. Blank lines and lines starting
// with "#" are skipped either way.
func ExtractCommands(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var (
		fenced        []string
		inFence       bool
		sawNamedFence bool
	)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inFence {
				inFence = false
				continue
			}
			if strings.TrimSpace(strings.TrimPrefix(trimmed, "```")) == commandFence {
				inFence = true
				sawNamedFence = true
			}
			continue
		}
		if inFence {
			fenced = appendCommand(fenced, trimmed)
		}
	}
	if sawNamedFence {
		return fenced
	}

	var all []string
	inFence = false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		all = appendCommand(all, trimmed)
	}
	return all
}

func appendCommand(dst []string, line string) []string {
	if line == "" || strings.HasPrefix(line, "#") {
		return dst
	}
	return append(dst, line)
}
