package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mfateev/dirproto/internal/tree"
)

const defaultHistoryLines = 10

// metaPrefix starts REPL commands that are not sandbox commands.
const metaPrefix = ":"

const helpText = `Sandbox commands:
  src -> dest        move or rename
  path ×             delete
  path += "text"     append
  path = "text"      overwrite
  touch path         create empty file
  mkdir path         create directory

REPL commands:
  :tree [lines]      show the visible tree
  :sizes             toggle file sizes in :tree
  :read path         show a visible file
  :inspect path      show what the manifests allow for path
  :reload            re-read every manifest
  :history [n]       show the last n commands of this session
  :agent task        let the model work on task
  :clear             clear the screen
  :help              this text
  :quit              exit`

// parseMeta splits a REPL command into name and argument.
func parseMeta(line string) (name, arg string, ok bool) {
	if !strings.HasPrefix(line, metaPrefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(line, metaPrefix)
	name, arg, _ = strings.Cut(rest, " ")
	return strings.ToLower(name), strings.TrimSpace(arg), true
}

// runMeta handles a REPL command. It returns a tea.Cmd for work that runs
// in the background.
func (m *Model) runMeta(name, arg string) tea.Cmd {
	switch name {
	case "help", "h", "?":
		m.appendToViewport(helpText + "\n")
	case "tree", "t":
		lines := m.config.PreviewLines
		if arg != "" {
			n, err := strconv.Atoi(arg)
			if err != nil || n < 0 {
				m.appendToViewport(m.renderer.RenderError(fmt.Errorf("invalid line count: %q", arg)))
				return nil
			}
			lines = n
		}
		m.showTree(lines)
	case "sizes":
		m.showSizes = !m.showSizes
		m.appendToViewport(m.renderer.RenderSystem(fmt.Sprintf("sizes %s", onOff(m.showSizes))))
	case "read", "cat":
		if arg == "" {
			m.appendToViewport(m.renderer.RenderError(fmt.Errorf(":read needs a path")))
			return nil
		}
		content, ok := m.sb.ReadFileContent(arg)
		if !ok {
			m.appendToViewport(m.renderer.RenderError(fmt.Errorf("cannot read %s: not found or not visible", arg)))
			return nil
		}
		m.appendToViewport(m.renderer.RenderFile(arg, content))
	case "inspect", "i":
		if arg == "" {
			arg = "."
		}
		p, err := m.sb.Inspect(arg)
		if err != nil {
			m.appendToViewport(m.renderer.RenderError(err))
			return nil
		}
		m.appendToViewport(m.renderer.RenderPermissions(p))
	case "reload":
		warnings := m.sb.Reload()
		m.appendToViewport(m.renderer.RenderSystem(fmt.Sprintf("manifests reloaded, %d warnings", len(warnings))))
		for _, w := range warnings {
			m.appendToViewport(m.renderer.RenderSystem("  " + w.Error()))
		}
	case "history":
		m.showHistory(arg)
	case "agent", "a":
		return m.startAgent(arg)
	case "clear":
		m.viewportContent = ""
		m.viewport.SetContent("")
	case "quit", "q", "exit":
		m.quitting = true
		return tea.Quit
	default:
		m.appendToViewport(m.renderer.RenderError(fmt.Errorf("unknown command :%s (try :help)", name)))
	}
	return nil
}

func (m *Model) showTree(lines int) {
	out := slices.Collect(m.sb.DisplayWith(tree.Options{MaxPreviewLines: lines, ShowSizes: m.showSizes}))
	m.appendToViewport(m.renderer.RenderTree(out))
}

func (m *Model) showHistory(arg string) {
	j := m.config.Journal
	if j == nil {
		m.appendToViewport(m.renderer.RenderError(fmt.Errorf("no session journal")))
		return
	}
	n := defaultHistoryLines
	if arg != "" {
		v, err := strconv.Atoi(arg)
		if err != nil || v <= 0 {
			m.appendToViewport(m.renderer.RenderError(fmt.Errorf("invalid entry count: %q", arg)))
			return
		}
		n = v
	}
	entries, err := j.Since(m.ctx, j.LatestSeq()-n)
	if err != nil {
		m.appendToViewport(m.renderer.RenderError(err))
		return
	}
	if len(entries) == 0 {
		m.appendToViewport(m.renderer.RenderSystem("no commands yet"))
		return
	}
	for _, e := range entries {
		m.appendToViewport(m.renderer.RenderEntry(e))
	}
}

func (m *Model) startAgent(task string) tea.Cmd {
	if m.agent == nil {
		m.appendToViewport(m.renderer.RenderError(fmt.Errorf("no model configured; set llm.provider and an API key")))
		return nil
	}
	if task == "" {
		m.appendToViewport(m.renderer.RenderError(fmt.Errorf(":agent needs a task")))
		return nil
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelAgent = cancel
	m.state = StateRunning
	m.spinnerMsg = "Agent working on " + strconv.Quote(task) + "..."
	return tea.Batch(m.spinner.Tick, runAgentCmd(ctx, m.agent, task))
}

// runAgentCmd runs the agent and returns AgentDoneMsg.
func runAgentCmd(ctx context.Context, runner AgentRunner, task string) tea.Cmd {
	return func() tea.Msg {
		report, err := runner.Run(ctx, task)
		return AgentDoneMsg{Task: task, Report: report, Err: err}
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
