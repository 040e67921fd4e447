package cli

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mfateev/dirproto/internal/agent"
	"github.com/mfateev/dirproto/internal/command"
	"github.com/mfateev/dirproto/internal/engine"
	"github.com/mfateev/dirproto/internal/history"
	"github.com/mfateev/dirproto/internal/tree"
	"github.com/mfateev/dirproto/internal/version"
)

// Source is the journal source recorded for commands typed in the REPL.
const Source = "repl"

// State represents the REPL state machine state.
type State int

const (
	StateInput State = iota
	StateRunning
)

// Sandbox is the part of the engine the REPL uses.
type Sandbox interface {
	Root() string
	Execute(ctx context.Context, line string) command.Result
	ReadFileContent(rel string) (string, bool)
	DisplayWith(opts tree.Options) iter.Seq[string]
	Inspect(rel string) (engine.Permissions, error)
	Reload() []error
}

// AgentRunner runs a task against the sandbox.
type AgentRunner interface {
	Run(ctx context.Context, task string) (agent.Report, error)
}

// Config holds REPL configuration.
type Config struct {
	PreviewLines int
	NoColor      bool
	NoMarkdown   bool
	Inline       bool // Disable alt-screen mode
	Model        string
	Provider     string

	// Journal holds this session's commands for :history. Optional.
	Journal *history.InMemoryJournal
	// JournalLimit bounds Journal; older entries are dropped.
	JournalLimit int
}

const defaultJournalLimit = 500

// Model is the bubbletea model for the REPL.
type Model struct {
	config Config
	sb     Sandbox
	agent  AgentRunner
	keys   KeyMap
	styles Styles
	ctx    context.Context

	state       State
	cancelAgent context.CancelFunc

	// Sub-models
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Layout
	width  int
	height int
	ready  bool

	viewportContent string
	renderer        *Renderer

	// Input history, oldest first; histIdx == len(history) means a fresh line.
	history []string
	histIdx int

	showSizes  bool
	spinnerMsg string
	executed   int
	failed     int

	quitting bool
}

// NewModel creates a new REPL model. runner may be nil when no model
// provider is configured.
func NewModel(config Config, sb Sandbox, runner AgentRunner) Model {
	styles := DefaultStyles()
	if config.NoColor {
		styles = NoColorStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Type a command or :help"
	ti.Prompt = "❯ "
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		config:   config,
		sb:       sb,
		agent:    runner,
		keys:     DefaultKeyMap(),
		styles:   styles,
		ctx:      history.WithSource(context.Background(), Source),
		state:    StateInput,
		input:    ti,
		spinner:  sp,
		renderer: NewRenderer(0, config.NoMarkdown, styles),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		if m.state == StateRunning {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return &m, cmd
		}

	case AgentDoneMsg:
		return m.handleAgentDone(msg)
	}
	return &m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Starting..."
	}

	sep := m.styles.Separator.Render(strings.Repeat("─", m.width))

	var inputView string
	switch m.state {
	case StateRunning:
		inputView = m.spinner.View() + " " + m.styles.SpinnerMessage.Render(m.spinnerMsg)
	default:
		inputView = m.input.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		sep,
		inputView,
		sep,
		m.renderStatusBar(),
	)
}

func (m Model) renderStatusBar() string {
	stateLabel := "ready"
	if m.state == StateRunning {
		stateLabel = "agent running"
	}
	left := fmt.Sprintf(" %s · %d commands · %d failed · %s",
		filepath.Base(m.sb.Root()), m.executed, m.failed, stateLabel)
	if m.config.Model != "" {
		left += " · " + m.config.Model
	}
	right := fmt.Sprintf("dirproto:%s ", version.GitCommit)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return m.styles.StatusBar.Render(left + strings.Repeat(" ", gap) + right)
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	// Reserve space: separator(1) + input(1) + separator(1) + status(1)
	vpHeight := m.height - 4
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(m.width, vpHeight)
		m.renderer = NewRenderer(m.width, m.config.NoMarkdown, m.styles)
		m.input.Width = m.width - lipgloss.Width(m.input.Prompt) - 1
		m.ready = true
		m.showTree(m.config.PreviewLines)
		return m, m.input.Focus()
	}

	m.viewport.Width = m.width
	m.viewport.Height = vpHeight
	m.input.Width = m.width - lipgloss.Width(m.input.Prompt) - 1
	m.renderer.width = m.width
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Interrupt):
		if m.state == StateRunning && m.cancelAgent != nil {
			m.cancelAgent()
			m.spinnerMsg = "Stopping agent..."
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Quit) && m.state == StateInput:
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.state != StateInput {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		line := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if line == "" {
			return m, nil
		}
		m.pushHistory(line)
		return m, m.submit(line)
	case key.Matches(msg, m.keys.HistoryPrev):
		m.browseHistory(-1)
		return m, nil
	case key.Matches(msg, m.keys.HistoryNext):
		m.browseHistory(1)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit runs one line: a REPL command or a sandbox command.
func (m *Model) submit(line string) tea.Cmd {
	m.appendToViewport(m.renderer.RenderInput(line))
	if name, arg, ok := parseMeta(line); ok {
		return m.runMeta(name, arg)
	}
	res := m.sb.Execute(m.ctx, line)
	m.executed++
	if !res.OK {
		m.failed++
	}
	m.trimJournal()
	m.appendToViewport(m.renderer.RenderResult(res))
	return nil
}

func (m *Model) trimJournal() {
	if m.config.Journal == nil {
		return
	}
	limit := m.config.JournalLimit
	if limit <= 0 {
		limit = defaultJournalLimit
	}
	m.config.Journal.KeepLast(limit)
}

func (m *Model) handleAgentDone(msg AgentDoneMsg) (tea.Model, tea.Cmd) {
	if m.cancelAgent != nil {
		m.cancelAgent()
		m.cancelAgent = nil
	}
	m.state = StateInput
	for _, turn := range msg.Report.Turns {
		for _, res := range turn.Results {
			m.executed++
			if !res.OK {
				m.failed++
			}
		}
	}
	m.trimJournal()
	m.appendToViewport(m.renderer.RenderReport(msg.Task, msg.Report))
	if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
		m.appendToViewport(m.renderer.RenderError(msg.Err))
	}
	return m, m.input.Focus()
}

func (m *Model) pushHistory(line string) {
	if n := len(m.history); n == 0 || m.history[n-1] != line {
		m.history = append(m.history, line)
	}
	m.histIdx = len(m.history)
}

func (m *Model) browseHistory(delta int) {
	idx := m.histIdx + delta
	if idx < 0 || idx > len(m.history) {
		return
	}
	m.histIdx = idx
	if idx == len(m.history) {
		m.input.SetValue("")
		return
	}
	m.input.SetValue(m.history[idx])
	m.input.CursorEnd()
}

func (m *Model) appendToViewport(content string) {
	wasAtBottom := m.viewport.AtBottom()
	m.viewportContent += content
	m.viewport.SetContent(m.viewportContent)
	if wasAtBottom || !m.ready {
		m.viewport.GotoBottom()
	}
}

// Run is the main entry point for the REPL.
func Run(config Config, sb Sandbox, runner AgentRunner) error {
	model := NewModel(config, sb, runner)

	var opts []tea.ProgramOption
	if !config.Inline {
		opts = append(opts, tea.WithAltScreen())
	}
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
