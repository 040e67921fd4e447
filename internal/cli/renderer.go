// Package cli implements the interactive REPL for dirproto.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/mfateev/dirproto/internal/agent"
	"github.com/mfateev/dirproto/internal/command"
	"github.com/mfateev/dirproto/internal/engine"
	"github.com/mfateev/dirproto/internal/history"
)

// Renderer turns results, trees and files into styled viewport text.
type Renderer struct {
	width      int
	noMarkdown bool
	styles     Styles
	mdRenderer *glamour.TermRenderer
}

// NewRenderer creates a renderer. Markdown files are rendered with glamour
// unless noMarkdown is set.
func NewRenderer(width int, noMarkdown bool, styles Styles) *Renderer {
	r := &Renderer{
		width:      width,
		noMarkdown: noMarkdown,
		styles:     styles,
	}
	if !noMarkdown {
		w := width
		if w <= 0 {
			w = 80
			if tw, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && tw > 0 {
				w = tw
			}
		}
		md, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(w),
		)
		if err == nil {
			r.mdRenderer = md
		}
	}
	return r
}

// RenderInput echoes a submitted line.
func (r *Renderer) RenderInput(line string) string {
	return r.styles.Prompt.Render("❯ ") + r.styles.Command.Render(line) + "\n"
}

// RenderResult renders one command outcome.
func (r *Renderer) RenderResult(res command.Result) string {
	if res.OK {
		return r.styles.OutputSuccess.Render("✓ "+res.Message) + "\n"
	}
	return r.styles.OutputFailure.Render("✗ ") +
		r.styles.ErrorLabel.Render("["+res.Label()+"]") + " " +
		r.styles.OutputFailure.Render(res.Message) + "\n"
}

// RenderTree renders tree lines, highlighting directories.
func (r *Renderer) RenderTree(lines []string) string {
	var sb strings.Builder
	for _, line := range lines {
		if strings.HasSuffix(line, "/") || strings.Contains(line, "/ [inaccessible") {
			sb.WriteString(r.styles.TreeDir.Render(line))
		} else {
			sb.WriteString(line)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// RenderFile renders file content. Markdown is rendered when enabled.
func (r *Renderer) RenderFile(path, content string) string {
	header := r.styles.OutputDim.Render("── "+path+" ──") + "\n"
	if r.mdRenderer != nil && isMarkdown(path) {
		if out, err := r.mdRenderer.Render(content); err == nil {
			return header + out
		}
	}
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return header + content
}

// RenderMarkdown renders arbitrary markdown, falling back to the raw text.
func (r *Renderer) RenderMarkdown(text string) string {
	if r.mdRenderer != nil {
		if out, err := r.mdRenderer.Render(text); err == nil {
			return out
		}
	}
	return text + "\n"
}

// RenderPermissions renders the gate's answers for one path.
func (r *Renderer) RenderPermissions(p engine.Permissions) string {
	if !p.Exists {
		return r.styles.OutputDim.Render(p.Path+": does not exist") + fmt.Sprintf(" (create %s)\n", r.flag(p.CanCreate))
	}
	kind := "file"
	if p.IsDir {
		kind = "directory"
	}
	line := fmt.Sprintf("%s (%s): visible %s · operable %s · create %s · preview %s",
		p.Path, kind, r.flag(p.Visible), r.flag(p.Operable), r.flag(p.CanCreate), r.flag(p.Preview))
	if p.IsDir && !p.Loaded {
		line += r.styles.OutputDim.Render(" · not loaded, run :reload")
	}
	return line + "\n"
}

func (r *Renderer) flag(on bool) string {
	if on {
		return r.styles.FlagOn.Render("yes")
	}
	return r.styles.OutputDim.Render("no")
}

// RenderReport renders an agent run turn by turn.
func (r *Renderer) RenderReport(task string, report agent.Report) string {
	var sb strings.Builder
	for i, turn := range report.Turns {
		sb.WriteString(r.styles.TurnHeader.Render(fmt.Sprintf("── agent turn %d ──", i+1)) + "\n")
		if len(turn.Commands) == 0 {
			sb.WriteString(r.RenderMarkdown(strings.TrimSpace(turn.Reply)))
			continue
		}
		for j, line := range turn.Commands {
			sb.WriteString(r.RenderInput(line))
			if j < len(turn.Results) {
				sb.WriteString(r.RenderResult(turn.Results[j]))
			}
		}
	}
	status := "finished"
	if !report.Finished {
		status = "stopped"
	}
	sb.WriteString(r.RenderSystem(fmt.Sprintf("agent %s %q after %d turns, %d failed commands", status, task, len(report.Turns), report.Failed())))
	return sb.String()
}

// RenderEntry renders one journal entry as "source  command  → outcome".
func (r *Renderer) RenderEntry(e history.Entry) string {
	outcome := r.styles.OutputSuccess.Render("ok")
	if !e.OK {
		outcome = r.styles.ErrorLabel.Render("[" + e.Kind + "]")
	}
	return fmt.Sprintf("%s %-6s %s → %s\n",
		r.styles.OutputDim.Render(fmt.Sprintf("%3d", e.Seq)), e.Source, e.Command, outcome)
}

// RenderSystem renders a dimmed informational line.
func (r *Renderer) RenderSystem(msg string) string {
	return r.styles.OutputDim.Render(msg) + "\n"
}

// RenderError renders an error line.
func (r *Renderer) RenderError(err error) string {
	return r.styles.OutputFailure.Render("Error: "+err.Error()) + "\n"
}

func isMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}
