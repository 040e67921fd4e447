package tree

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	units "github.com/docker/go-units"
)

const (
	branch     = "├── "
	lastBranch = "└── "
	pipe       = "│   "
	blank      = "    "
)

// Options controls rendering.
type Options struct {
	// MaxPreviewLines truncates each attached content block; zero or less
	// shows every line.
	MaxPreviewLines int
	// ShowSizes appends a human-readable size to file lines.
	ShowSizes bool
}

// Render returns the display lines for root. The sequence is lazy and may
// be ranged over any number of times.
func Render(root *Node, opts Options) iter.Seq[string] {
	return func(yield func(string) bool) {
		if root == nil {
			return
		}
		if !yield(dirLine(root)) {
			return
		}
		renderChildren(root, "", opts, yield)
	}
}

// Lines collects Render into a slice.
func Lines(root *Node, opts Options) []string {
	return slices.Collect(Render(root, opts))
}

// String joins Render with newlines.
func String(root *Node, opts Options) string {
	return strings.Join(Lines(root, opts), "\n")
}

func renderChildren(parent *Node, prefix string, opts Options, yield func(string) bool) bool {
	for i, child := range parent.Children {
		last := i == len(parent.Children)-1
		connector, next := branch, prefix+pipe
		if last {
			connector, next = lastBranch, prefix+blank
		}

		if child.IsDir() {
			if !yield(prefix + connector + dirLine(child)) {
				return false
			}
			if !renderChildren(child, next, opts, yield) {
				return false
			}
			continue
		}

		line := prefix + connector + child.Name
		if opts.ShowSizes {
			line += " (" + units.HumanSize(float64(child.Size)) + ")"
		}
		if !yield(line) {
			return false
		}
		if child.Content == nil {
			continue
		}
		if !renderContent(*child.Content, next, opts.MaxPreviewLines, yield) {
			return false
		}
	}
	return true
}

func renderContent(content, prefix string, limit int, yield func(string) bool) bool {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return true
	}
	lines := strings.Split(trimmed, "\n")
	hidden := 0
	if limit > 0 && len(lines) > limit {
		hidden = len(lines) - limit
		lines = lines[:limit]
	}
	for _, line := range lines {
		if !yield(prefix + strings.TrimRight(line, "\r")) {
			return false
		}
	}
	if hidden > 0 {
		return yield(fmt.Sprintf("%s... (+%d more lines)", prefix, hidden))
	}
	return true
}

func dirLine(n *Node) string {
	if n.Kind == NodeInaccessible {
		return fmt.Sprintf("%s/ [inaccessible: %v]", n.Name, n.Err)
	}
	return n.Name + "/"
}
