// Package tree builds and renders the filtered view of a sandbox.
package tree

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mfateev/dirproto/internal/access"
	"github.com/mfateev/dirproto/internal/sandbox"
)

// NodeKind distinguishes directories, files and directories that could not
// be listed.
type NodeKind int

const (
	NodeDir NodeKind = iota
	NodeFile
	NodeInaccessible
)

// Node is one visible entry.
type Node struct {
	Name string
	Kind NodeKind
	// Path is relative to the sandbox root, "." for the root.
	Path string
	Size int64
	// Content is the preview attached to a file, nil when none is shown.
	Content *string
	// Err is set on NodeInaccessible.
	Err      error
	Children []*Node
}

// IsDir reports whether n is a directory, listed or not.
func (n *Node) IsDir() bool {
	return n.Kind == NodeDir || n.Kind == NodeInaccessible
}

// Builder walks the sandbox, keeping only visible entries.
type Builder struct {
	resolver *sandbox.Resolver
	gate     *access.Gate
	log      logrus.FieldLogger
}

// NewBuilder returns a Builder. A nil log discards output.
func NewBuilder(resolver *sandbox.Resolver, gate *access.Gate, log logrus.FieldLogger) *Builder {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Builder{resolver: resolver, gate: gate, log: log}
}

// Build returns the visible subtree rooted at dir. A directory that cannot
// be listed becomes a NodeInaccessible leaf; its siblings are unaffected.
func (b *Builder) Build(dir string) *Node {
	dir = filepath.Clean(dir)
	node := &Node{
		Name: filepath.Base(dir),
		Kind: NodeDir,
		Path: b.resolver.Rel(dir),
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		b.log.WithError(err).WithField("dir", node.Path).Warn("cannot list directory")
		node.Kind = NodeInaccessible
		node.Err = err
		return node
	}

	showContent := b.gate.ShowsContentIn(dir)
	for _, entry := range entries {
		abs := filepath.Join(dir, entry.Name())
		if !b.gate.IsVisible(abs) {
			continue
		}
		if entry.IsDir() {
			node.Children = append(node.Children, b.Build(abs))
			continue
		}
		node.Children = append(node.Children, b.file(abs, entry, showContent))
	}
	sortNodes(node.Children)
	return node
}

func (b *Builder) file(abs string, entry os.DirEntry, showContent bool) *Node {
	node := &Node{
		Name: entry.Name(),
		Kind: NodeFile,
		Path: b.resolver.Rel(abs),
	}
	if info, err := entry.Info(); err == nil {
		node.Size = info.Size()
	}
	if !showContent || !entry.Type().IsRegular() {
		return node
	}
	var content string
	switch access.Classify(abs) {
	case access.KindBinary:
		content = access.BinaryMarker
	case access.KindText:
		data, err := os.ReadFile(abs)
		if err != nil {
			b.log.WithError(err).WithField("file", node.Path).Warn("cannot read file for preview")
			content = access.ReadFailureMarker(err)
		} else {
			content = access.TextContent(data)
		}
	default:
		return node
	}
	node.Content = &content
	return node
}

// sortNodes orders directories before files, then by case-insensitive name.
func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.IsDir() != b.IsDir() {
			return a.IsDir()
		}
		la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if la != lb {
			return la < lb
		}
		return a.Name < b.Name
	})
}
