// Package access answers visibility, operability, creation and preview
// questions against resolved manifests.
//
// Visibility of an item is decided by its parent directory's manifest.
// Operability of a file is decided by the manifest of the directory that
// contains it. The sandbox root is always visible.
package access

import (
	"os"
	"path/filepath"

	"github.com/mfateev/dirproto/internal/manifest"
	"github.com/mfateev/dirproto/internal/sandbox"
)

// Gate is a stateless query layer over a manifest store. Paths passed to it
// must already be resolved absolute paths.
type Gate struct {
	resolver *sandbox.Resolver
	store    *manifest.Store
}

// NewGate returns a Gate reading from store.
func NewGate(resolver *sandbox.Resolver, store *manifest.Store) *Gate {
	return &Gate{resolver: resolver, store: store}
}

// IsVisible reports whether abs is the root, or its name is listed in its
// parent's visible_entries.
func (g *Gate) IsVisible(abs string) bool {
	abs = filepath.Clean(abs)
	if abs == g.resolver.Root() {
		return true
	}
	parent := g.resolver.Parent(abs)
	if parent == "" {
		return false
	}
	return g.store.Resolved(parent).IsVisible(filepath.Base(abs))
}

// IsOperable reports whether abs is a regular file listed in its containing
// directory's operable_entries.
func (g *Gate) IsOperable(abs string) bool {
	info, err := os.Lstat(abs)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return g.listedOperable(abs)
}

// IsRemovableDir reports whether the directory abs may be deleted or moved.
// Directories use the same rule as files: the name must be listed in the
// parent's operable_entries. The root is never removable.
func (g *Gate) IsRemovableDir(abs string) bool {
	abs = filepath.Clean(abs)
	if abs == g.resolver.Root() {
		return false
	}
	info, err := os.Lstat(abs)
	if err != nil || !info.IsDir() {
		return false
	}
	return g.listedOperable(abs)
}

// CanCreateIn reports whether dir is inside the sandbox and its
// operable_entries holds the creation sentinel.
func (g *Gate) CanCreateIn(dir string) bool {
	if !g.resolver.Contains(dir) {
		return false
	}
	return g.store.Resolved(dir).AllowsCreate()
}

// ShouldPreview reports whether abs has a text extension and its containing
// directory sets show_content. Binary files never preview.
func (g *Gate) ShouldPreview(abs string) bool {
	if Classify(abs) != KindText {
		return false
	}
	return g.ShowsContentIn(g.resolver.Parent(abs))
}

// ShowsContentIn reports the resolved show_content flag of dir.
func (g *Gate) ShowsContentIn(dir string) bool {
	if dir == "" {
		return false
	}
	return g.store.Resolved(dir).ShowContent
}

func (g *Gate) listedOperable(abs string) bool {
	parent := g.resolver.Parent(abs)
	if parent == "" {
		return false
	}
	return g.store.Resolved(parent).IsOperable(filepath.Base(abs))
}
