package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfateev/dirproto/internal/sandbox"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	r, err := sandbox.NewResolver(root)
	require.NoError(t, err)
	return NewStore(r), root
}

func writeManifest(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName), []byte(body), 0o644))
}

func TestStore_InitializeIsIdempotent(t *testing.T) {
	s, root := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "pkg"), 0o755))
	writeManifest(t, filepath.Join(root, "src"), `{"show_content": true}`)

	n, err := s.Initialize()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(filepath.Join(root, "src", DefaultFileName))
	require.NoError(t, err)
	assert.Equal(t, `{"show_content": true}`, string(data))

	data, err = os.ReadFile(filepath.Join(root, "src", "pkg", DefaultFileName))
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))

	n, err = s.Initialize()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStore_LoadResolvesEveryDirectory(t *testing.T) {
	s, root := newTestStore(t)
	writeManifest(t, root, `{"visible_entries": ["src"], "operable_entries": ["<create>"]}`)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "deep"), 0o755))

	s.Load()

	assert.ElementsMatch(t, []string{
		root,
		filepath.Join(root, "src"),
		filepath.Join(root, "src", "deep"),
	}, s.Dirs())
	assert.True(t, s.Resolved(root).AllowsCreate())
	assert.False(t, s.Resolved(filepath.Join(root, "src")).AllowsCreate())
	assert.Empty(t, s.Warnings())
}

func TestStore_InheritanceChain(t *testing.T) {
	s, root := newTestStore(t)
	writeManifest(t, root, `{"visible_entries": ["a", "b"], "show_content": true}`)
	writeManifest(t, filepath.Join(root, "a"), `{"inherit_parent": true, "operable_entries": ["x.txt"]}`)
	writeManifest(t, filepath.Join(root, "a", "b"), `{"inherit_parent": true, "visible_entries": ["only"]}`)

	s.Load()

	a := s.Resolved(filepath.Join(root, "a"))
	assert.Equal(t, []string{"a", "b"}, a.VisibleEntries())
	assert.Equal(t, []string{"x.txt"}, a.OperableEntries())
	assert.True(t, a.ShowContent)

	b := s.Resolved(filepath.Join(root, "a", "b"))
	assert.Equal(t, []string{"only"}, b.VisibleEntries())
	assert.Equal(t, []string{"x.txt"}, b.OperableEntries())
	assert.True(t, b.ShowContent)
}

func TestStore_ResolutionIsOrderIndependent(t *testing.T) {
	s, root := newTestStore(t)
	writeManifest(t, root, `{"operable_entries": ["<create>"]}`)
	writeManifest(t, filepath.Join(root, "p"), `{"inherit_parent": true, "show_content": true}`)
	writeManifest(t, filepath.Join(root, "p", "c"), `{"inherit_parent": true}`)

	// Resolve the deepest child before anything else has been visited.
	child := s.resolve(filepath.Join(root, "p", "c"))
	assert.True(t, child.AllowsCreate())
	assert.True(t, child.ShowContent)

	s.Load()
	again := s.Resolved(filepath.Join(root, "p", "c"))
	assert.Equal(t, child.OperableEntries(), again.OperableEntries())
	assert.Equal(t, child.ShowContent, again.ShowContent)
}

func TestStore_RootNeverInherits(t *testing.T) {
	s, root := newTestStore(t)
	writeManifest(t, root, `{"inherit_parent": true}`)
	s.Load()
	r := s.Resolved(root)
	assert.True(t, r.InheritParent)
	assert.Empty(t, r.VisibleEntries())
}

func TestStore_MalformedManifestFallsBack(t *testing.T) {
	s, root := newTestStore(t)
	writeManifest(t, root, `{"visible_entries": ["ok"]}`)
	writeManifest(t, filepath.Join(root, "bad"), `{"visible_entries": [`)
	writeManifest(t, filepath.Join(root, "bad", "kid"), `{"inherit_parent": true}`)

	s.Load()

	assert.Equal(t, []string{"ok"}, s.Resolved(root).VisibleEntries())
	assert.Empty(t, s.Resolved(filepath.Join(root, "bad")).VisibleEntries())
	assert.True(t, s.Has(filepath.Join(root, "bad", "kid")))

	warnings := s.Warnings()
	require.Len(t, warnings, 1)
	assert.True(t, IsParseError(warnings[0]))
	assert.Contains(t, warnings[0].Error(), "bad/"+DefaultFileName)
}

func TestStore_ResolvedUnknownDirIsEmpty(t *testing.T) {
	s, root := newTestStore(t)
	s.Load()
	r := s.Resolved(filepath.Join(root, "created-later"))
	assert.Empty(t, r.VisibleEntries())
	assert.False(t, s.Has(filepath.Join(root, "created-later")))
}

func TestStore_RegisterIsImmediate(t *testing.T) {
	s, root := newTestStore(t)
	writeManifest(t, root, `{"operable_entries": ["<create>"]}`)
	s.Load()

	dir := filepath.Join(root, "fresh")
	r := s.Register(dir, Manifest{InheritParent: Bool(true)})
	assert.True(t, r.AllowsCreate())
	assert.True(t, s.Has(dir))
	assert.True(t, s.Resolved(dir).AllowsCreate())
}

func TestStore_WithFileName(t *testing.T) {
	root := t.TempDir()
	r, err := sandbox.NewResolver(root)
	require.NoError(t, err)
	s := NewStore(r, WithFileName(".access.json"))

	require.NoError(t, os.WriteFile(filepath.Join(root, ".access.json"), []byte(`{"show_content": true}`), 0o644))
	s.Load()
	assert.True(t, s.Resolved(root).ShowContent)
	assert.True(t, s.IsManifestFile(filepath.Join(root, ".access.json")))
	assert.False(t, s.IsManifestFile(filepath.Join(root, DefaultFileName)))
}
