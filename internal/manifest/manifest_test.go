package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Resolve
// ---------------------------------------------------------------------------

func TestResolve_DefaultsWithoutParent(t *testing.T) {
	r := Resolve(Manifest{}, nil)
	assert.False(t, r.InheritParent)
	assert.False(t, r.ShowContent)
	assert.Empty(t, r.VisibleEntries())
	assert.Empty(t, r.OperableEntries())
	assert.False(t, r.AllowsCreate())
}

func TestResolve_NonInheritingIgnoresParent(t *testing.T) {
	parent := Resolve(Manifest{
		VisibleEntries: []string{"a.txt"},
		ShowContent:    Bool(true),
	}, nil)

	r := Resolve(Manifest{OperableEntries: []string{"b.txt"}}, &parent)
	assert.Empty(t, r.VisibleEntries())
	assert.False(t, r.ShowContent)
	assert.Equal(t, []string{"b.txt"}, r.OperableEntries())
}

func TestResolve_ShallowOverride(t *testing.T) {
	parent := Resolve(Manifest{
		VisibleEntries:  []string{"a.txt", "b.txt", "src"},
		OperableEntries: []string{"a.txt", CreateSentinel},
		ShowContent:     Bool(true),
	}, nil)

	tests := []struct {
		name         string
		child        Manifest
		wantVisible  []string
		wantOperable []string
		wantShow     bool
	}{
		{
			name:         "inherit everything",
			child:        Manifest{InheritParent: Bool(true)},
			wantVisible:  []string{"a.txt", "b.txt", "src"},
			wantOperable: []string{"a.txt", CreateSentinel},
			wantShow:     true,
		},
		{
			name:         "visible list replaced, not unioned",
			child:        Manifest{InheritParent: Bool(true), VisibleEntries: []string{"c.txt"}},
			wantVisible:  []string{"c.txt"},
			wantOperable: []string{"a.txt", CreateSentinel},
			wantShow:     true,
		},
		{
			name:         "empty operable list clears creation",
			child:        Manifest{InheritParent: Bool(true), OperableEntries: []string{}},
			wantVisible:  []string{"a.txt", "b.txt", "src"},
			wantOperable: []string{},
			wantShow:     true,
		},
		{
			name:         "show_content override",
			child:        Manifest{InheritParent: Bool(true), ShowContent: Bool(false)},
			wantVisible:  []string{"a.txt", "b.txt", "src"},
			wantOperable: []string{"a.txt", CreateSentinel},
			wantShow:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Resolve(tt.child, &parent)
			assert.True(t, r.InheritParent)
			assert.Equal(t, tt.wantVisible, r.VisibleEntries())
			assert.Equal(t, tt.wantOperable, r.OperableEntries())
			assert.Equal(t, tt.wantShow, r.ShowContent)
		})
	}
}

func TestResolve_DoesNotAliasParent(t *testing.T) {
	parent := Resolve(Manifest{VisibleEntries: []string{"a"}}, nil)
	_ = Resolve(Manifest{InheritParent: Bool(true), VisibleEntries: []string{"b"}}, &parent)
	assert.Equal(t, []string{"a"}, parent.VisibleEntries())
}

func TestResolved_SentinelIsNotAnEntry(t *testing.T) {
	r := Resolve(Manifest{OperableEntries: []string{CreateSentinel}}, nil)
	assert.True(t, r.AllowsCreate())
	assert.False(t, r.IsOperable(CreateSentinel))
}

func TestResolved_ManifestRoundTrip(t *testing.T) {
	r := Resolve(Manifest{VisibleEntries: []string{"z", "a"}, ShowContent: Bool(true)}, nil)
	again := Resolve(r.Manifest(), nil)
	assert.Equal(t, []string{"z", "a"}, again.VisibleEntries())
	assert.True(t, again.ShowContent)
}

// ---------------------------------------------------------------------------
// Codec
// ---------------------------------------------------------------------------

func TestDecode_EmptyInputs(t *testing.T) {
	for _, in := range []string{"", "  \n", "{}", "null"} {
		m, err := Decode([]byte(in))
		require.NoError(t, err, in)
		assert.True(t, m.IsZero(), in)
	}
}

func TestDecode_FieldPresence(t *testing.T) {
	m, err := Decode([]byte(`{"visible_entries": [], "show_content": false, "extra": 1}`))
	require.NoError(t, err)
	assert.NotNil(t, m.VisibleEntries)
	assert.Empty(t, m.VisibleEntries)
	assert.Nil(t, m.OperableEntries)
	require.NotNil(t, m.ShowContent)
	assert.False(t, *m.ShowContent)
	assert.Nil(t, m.InheritParent)
}

func TestDecode_LegacyKeys(t *testing.T) {
	m, err := Decode([]byte(`{"visible_files": ["a.txt"], "operable_files": ["<create>"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, m.VisibleEntries)
	assert.Equal(t, []string{CreateSentinel}, m.OperableEntries)

	m, err = Decode([]byte(`{"visible_entries": ["new"], "visible_files": ["old"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, m.VisibleEntries)
}

func TestDecode_Malformed(t *testing.T) {
	for _, in := range []string{`{`, `{"visible_entries": "a.txt"}`, `{"inherit_parent": "yes"}`} {
		_, err := Decode([]byte(in))
		assert.Error(t, err, in)
	}
}

func TestEncode(t *testing.T) {
	data, err := Encode(Manifest{})
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))

	data, err = Encode(Manifest{VisibleEntries: []string{}, InheritParent: Bool(true)})
	require.NoError(t, err)
	m, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, m.Inherits())
	assert.NotNil(t, m.VisibleEntries)
	assert.Nil(t, m.OperableEntries)
}
