// Package manifest loads and resolves per-directory access manifests.
//
// Each directory under the sandbox root may carry a manifest file
// (dirproto.json by default) declaring which of its children are visible,
// which of its files are operable, whether new entries may be created
// (the "<create>" sentinel in operable_entries), and whether text content
// may be previewed.
//
// A manifest with inherit_parent set starts from its parent's resolved
// manifest and overrides only the fields it declares. List fields replace
// the inherited list outright; they are never merged. A child that inherits
// but declares a shorter visible_entries therefore narrows what is visible.
package manifest

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// CreateSentinel in operable_entries permits creating entries in a directory.
const CreateSentinel = "<create>"

// DefaultFileName is the manifest file name used when none is configured.
const DefaultFileName = "dirproto.json"

// Manifest is the raw, persisted form of a directory manifest. A nil field
// is absent from the persisted record and takes its default (or, when
// inheriting, the parent's value).
type Manifest struct {
	InheritParent   *bool
	VisibleEntries  []string
	OperableEntries []string
	ShowContent     *bool
}

// Bool returns a pointer to b, for building Manifest literals.
func Bool(b bool) *bool {
	return &b
}

// Inherits reports whether the manifest asks to inherit its parent.
func (m Manifest) Inherits() bool {
	return m.InheritParent != nil && *m.InheritParent
}

// IsZero reports whether no field is present.
func (m Manifest) IsZero() bool {
	return m.InheritParent == nil && m.VisibleEntries == nil &&
		m.OperableEntries == nil && m.ShowContent == nil
}

// nameSet is an insertion-ordered set of entry names.
type nameSet = orderedmap.OrderedMap[string, struct{}]

func newNameSet(names []string) *nameSet {
	set := orderedmap.New[string, struct{}](len(names))
	for _, name := range names {
		set.Set(name, struct{}{})
	}
	return set
}

func setNames(set *nameSet) []string {
	if set == nil {
		return []string{}
	}
	names := make([]string, 0, set.Len())
	for pair := set.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

func setHas(set *nameSet, name string) bool {
	if set == nil {
		return false
	}
	_, ok := set.Get(name)
	return ok
}

// Resolved is the effective manifest of a directory after inheritance.
// The zero value is the all-defaults empty manifest. A Resolved is never
// mutated after construction.
type Resolved struct {
	InheritParent bool
	ShowContent   bool

	visible  *nameSet
	operable *nameSet
}

// Empty returns the all-defaults resolved manifest.
func Empty() Resolved {
	return Resolved{}
}

// IsVisible reports whether name is listed in visible_entries.
func (r Resolved) IsVisible(name string) bool {
	return setHas(r.visible, name)
}

// IsOperable reports whether name is listed in operable_entries.
func (r Resolved) IsOperable(name string) bool {
	if name == CreateSentinel {
		return false
	}
	return setHas(r.operable, name)
}

// AllowsCreate reports whether operable_entries contains the sentinel.
func (r Resolved) AllowsCreate() bool {
	return setHas(r.operable, CreateSentinel)
}

// VisibleEntries returns visible_entries in declaration order.
func (r Resolved) VisibleEntries() []string {
	return setNames(r.visible)
}

// OperableEntries returns operable_entries in declaration order, including
// the sentinel when present.
func (r Resolved) OperableEntries() []string {
	return setNames(r.operable)
}

// Manifest converts the resolution back into a fully populated raw form.
func (r Resolved) Manifest() Manifest {
	return Manifest{
		InheritParent:   Bool(r.InheritParent),
		VisibleEntries:  r.VisibleEntries(),
		OperableEntries: r.OperableEntries(),
		ShowContent:     Bool(r.ShowContent),
	}
}

// Resolve applies raw on top of parent. When raw inherits and parent is
// non-nil, each field present in raw replaces the parent's value; absent
// fields keep the parent's. Otherwise absent fields take their defaults.
func Resolve(raw Manifest, parent *Resolved) Resolved {
	var out Resolved
	if raw.Inherits() && parent != nil {
		out = *parent
	}
	if raw.InheritParent != nil {
		out.InheritParent = *raw.InheritParent
	}
	if raw.VisibleEntries != nil {
		out.visible = newNameSet(raw.VisibleEntries)
	}
	if raw.OperableEntries != nil {
		out.operable = newNameSet(raw.OperableEntries)
	}
	if raw.ShowContent != nil {
		out.ShowContent = *raw.ShowContent
	}
	return out
}
