package manifest

import (
	"bytes"
	"fmt"

	"github.com/segmentio/encoding/json"
)

// wireManifest is the JSON shape of a manifest file. Pointer fields keep
// "absent" distinct from "present but empty".
type wireManifest struct {
	InheritParent   *bool     `json:"inherit_parent,omitempty"`
	VisibleEntries  *[]string `json:"visible_entries,omitempty"`
	OperableEntries *[]string `json:"operable_entries,omitempty"`
	ShowContent     *bool     `json:"show_content,omitempty"`

	// Older manifests used these names.
	VisibleFiles  *[]string `json:"visible_files,omitempty"`
	OperableFiles *[]string `json:"operable_files,omitempty"`
}

func listOrNil(primary, legacy *[]string) []string {
	src := primary
	if src == nil {
		src = legacy
	}
	if src == nil {
		return nil
	}
	out := make([]string, len(*src))
	copy(out, *src)
	return out
}

func listPtr(list []string) *[]string {
	if list == nil {
		return nil
	}
	out := make([]string, len(list))
	copy(out, list)
	return &out
}

// Decode parses a manifest file. Empty input and a JSON null decode to the
// empty manifest; unknown keys are ignored.
func Decode(data []byte) (Manifest, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Manifest{}, nil
	}
	var w wireManifest
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	return Manifest{
		InheritParent:   w.InheritParent,
		VisibleEntries:  listOrNil(w.VisibleEntries, w.VisibleFiles),
		OperableEntries: listOrNil(w.OperableEntries, w.OperableFiles),
		ShowContent:     w.ShowContent,
	}, nil
}

// Encode renders m as indented JSON with a trailing newline. Only present
// fields are written, so the empty manifest encodes as "{}".
func Encode(m Manifest) ([]byte, error) {
	w := wireManifest{
		InheritParent:   m.InheritParent,
		VisibleEntries:  listPtr(m.VisibleEntries),
		OperableEntries: listPtr(m.OperableEntries),
		ShowContent:     m.ShowContent,
	}
	data, err := json.MarshalIndent(w, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return append(data, '\n'), nil
}
