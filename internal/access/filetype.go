package access

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileKind classifies a file by extension.
type FileKind int

const (
	KindUnknown FileKind = iota
	KindText
	KindBinary
)

func (k FileKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Markers stand in for content that is never shown raw.
const (
	BinaryMarker  = "[binary file, content not shown]"
	UnknownMarker = "[unknown file type, content not shown]"
)

// ReadFailureMarker stands in for a text file that could not be read.
func ReadFailureMarker(err error) string {
	return fmt.Sprintf("[failed to read file: %v]", err)
}

// TextContent converts the bytes of a text file for display. Invalid UTF-8
// sequences become U+FFFD.
func TextContent(data []byte) string {
	return strings.ToValidUTF8(string(data), "\uFFFD")
}

var textExtensions = map[string]struct{}{
	".py": {}, ".js": {}, ".html": {}, ".css": {}, ".md": {}, ".json": {},
	".txt": {}, ".csv": {}, ".xml": {}, ".yml": {}, ".yaml": {}, ".log": {},
	".cfg": {}, ".conf": {},
}

var binaryExtensions = map[string]struct{}{
	".mp3": {}, ".mp4": {}, ".wav": {}, ".ogg": {}, ".png": {}, ".jpg": {},
	".jpeg": {}, ".gif": {}, ".bmp": {}, ".zip": {}, ".tar": {}, ".gz": {},
	".7z": {}, ".pdf": {}, ".exe": {}, ".dll": {}, ".so": {}, ".bin": {},
	".ico": {},
}

// Classify reports the kind of the file named name. Extensions are matched
// case-insensitively; a name without a recognized extension is unknown.
func Classify(name string) FileKind {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := textExtensions[ext]; ok {
		return KindText
	}
	if _, ok := binaryExtensions[ext]; ok {
		return KindBinary
	}
	return KindUnknown
}
