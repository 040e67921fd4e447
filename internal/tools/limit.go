package tools

import (
	"fmt"
	"unicode/utf8"
)

// OutputMaxBytes caps the content a single tool call hands back, so one
// large file cannot flood a model's context.
const OutputMaxBytes = 256 * 1024

// LimitOutput truncates content to max bytes on a rune boundary and appends
// a marker naming how much was dropped. max <= 0 uses OutputMaxBytes.
func LimitOutput(content string, max int) (string, bool) {
	if max <= 0 {
		max = OutputMaxBytes
	}
	if len(content) <= max {
		return content, false
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + fmt.Sprintf("\n... (truncated %d bytes)", len(content)-cut), true
}
