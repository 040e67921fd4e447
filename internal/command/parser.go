// Package command parses and executes the single-line file command language.
//
// Forms, tested in this order:
//
//	SRC -> DEST          move or rename
//	ITEM ×               delete (recursive for directories)
//	FILE += "content"    append
//	FILE = "content"     overwrite
//	touch PATH           create an empty file
//	mkdir PATH           create a directory with an empty manifest
//
// Operators inside a quoted region are not operators, so content may
// contain "=" or "->" freely when quoted.
package command

import (
	"strings"
)

// DeleteMarker is the trailing delete operator.
const DeleteMarker = "×"

// Op identifies a command form.
type Op int

const (
	OpUnknown Op = iota
	OpMove
	OpDelete
	OpAppend
	OpOverwrite
	OpTouch
	OpMkdir
)

func (o Op) String() string {
	switch o {
	case OpMove:
		return "move"
	case OpDelete:
		return "delete"
	case OpAppend:
		return "append"
	case OpOverwrite:
		return "overwrite"
	case OpTouch:
		return "touch"
	case OpMkdir:
		return "mkdir"
	default:
		return "unknown"
	}
}

// Command is one parsed line.
type Command struct {
	Op Op
	// Path is the source, item, file or new path depending on Op.
	Path string
	// Dest is the move destination.
	Dest string
	// Content is the decoded payload for append and overwrite.
	Content string
	// Raw is the trimmed input line.
	Raw string
}

// Parse turns one line into a Command. Lines matching no form, or with an
// empty path, yield a KindUnrecognizedCommand error.
func Parse(line string) (Command, error) {
	raw := strings.TrimSpace(line)
	cmd := Command{Raw: raw}
	if raw == "" {
		return cmd, newError(KindUnrecognizedCommand, "empty command")
	}
	if strings.ContainsAny(raw, "\r\n") {
		return cmd, newError(KindUnrecognizedCommand, "commands are single lines")
	}

	if i := indexUnquoted(raw, "->"); i >= 0 {
		cmd.Op = OpMove
		cmd.Path = unquotePath(raw[:i])
		cmd.Dest = unquotePath(raw[i+len("->"):])
		if cmd.Path == "" || cmd.Dest == "" {
			return cmd, newError(KindUnrecognizedCommand, "move needs a source and a destination: %q", raw)
		}
		return cmd, nil
	}

	if strings.HasSuffix(raw, DeleteMarker) {
		cmd.Op = OpDelete
		cmd.Path = unquotePath(strings.TrimSuffix(raw, DeleteMarker))
		if cmd.Path == "" {
			return cmd, newError(KindUnrecognizedCommand, "delete needs an item: %q", raw)
		}
		return cmd, nil
	}

	for _, form := range []struct {
		op       Op
		operator string
	}{
		{OpAppend, "+="},
		{OpOverwrite, "="},
	} {
		i := indexUnquoted(raw, form.operator)
		if i < 0 {
			continue
		}
		cmd.Op = form.op
		cmd.Path = unquotePath(raw[:i])
		cmd.Content = decodeContent(raw[i+len(form.operator):])
		if cmd.Path == "" {
			return cmd, newError(KindUnrecognizedCommand, "%s needs a file: %q", form.op, raw)
		}
		return cmd, nil
	}

	for _, form := range []struct {
		op     Op
		prefix string
	}{
		{OpTouch, "touch "},
		{OpMkdir, "mkdir "},
	} {
		if !strings.HasPrefix(raw, form.prefix) {
			continue
		}
		cmd.Op = form.op
		cmd.Path = unquotePath(raw[len(form.prefix):])
		if cmd.Path == "" {
			return cmd, newError(KindUnrecognizedCommand, "%s needs a path: %q", form.op, raw)
		}
		return cmd, nil
	}

	return cmd, newError(KindUnrecognizedCommand, "unrecognized command: %q", raw)
}

// indexUnquoted returns the byte index of the first occurrence of op that
// is not inside a quoted region, or -1. A quote only opens a region when it
// starts a token and has a matching close, so names like don't.txt stay
// literal.
func indexUnquoted(s, op string) int {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c == '"' || c == '\'') && startsToken(s, i) {
			if end := closingQuote(s, i); end > 0 {
				i = end
				continue
			}
		}
		if strings.HasPrefix(s[i:], op) {
			return i
		}
	}
	return -1
}

func startsToken(s string, i int) bool {
	if i == 0 {
		return true
	}
	switch s[i-1] {
	case ' ', '\t', '=', '>':
		return true
	}
	return false
}

// closingQuote returns the index of the quote closing the one at open,
// skipping backslash escapes, or -1.
func closingQuote(s string, open int) int {
	q := s[open]
	for i := open + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case q:
			return i
		}
	}
	return -1
}

// decodeContent strips one pair of matching quotes and decodes \n, \t, \\
// and the escaped quote. Other escapes are kept as written. Unquoted content
// is returned trimmed but otherwise literal.
func decodeContent(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	q := s[0]
	if (q != '"' && q != '\'') || s[len(s)-1] != q {
		return s
	}
	body := s[1 : len(s)-1]
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i == len(body)-1 {
			b.WriteByte(c)
			continue
		}
		next := body[i+1]
		switch next {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '\\':
			b.WriteByte('\\')
		case q:
			b.WriteByte(q)
		default:
			b.WriteByte(c)
			b.WriteByte(next)
		}
		i++
	}
	return b.String()
}

// unquotePath trims s and removes one pair of surrounding quotes.
func unquotePath(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
