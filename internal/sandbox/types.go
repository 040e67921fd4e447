// Package sandbox confines relative paths to a single root directory.
//
// Every path the engine touches passes through a Resolver first. Rejection
// is purely lexical, so an escaping path never reaches the filesystem.
package sandbox

import (
	"errors"
	"fmt"
)

// ErrPathEscapesSandbox is matched by every rejection from a Resolver.
var ErrPathEscapesSandbox = errors.New("path escapes sandbox")

// EscapeError reports a path that resolved outside the sandbox root.
type EscapeError struct {
	// Path is the caller-supplied path.
	Path string
	// Resolved is where the path would have landed.
	Resolved string
	// Reason is set when the rejection was not a plain ".." escape.
	Reason string
}

func (e *EscapeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %q (%s)", ErrPathEscapesSandbox, e.Path, e.Reason)
	}
	return fmt.Sprintf("%s: %q resolves to %q", ErrPathEscapesSandbox, e.Path, e.Resolved)
}

// Is makes errors.Is(err, ErrPathEscapesSandbox) hold for any EscapeError.
func (e *EscapeError) Is(target error) bool {
	return target == ErrPathEscapesSandbox
}

// ErrSymlinkNotFollowed is matched when a strict resolution meets a symlink.
// It also satisfies ErrPathEscapesSandbox.
var ErrSymlinkNotFollowed = errors.New("symlink not followed")

// SymlinkError reports a path with a symlink among its existing components.
// The link's target is irrelevant: in-sandbox and dangling links are refused
// the same way.
type SymlinkError struct {
	// Path is the caller-supplied path.
	Path string
	// Link is the sandbox-relative path of the first symlink component.
	Link string
}

func (e *SymlinkError) Error() string {
	if e.Link == "" || e.Link == e.Path {
		return fmt.Sprintf("%s: %q is a symlink", ErrSymlinkNotFollowed, e.Path)
	}
	return fmt.Sprintf("%s: %q passes through symlink %q", ErrSymlinkNotFollowed, e.Path, e.Link)
}

func (e *SymlinkError) Is(target error) bool {
	return target == ErrSymlinkNotFollowed || target == ErrPathEscapesSandbox
}

// IsSymlink reports whether err is a strict-resolution symlink rejection.
func IsSymlink(err error) bool {
	return errors.Is(err, ErrSymlinkNotFollowed)
}

// IsEscape reports whether err is a sandbox escape rejection.
func IsEscape(err error) bool {
	return errors.Is(err, ErrPathEscapesSandbox)
}
