package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// Resolver maps sandbox-relative paths to absolute paths under Root.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	root string
}

// NewResolver returns a Resolver for root. The root is made absolute and
// cleaned, but symlinks in the root itself are left alone.
func NewResolver(root string) (*Resolver, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("sandbox root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve sandbox root %q: %w", root, err)
	}
	return &Resolver{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute sandbox root.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve joins rel onto the root and normalises "." and ".." segments.
// Absolute inputs are treated as root-relative. The result is the root or a
// descendant of it; anything else is an *EscapeError. No filesystem call is
// made.
func (r *Resolver) Resolve(rel string) (string, error) {
	cleaned := strings.TrimSpace(rel)
	if strings.ContainsRune(cleaned, 0) {
		return "", &EscapeError{Path: rel, Reason: "contains NUL byte"}
	}
	joined := filepath.Join(r.root, filepath.FromSlash(cleaned))
	if !r.Contains(joined) {
		return "", &EscapeError{Path: rel, Resolved: joined}
	}
	return joined, nil
}

// ResolveStrict is Resolve followed by a symlink-aware re-resolution. A path
// whose existing components include a symlink is rejected with a
// *SymlinkError, wherever the link points.
func (r *Resolver) ResolveStrict(rel string) (string, error) {
	abs, err := r.Resolve(rel)
	if err != nil {
		return "", err
	}
	if abs == r.root {
		return abs, nil
	}
	unsafeRel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return "", &EscapeError{Path: rel, Resolved: abs, Reason: err.Error()}
	}
	secure, err := securejoin.SecureJoin(r.root, unsafeRel)
	if err != nil {
		return "", &EscapeError{Path: rel, Resolved: abs, Reason: err.Error()}
	}
	if filepath.Clean(secure) != abs {
		return "", &SymlinkError{Path: filepath.ToSlash(unsafeRel), Link: r.firstSymlink(abs)}
	}
	return abs, nil
}

// firstSymlink returns the relative path of the outermost symlink on the way
// from the root to abs, or "" when none is found.
func (r *Resolver) firstSymlink(abs string) string {
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return ""
	}
	cur := r.root
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		cur = filepath.Join(cur, part)
		info, err := os.Lstat(cur)
		if err != nil {
			return ""
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return r.Rel(cur)
		}
	}
	return ""
}

// Contains reports whether abs is the root or lies beneath it.
func (r *Resolver) Contains(abs string) bool {
	abs = filepath.Clean(abs)
	if abs == r.root {
		return true
	}
	prefix := r.root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(abs, prefix)
}

// Rel returns abs relative to the root using forward slashes. The root
// itself is ".".
func (r *Resolver) Rel(abs string) string {
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

// Parent returns the directory containing abs, or "" when abs is the root
// or the parent would fall outside the sandbox.
func (r *Resolver) Parent(abs string) string {
	abs = filepath.Clean(abs)
	if abs == r.root {
		return ""
	}
	parent := filepath.Dir(abs)
	if !r.Contains(parent) {
		return ""
	}
	return parent
}
