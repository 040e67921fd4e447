package manifest

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/mfateev/dirproto/internal/sandbox"
)

// Store discovers, initializes, loads and resolves every manifest under a
// sandbox root. It is not safe for concurrent use; the owning engine
// serializes access.
type Store struct {
	resolver *sandbox.Resolver
	fileName string
	log      logrus.FieldLogger

	resolved map[string]Resolved
	warnings []error
}

// Option configures a Store.
type Option func(*Store)

// WithFileName sets the manifest file name. Blank names are ignored.
func WithFileName(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.fileName = name
		}
	}
}

// WithLogger sets the observability hook.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// NewStore returns an empty store rooted at the resolver's root. Call Load
// before querying it.
func NewStore(resolver *sandbox.Resolver, opts ...Option) *Store {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	s := &Store{
		resolver: resolver,
		fileName: DefaultFileName,
		log:      discard,
		resolved: make(map[string]Resolved),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FileName returns the manifest file name in use.
func (s *Store) FileName() string {
	return s.fileName
}

// PathFor returns the manifest file path for dir.
func (s *Store) PathFor(dir string) string {
	return filepath.Join(dir, s.fileName)
}

// IsManifestFile reports whether abs is a manifest file inside the sandbox.
func (s *Store) IsManifestFile(abs string) bool {
	return filepath.Base(abs) == s.fileName && s.resolver.Contains(abs)
}

// Initialize writes an empty manifest into every directory lacking one.
// Existing manifests are never touched. It returns the number of manifests
// written; individual failures are joined into the error but do not stop
// the walk.
func (s *Store) Initialize() (int, error) {
	created := 0
	var errs []error
	s.walkDirs(s.resolver.Root(), func(dir string) {
		path := s.PathFor(dir)
		if _, err := os.Lstat(path); err == nil {
			return
		} else if !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("stat %s: %w", s.resolver.Rel(path), err))
			return
		}
		if err := s.Write(dir, Manifest{}); err != nil {
			errs = append(errs, err)
			return
		}
		created++
		s.log.WithField("dir", s.resolver.Rel(dir)).Debug("created empty manifest")
	})
	return created, errors.Join(errs...)
}

// Load discards every cached resolution and resolves every directory under
// the root again. Unreadable or malformed manifests resolve as empty and are
// reported through Warnings.
func (s *Store) Load() {
	s.resolved = make(map[string]Resolved)
	s.warnings = nil
	s.walkDirs(s.resolver.Root(), func(dir string) {
		s.resolve(dir)
	})
	s.log.WithFields(logrus.Fields{
		"dirs":     len(s.resolved),
		"warnings": len(s.warnings),
	}).Debug("manifests loaded")
}

// Resolved returns the cached resolution for dir, or the empty manifest if
// dir was not seen by the last Load or Register.
func (s *Store) Resolved(dir string) Resolved {
	if r, ok := s.resolved[filepath.Clean(dir)]; ok {
		return r
	}
	return Empty()
}

// Has reports whether dir has a cached resolution.
func (s *Store) Has(dir string) bool {
	_, ok := s.resolved[filepath.Clean(dir)]
	return ok
}

// Register resolves m as the manifest of dir and caches the result without
// touching the filesystem. Inheritance consults the cached parent.
func (s *Store) Register(dir string, m Manifest) Resolved {
	dir = filepath.Clean(dir)
	var parent *Resolved
	if m.Inherits() {
		if p := s.resolver.Parent(dir); p != "" {
			pr := s.Resolved(p)
			parent = &pr
		}
	}
	r := Resolve(m, parent)
	s.resolved[dir] = r
	return r
}

// Warnings returns the problems recorded by the last Load.
func (s *Store) Warnings() []error {
	out := make([]error, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// Dirs returns every directory with a cached resolution, sorted.
func (s *Store) Dirs() []string {
	dirs := make([]string, 0, len(s.resolved))
	for dir := range s.resolved {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// Read decodes the persisted manifest of dir. A missing file is the empty
// manifest.
func (s *Store) Read(dir string) (Manifest, error) {
	path := s.PathFor(dir)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Manifest{}, nil
	}
	if err != nil {
		return Manifest{}, &ParseError{Path: s.resolver.Rel(path), Cause: err}
	}
	m, err := Decode(data)
	if err != nil {
		return Manifest{}, &ParseError{Path: s.resolver.Rel(path), Cause: err}
	}
	return m, nil
}

// Write persists m as the manifest of dir.
func (s *Store) Write(dir string, m Manifest) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	path := s.PathFor(dir)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", s.resolver.Rel(path), err)
	}
	return nil
}

// resolve memoizes the resolution of dir, resolving parents on demand so
// the result does not depend on walk order.
func (s *Store) resolve(dir string) Resolved {
	if r, ok := s.resolved[dir]; ok {
		return r
	}
	raw, err := s.Read(dir)
	if err != nil {
		s.warnings = append(s.warnings, err)
		s.log.WithError(err).WithField("dir", s.resolver.Rel(dir)).
			Warn("unusable manifest, treating as empty")
		raw = Manifest{}
	}

	var parent *Resolved
	if raw.Inherits() {
		if p := s.resolver.Parent(dir); p != "" {
			pr := s.resolve(p)
			parent = &pr
		}
	}
	r := Resolve(raw, parent)
	s.resolved[dir] = r
	return r
}

// walkDirs calls fn for dir and every real directory beneath it. Symlinked
// directories are not followed. Unlistable directories are logged and
// skipped.
func (s *Store) walkDirs(dir string, fn func(string)) {
	fn(dir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.log.WithError(err).WithField("dir", s.resolver.Rel(dir)).
			Warn("cannot list directory")
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			s.walkDirs(filepath.Join(dir, entry.Name()), fn)
		}
	}
}
