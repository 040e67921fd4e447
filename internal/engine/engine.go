// Package engine owns one sandbox: its manifest store, access gate, command
// executor and tree builder, serialized behind a single lock.
//
// Engines share no state. Open as many as there are sandboxes.
package engine

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mfateev/dirproto/internal/access"
	"github.com/mfateev/dirproto/internal/command"
	"github.com/mfateev/dirproto/internal/history"
	"github.com/mfateev/dirproto/internal/manifest"
	"github.com/mfateev/dirproto/internal/sandbox"
	"github.com/mfateev/dirproto/internal/tree"
)

// Engine is the access-controlled view of one sandbox root. All methods are
// safe for concurrent use; each holds the engine lock for its whole
// check-then-act sequence.
type Engine struct {
	mu sync.Mutex

	resolver *sandbox.Resolver
	store    *manifest.Store
	gate     *access.Gate
	executor *command.Executor
	builder  *tree.Builder
	journal  history.Journal
	log      logrus.FieldLogger

	autoReload bool
}

// Open builds an engine for root and loads its manifests.
func Open(root string, opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.log = l
	}

	resolver, err := sandbox.NewResolver(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(resolver.Root())
	if err != nil {
		return nil, fmt.Errorf("open sandbox: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open sandbox: %s is not a directory", resolver.Root())
	}

	log := o.log.WithField("sandbox", resolver.Root())
	store := manifest.NewStore(resolver,
		manifest.WithFileName(o.manifestName),
		manifest.WithLogger(log),
	)
	gate := access.NewGate(resolver, store)
	e := &Engine{
		resolver:   resolver,
		store:      store,
		gate:       gate,
		executor:   command.NewExecutor(resolver, store, gate, log),
		builder:    tree.NewBuilder(resolver, gate, log),
		journal:    o.journal,
		log:        log,
		autoReload: o.autoReload,
	}

	if o.initialize {
		if n, err := store.Initialize(); err != nil {
			log.WithError(err).Warn("some manifests could not be created")
		} else if n > 0 {
			log.WithField("created", n).Info("initialized manifests")
		}
	}
	store.Load()
	return e, nil
}

// Root returns the absolute sandbox root.
func (e *Engine) Root() string {
	return e.resolver.Root()
}

// ManifestName returns the manifest file name in use.
func (e *Engine) ManifestName() string {
	return e.store.FileName()
}

// Initialize writes empty manifests where missing, then reloads.
func (e *Engine) Initialize() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, err := e.store.Initialize()
	e.store.Load()
	return n, err
}

// Reload re-resolves every manifest and returns the load warnings.
func (e *Engine) Reload() []error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.Load()
	return e.store.Warnings()
}

// Warnings returns the problems recorded by the last load.
func (e *Engine) Warnings() []error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Warnings()
}

// Execute runs one command line. Failures are reported in the Result,
// never as an error. With a journal configured the outcome is recorded;
// a journal failure is logged and does not change the Result.
func (e *Engine) Execute(ctx context.Context, line string) command.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := e.executor.Execute(line)
	if res.OK && e.autoReload {
		e.store.Load()
	}
	e.record(ctx, res)
	return res
}

// ExecuteAll runs each line in order and returns every result. It stops
// early only when ctx is done.
func (e *Engine) ExecuteAll(ctx context.Context, lines []string) []command.Result {
	results := make([]command.Result, 0, len(lines))
	for _, line := range lines {
		if ctx.Err() != nil {
			break
		}
		results = append(results, e.Execute(ctx, line))
	}
	return results
}

func (e *Engine) record(ctx context.Context, res command.Result) {
	if e.journal == nil {
		return
	}
	entry := history.Entry{
		Source:  history.SourceFrom(ctx),
		Command: res.Command,
		Op:      res.Op.String(),
		OK:      res.OK,
		Kind:    res.Label(),
		Message: res.Message,
	}
	if _, err := e.journal.Record(ctx, entry); err != nil {
		e.log.WithError(err).Warn("journal write failed")
	}
}

// ReadFileContent returns the content of a visible regular file. Binary and
// unrecognized files yield a marker instead of their bytes, and a text file
// that cannot be read yields a read-failure marker. The boolean is false
// when the path is invalid, escapes the sandbox, does not exist, is not a
// regular file, or is not visible.
func (e *Engine) ReadFileContent(rel string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	abs, err := e.resolver.ResolveStrict(rel)
	if err != nil {
		e.log.WithError(err).Debug("read refused")
		return "", false
	}
	info, err := os.Lstat(abs)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	if !e.gate.IsVisible(abs) {
		e.log.WithField("path", rel).Debug("read refused: not visible")
		return "", false
	}

	switch access.Classify(abs) {
	case access.KindBinary:
		return access.BinaryMarker, true
	case access.KindText:
		data, err := os.ReadFile(abs)
		if err != nil {
			e.log.WithError(err).WithField("path", rel).Warn("read failed")
			return access.ReadFailureMarker(err), true
		}
		return access.TextContent(data), true
	default:
		return access.UnknownMarker, true
	}
}

// Tree builds the visible tree from the root.
func (e *Engine) Tree() *tree.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.builder.Build(e.resolver.Root())
}

// Display renders the visible tree, truncating previews to maxPreviewLines
// (zero or less for no limit). The tree is built once, when Display is
// called; the returned sequence replays that snapshot on every range.
func (e *Engine) Display(maxPreviewLines int) iter.Seq[string] {
	return e.DisplayWith(tree.Options{MaxPreviewLines: maxPreviewLines})
}

// DisplayWith is Display with full render options.
func (e *Engine) DisplayWith(opts tree.Options) iter.Seq[string] {
	return tree.Render(e.Tree(), opts)
}

// Permissions summarizes what the access gate says about one path.
type Permissions struct {
	Path      string
	Exists    bool
	IsDir     bool
	Visible   bool
	Operable  bool
	CanCreate bool
	Preview   bool
	// Loaded is false for a directory created outside the engine since the
	// last reload; it resolves as the empty manifest until then.
	Loaded bool
}

// Inspect reports the gate's answers for rel without changing anything.
func (e *Engine) Inspect(rel string) (Permissions, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	abs, err := e.resolver.Resolve(rel)
	if err != nil {
		return Permissions{}, err
	}
	p := Permissions{Path: e.resolver.Rel(abs), Visible: e.gate.IsVisible(abs)}
	info, err := os.Lstat(abs)
	if err == nil {
		p.Exists = true
		p.IsDir = info.IsDir()
	}
	switch {
	case !p.Exists:
		// CanCreate answers for the missing entry's parent.
		if parent := e.resolver.Parent(abs); parent != "" {
			p.CanCreate = e.gate.CanCreateIn(parent)
		}
	case p.IsDir:
		p.Loaded = e.store.Has(abs)
		p.Operable = e.gate.IsRemovableDir(abs)
		p.CanCreate = e.gate.CanCreateIn(abs)
	default:
		p.Operable = e.gate.IsOperable(abs)
		p.Preview = e.gate.ShouldPreview(abs)
	}
	return p, nil
}

// Dirs returns every directory with a loaded manifest, relative to the
// root and sorted.
func (e *Engine) Dirs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	abs := e.store.Dirs()
	out := make([]string, 0, len(abs))
	for _, dir := range abs {
		out = append(out, e.resolver.Rel(dir))
	}
	slices.Sort(out)
	return out
}

// ResolvedManifest returns the effective manifest of the directory rel.
func (e *Engine) ResolvedManifest(rel string) (manifest.Resolved, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	abs, err := e.resolver.Resolve(rel)
	if err != nil {
		return manifest.Resolved{}, err
	}
	return e.store.Resolved(abs), nil
}
