package command

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/mfateev/dirproto/internal/access"
	"github.com/mfateev/dirproto/internal/manifest"
	"github.com/mfateev/dirproto/internal/sandbox"
)

// Executor runs commands against one sandbox. Every permission check runs
// before the filesystem is touched. It is not safe for concurrent use.
type Executor struct {
	resolver *sandbox.Resolver
	store    *manifest.Store
	gate     *access.Gate
	log      logrus.FieldLogger
}

// NewExecutor returns an Executor. A nil log discards output.
func NewExecutor(resolver *sandbox.Resolver, store *manifest.Store, gate *access.Gate, log logrus.FieldLogger) *Executor {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Executor{resolver: resolver, store: store, gate: gate, log: log}
}

// Execute parses and runs one line. It never returns an error; failures are
// reported in the Result.
func (x *Executor) Execute(line string) Result {
	cmd, err := Parse(line)
	if err != nil {
		res := newResult(cmd, "", "", err)
		x.logResult(res)
		return res
	}
	return x.Run(cmd)
}

// Run executes an already parsed command.
func (x *Executor) Run(cmd Command) Result {
	var (
		path, msg string
		err       error
	)
	switch cmd.Op {
	case OpMove:
		path, msg, err = x.move(cmd.Path, cmd.Dest)
	case OpDelete:
		path, msg, err = x.delete(cmd.Path)
	case OpAppend, OpOverwrite:
		path, msg, err = x.write(cmd.Path, cmd.Content, cmd.Op == OpAppend)
	case OpTouch:
		path, msg, err = x.touch(cmd.Path)
	case OpMkdir:
		path, msg, err = x.mkdir(cmd.Path)
	default:
		err = newError(KindUnrecognizedCommand, "unrecognized command: %q", cmd.Raw)
	}
	res := newResult(cmd, path, msg, err)
	x.logResult(res)
	return res
}

func (x *Executor) logResult(res Result) {
	entry := x.log.WithFields(logrus.Fields{
		"op":   res.Op.String(),
		"path": res.Path,
	})
	if res.OK {
		entry.Debug(res.Message)
		return
	}
	entry.WithField("kind", label(res.Kind, res.Denial)).Debug(res.Message)
}

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

func (x *Executor) move(srcRel, destRel string) (string, string, error) {
	src, err := x.target(srcRel)
	if err != nil {
		return srcRel, "", err
	}
	dest, err := x.target(destRel)
	if err != nil {
		return srcRel, "", err
	}
	if src == x.resolver.Root() {
		return ".", "", denied(DenialOperability, "the sandbox root cannot be moved")
	}
	srcInfo, err := x.stat(src)
	if err != nil {
		return srcRel, "", err
	}
	if srcInfo == nil {
		return srcRel, "", newError(KindEntryNotFound, "source %q does not exist", srcRel)
	}
	if err := x.requireVisible(src, srcRel); err != nil {
		return srcRel, "", err
	}
	if err := x.requireRemovable(src, srcRel, srcInfo); err != nil {
		return srcRel, "", err
	}

	destInfo, err := x.stat(dest)
	if err != nil {
		return srcRel, "", err
	}
	if destInfo != nil && destInfo.IsDir() {
		if err := x.requireVisible(dest, destRel); err != nil {
			return srcRel, "", err
		}
		dest = filepath.Join(dest, filepath.Base(src))
		if destInfo, err = x.stat(dest); err != nil {
			return srcRel, "", err
		}
	}
	if dest == src {
		return x.resolver.Rel(src), fmt.Sprintf("%s is already at %s", srcRel, x.resolver.Rel(dest)), nil
	}
	if srcInfo.IsDir() && x.resolver.Contains(dest) && isWithin(dest, src) {
		return srcRel, "", newError(KindIOFailure, "cannot move %q into itself", srcRel)
	}

	var missing []string
	switch {
	case destInfo == nil:
		if missing, err = x.creationPlan(dest); err != nil {
			return srcRel, "", err
		}
	case destInfo.IsDir():
		return srcRel, "", newError(KindAlreadyExists, "destination %q already exists", x.resolver.Rel(dest))
	default:
		if srcInfo.IsDir() {
			return srcRel, "", newError(KindAlreadyExists, "destination %q is an existing file", x.resolver.Rel(dest))
		}
		if err := x.requireVisible(dest, x.resolver.Rel(dest)); err != nil {
			return srcRel, "", err
		}
		if !x.gate.IsOperable(dest) {
			return srcRel, "", denied(DenialOperability, "destination %q is not operable", x.resolver.Rel(dest))
		}
	}

	if err := x.makeParents(missing); err != nil {
		return srcRel, "", err
	}
	if err := os.Rename(src, dest); err != nil {
		return srcRel, "", ioFailure(err, "move %q", srcRel)
	}
	return x.resolver.Rel(dest), fmt.Sprintf("moved %s -> %s", x.resolver.Rel(src), x.resolver.Rel(dest)), nil
}

func (x *Executor) delete(rel string) (string, string, error) {
	abs, err := x.target(rel)
	if err != nil {
		return rel, "", err
	}
	if abs == x.resolver.Root() {
		return ".", "", denied(DenialOperability, "the sandbox root cannot be deleted")
	}
	info, err := x.stat(abs)
	if err != nil {
		return rel, "", err
	}
	if info == nil {
		return rel, "", newError(KindEntryNotFound, "%q does not exist", rel)
	}
	if err := x.requireVisible(abs, rel); err != nil {
		return rel, "", err
	}
	if err := x.requireRemovable(abs, rel, info); err != nil {
		return rel, "", err
	}

	shown := x.resolver.Rel(abs)
	if info.IsDir() {
		if err := os.RemoveAll(abs); err != nil {
			return shown, "", ioFailure(err, "delete directory %q", rel)
		}
		return shown, fmt.Sprintf("deleted directory %s", shown), nil
	}
	if err := os.Remove(abs); err != nil {
		return shown, "", ioFailure(err, "delete %q", rel)
	}
	return shown, fmt.Sprintf("deleted %s", shown), nil
}

func (x *Executor) write(rel, content string, appending bool) (string, string, error) {
	op := OpOverwrite
	if appending {
		op = OpAppend
	}
	abs, err := x.target(rel)
	if err != nil {
		return rel, "", err
	}
	info, err := x.stat(abs)
	if err != nil {
		return rel, "", err
	}

	var missing []string
	if info != nil {
		if info.IsDir() {
			return rel, "", newError(KindUnsupportedContentOperation, "%q is a directory", rel)
		}
		if err := x.requireVisible(abs, rel); err != nil {
			return rel, "", err
		}
		if !x.gate.IsOperable(abs) {
			return rel, "", denied(DenialOperability, "%q is not operable", rel)
		}
		if access.Classify(abs) != access.KindText {
			return rel, "", newError(KindUnsupportedContentOperation,
				"%s is only allowed on text files, %q is %s", op, rel, access.Classify(abs))
		}
	} else if missing, err = x.creationPlan(abs); err != nil {
		return rel, "", err
	}

	if err := x.makeParents(missing); err != nil {
		return rel, "", err
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appending {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
		if info != nil && info.Size() > 0 && content != "" {
			last, err := lastByte(abs, info.Size())
			if err != nil {
				return rel, "", ioFailure(err, "read %q", rel)
			}
			if last != '\n' {
				content = "\n" + content
			}
		}
	}
	f, err := os.OpenFile(abs, flags, 0o644)
	if err != nil {
		return rel, "", ioFailure(err, "open %q", rel)
	}
	n, werr := f.WriteString(content)
	cerr := f.Close()
	if werr != nil {
		return rel, "", ioFailure(werr, "write %q", rel)
	}
	if cerr != nil {
		return rel, "", ioFailure(cerr, "close %q", rel)
	}

	shown := x.resolver.Rel(abs)
	switch {
	case info == nil:
		return shown, fmt.Sprintf("created %s (%d bytes)", shown, n), nil
	case appending:
		return shown, fmt.Sprintf("appended %d bytes to %s", n, shown), nil
	default:
		return shown, fmt.Sprintf("wrote %d bytes to %s", n, shown), nil
	}
}

func (x *Executor) touch(rel string) (string, string, error) {
	abs, err := x.target(rel)
	if err != nil {
		return rel, "", err
	}
	info, err := x.stat(abs)
	if err != nil {
		return rel, "", err
	}
	if info != nil {
		return rel, "", newError(KindAlreadyExists, "%q already exists", rel)
	}
	missing, err := x.creationPlan(abs)
	if err != nil {
		return rel, "", err
	}
	if err := x.makeParents(missing); err != nil {
		return rel, "", err
	}
	f, err := os.OpenFile(abs, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return rel, "", newError(KindAlreadyExists, "%q already exists", rel)
		}
		return rel, "", ioFailure(err, "create %q", rel)
	}
	if err := f.Close(); err != nil {
		return rel, "", ioFailure(err, "create %q", rel)
	}
	shown := x.resolver.Rel(abs)
	return shown, fmt.Sprintf("created empty file %s", shown), nil
}

func (x *Executor) mkdir(rel string) (string, string, error) {
	abs, err := x.target(rel)
	if err != nil {
		return rel, "", err
	}
	info, err := x.stat(abs)
	if err != nil {
		return rel, "", err
	}
	if info != nil {
		return rel, "", newError(KindAlreadyExists, "%q already exists", rel)
	}
	missing, err := x.creationPlan(abs)
	if err != nil {
		return rel, "", err
	}
	if err := x.makeParents(append(missing, abs)); err != nil {
		return rel, "", err
	}
	shown := x.resolver.Rel(abs)
	return shown, fmt.Sprintf("created directory %s", shown), nil
}

// ---------------------------------------------------------------------------
// Checks
// ---------------------------------------------------------------------------

// target resolves rel strictly, mapping escapes to KindPathEscapesSandbox.
func (x *Executor) target(rel string) (string, error) {
	abs, err := x.resolver.ResolveStrict(rel)
	if err != nil {
		return "", &Error{Kind: KindPathEscapesSandbox, Message: err.Error(), Err: err}
	}
	return abs, nil
}

// stat returns nil info without error when abs does not exist.
func (x *Executor) stat(abs string) (fs.FileInfo, error) {
	info, err := os.Lstat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, ioFailure(err, "stat %q", x.resolver.Rel(abs))
	}
	return info, nil
}

func (x *Executor) requireVisible(abs, rel string) error {
	if !x.gate.IsVisible(abs) {
		return denied(DenialVisibility, "%q is not visible", rel)
	}
	return nil
}

func (x *Executor) requireRemovable(abs, rel string, info fs.FileInfo) error {
	if info.IsDir() {
		if !x.gate.IsRemovableDir(abs) {
			return denied(DenialOperability, "directory %q is not operable", rel)
		}
		return nil
	}
	if !x.gate.IsOperable(abs) {
		return denied(DenialOperability, "%q is not operable", rel)
	}
	return nil
}

// creationPlan checks that a new entry at abs may be created. The nearest
// existing ancestor must permit creation. It returns the missing ancestor
// directories, outermost first.
func (x *Executor) creationPlan(abs string) ([]string, error) {
	var missing []string
	dir := x.resolver.Parent(abs)
	for {
		if dir == "" {
			return nil, newError(KindIOFailure, "no existing ancestor for %q", x.resolver.Rel(abs))
		}
		info, err := x.stat(dir)
		if err != nil {
			return nil, err
		}
		if info != nil {
			if !info.IsDir() {
				return nil, newError(KindIOFailure, "%q is not a directory", x.resolver.Rel(dir))
			}
			break
		}
		missing = append(missing, dir)
		dir = x.resolver.Parent(dir)
	}
	if !x.gate.CanCreateIn(dir) {
		return nil, denied(DenialCreation, "creating %q is not permitted in %q",
			x.resolver.Rel(abs), x.resolver.Rel(dir))
	}
	slices.Reverse(missing)
	return missing, nil
}

// makeParents creates each directory in order, gives it an empty manifest
// and registers that manifest so later commands see it without a reload.
func (x *Executor) makeParents(dirs []string) error {
	for _, dir := range dirs {
		if err := os.Mkdir(dir, 0o755); err != nil {
			return ioFailure(err, "create directory %q", x.resolver.Rel(dir))
		}
		if err := x.store.Write(dir, manifest.Manifest{}); err != nil {
			x.log.WithError(err).WithField("dir", x.resolver.Rel(dir)).
				Warn("created directory without a manifest")
		}
		x.store.Register(dir, manifest.Manifest{})
	}
	return nil
}

func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !startsWithParent(rel))
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}

func lastByte(path string, size int64) (byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	buf := make([]byte, 1)
	if _, err := f.ReadAt(buf, size-1); err != nil {
		return 0, err
	}
	return buf[0], nil
}
