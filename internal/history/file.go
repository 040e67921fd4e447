package history

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/segmentio/encoding/json"
)

// FileJournal appends entries as JSON lines. Lines that fail to decode are
// skipped when reading.
type FileJournal struct {
	path    string
	nextSeq int
	now     func() time.Time
	mu      sync.Mutex
}

// OpenFileJournal opens (or prepares to create) the journal at path and
// continues its sequence numbering.
func OpenFileJournal(path string) (*FileJournal, error) {
	if path == "" {
		return nil, errors.New("journal path is required")
	}
	j := &FileJournal{path: path, now: time.Now}
	entries, err := j.read()
	if err != nil {
		return nil, err
	}
	if n := len(entries); n > 0 {
		j.nextSeq = entries[n-1].Seq + 1
	}
	return j, nil
}

// Path returns the journal file path.
func (j *FileJournal) Path() string {
	return j.path
}

// Record appends e to the file.
func (j *FileJournal) Record(ctx context.Context, e Entry) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	e = stamp(e, j.nextSeq, j.now)
	line, err := json.Marshal(e)
	if err != nil {
		return Entry{}, fmt.Errorf("encode journal entry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return Entry{}, fmt.Errorf("create journal directory: %w", err)
	}
	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return Entry{}, fmt.Errorf("open journal: %w", err)
	}
	_, werr := f.Write(append(line, '\n'))
	cerr := f.Close()
	if werr != nil {
		return Entry{}, fmt.Errorf("write journal: %w", werr)
	}
	if cerr != nil {
		return Entry{}, fmt.Errorf("close journal: %w", cerr)
	}
	j.nextSeq++
	return e, nil
}

// Entries reads every decodable entry from the file.
func (j *FileJournal) Entries(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.read()
}

// Since returns entries with Seq > seq.
func (j *FileJournal) Since(ctx context.Context, seq int) ([]Entry, error) {
	entries, err := j.Entries(ctx)
	if err != nil {
		return nil, err
	}
	return since(entries, seq), nil
}

func (j *FileJournal) read() ([]Entry, error) {
	data, err := os.ReadFile(j.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	entries := make([]Entry, 0)
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan journal: %w", err)
	}
	return entries, nil
}
