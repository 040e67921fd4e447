package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryJournal keeps entries in memory.
type InMemoryJournal struct {
	entries []Entry
	now     func() time.Time
	mu      sync.RWMutex
}

// NewInMemoryJournal creates an empty journal.
func NewInMemoryJournal() *InMemoryJournal {
	return &InMemoryJournal{
		entries: make([]Entry, 0),
		now:     time.Now,
	}
}

// Record appends e, assigning Seq == index.
func (j *InMemoryJournal) Record(_ context.Context, e Entry) (Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	e = stamp(e, len(j.entries), j.now)
	j.entries = append(j.entries, e)
	return e, nil
}

// Entries returns a copy of every entry.
func (j *InMemoryJournal) Entries(_ context.Context) ([]Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	result := make([]Entry, len(j.entries))
	copy(result, j.entries)
	return result, nil
}

// Since returns entries with Seq > seq.
func (j *InMemoryJournal) Since(_ context.Context, seq int) ([]Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return since(j.entries, seq), nil
}

// LatestSeq returns the Seq of the most recent entry, or -1 if empty.
func (j *InMemoryJournal) LatestSeq() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries) - 1
}

// KeepLast drops all but the newest n entries and renumbers the rest from
// zero. Returns the number of entries dropped.
func (j *InMemoryJournal) KeepLast(n int) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	if n < 0 || n >= len(j.entries) {
		return 0
	}
	dropped := len(j.entries) - n
	j.entries = append([]Entry(nil), j.entries[dropped:]...)
	for i := range j.entries {
		j.entries[i].Seq = i
	}
	return dropped
}

func stamp(e Entry, seq int, now func() time.Time) Entry {
	e.Seq = seq
	e.ID = uuid.NewString()
	if e.Time.IsZero() {
		e.Time = now().UTC()
	}
	return e
}

func since(entries []Entry, seq int) []Entry {
	out := make([]Entry, 0)
	for _, e := range entries {
		if e.Seq > seq {
			out = append(out, e)
		}
	}
	return out
}
