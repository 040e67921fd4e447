package history

import (
	"context"
	"errors"
)

// TeeJournal records into several journals and reads from the first.
type TeeJournal struct {
	journals []Journal
}

// Tee returns a journal writing to primary and every other journal. Nil
// journals are skipped.
func Tee(primary Journal, others ...Journal) *TeeJournal {
	t := &TeeJournal{}
	for _, j := range append([]Journal{primary}, others...) {
		if j != nil {
			t.journals = append(t.journals, j)
		}
	}
	return t
}

// Record records e everywhere and returns the entry as stamped by the
// primary journal. Every failure is reported.
func (t *TeeJournal) Record(ctx context.Context, e Entry) (Entry, error) {
	var (
		first Entry
		errs  []error
	)
	for i, j := range t.journals {
		stamped, err := j.Record(ctx, e)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if i == 0 {
			first = stamped
		}
	}
	return first, errors.Join(errs...)
}

// Entries reads the primary journal.
func (t *TeeJournal) Entries(ctx context.Context) ([]Entry, error) {
	if len(t.journals) == 0 {
		return nil, nil
	}
	return t.journals[0].Entries(ctx)
}

// Since reads the primary journal.
func (t *TeeJournal) Since(ctx context.Context, seq int) ([]Entry, error) {
	if len(t.journals) == 0 {
		return nil, nil
	}
	return t.journals[0].Since(ctx, seq)
}
