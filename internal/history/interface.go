// Package history records every command an engine executes.
//
// Two implementations are provided: InMemoryJournal for tests and
// short-lived sessions, and FileJournal, which appends JSON lines to a file
// so a session can be audited after the fact.
package history

import (
	"context"
	"time"
)

// Entry is one executed command and its outcome.
type Entry struct {
	// Seq is assigned on Record and increases by one per entry.
	Seq int `json:"seq"`
	// ID is a random UUID assigned on Record.
	ID   string    `json:"id"`
	Time time.Time `json:"time"`
	// Source names the caller: "cli", "repl", "agent", "mcp".
	Source  string `json:"source,omitempty"`
	Command string `json:"command"`
	Op      string `json:"op"`
	OK      bool   `json:"ok"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// Journal is the interface for command journals.
type Journal interface {
	// Record assigns Seq, ID and (when zero) Time, stores the entry and
	// returns it.
	Record(ctx context.Context, e Entry) (Entry, error)

	// Entries returns every entry in order.
	Entries(ctx context.Context) ([]Entry, error)

	// Since returns entries with Seq > seq.
	Since(ctx context.Context, seq int) ([]Entry, error)
}

type sourceKey struct{}

// WithSource tags ctx so entries recorded under it carry source.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey{}, source)
}

// SourceFrom returns the source set by WithSource, or "".
func SourceFrom(ctx context.Context) string {
	s, _ := ctx.Value(sourceKey{}).(string)
	return s
}
