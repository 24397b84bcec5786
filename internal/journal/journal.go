// Package journal persists discovered clues as an append-only log. The
// journal outlives in-memory sessions: one shared log per deployment,
// cleared only when a new investigation begins.
package journal

import (
	"context"
	"fmt"

	"github.com/duskvale/duskvale/internal/cast"
)

// Entry is one day-stamped, character-attributed clue.
type Entry struct {
	Day       int            `json:"day"`
	Character cast.Character `json:"character"`
	Clue      string         `json:"clue"`
}

// Line renders the entry in the journal's wire format.
func (e Entry) Line() string {
	return fmt.Sprintf("[Day %d] %s: %s", e.Day, e.Character, e.Clue)
}

// Store is the durable clue log. Entries are never mutated or reordered:
// append or wholly clear, nothing else.
type Store interface {
	// Append adds one entry to the end of the log.
	Append(ctx context.Context, e Entry) error

	// ReadAll returns every journal line in append order.
	ReadAll(ctx context.Context) ([]string, error)

	// Clear wipes the log. Called on new-game initialization only.
	Clear(ctx context.Context) error
}
