package health

import (
	"context"
	"errors"

	"github.com/duskvale/duskvale/internal/journal"
)

// JournalReadable returns a [Checker] that verifies the journal store can be
// read. A readable journal is what the game needs to serve /api/journal; an
// unwritable one only degrades clue persistence, which the engine already
// tolerates.
func JournalReadable(js journal.Store) Checker {
	return Checker{
		Name: "journal",
		Check: func(ctx context.Context) error {
			_, err := js.ReadAll(ctx)
			return err
		},
	}
}

// ProviderConfigured returns a [Checker] that fails while no model backend
// is wired. The server still runs — canned replies carry the game — but the
// readiness probe surfaces the degraded state to operators.
func ProviderConfigured(configured bool) Checker {
	return Checker{
		Name: "provider",
		Check: func(ctx context.Context) error {
			if !configured {
				return errors.New("no model backend configured, serving canned replies only")
			}
			return nil
		},
	}
}
