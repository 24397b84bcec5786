package server

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/duskvale/duskvale/internal/engine"
	"github.com/duskvale/duskvale/internal/journal"
)

// watchBuffer bounds the per-subscriber queue. A watcher that falls this far
// behind is dropped rather than blocking the game loop.
const watchBuffer = 16

// journalEvent is the wire format pushed to /api/journal/watch clients.
type journalEvent struct {
	Day       int    `json:"day"`
	Character string `json:"character"`
	Clue      string `json:"clue"`
	Line      string `json:"line"`
}

// JournalHub fans journal entries out to connected websocket watchers.
// It implements [engine.Notifier], so the same instance is handed both to
// the engine and to the server.
type JournalHub struct {
	mu   sync.Mutex
	subs map[chan journalEvent]struct{}
}

// NewJournalHub returns a hub with no subscribers.
func NewJournalHub() *JournalHub {
	return &JournalHub{subs: make(map[chan journalEvent]struct{})}
}

// JournalAppended broadcasts e to every connected watcher. Slow watchers
// lose events instead of applying backpressure to the caller.
func (h *JournalHub) JournalAppended(e journal.Entry) {
	ev := journalEvent{
		Day:       e.Day,
		Character: string(e.Character),
		Clue:      e.Clue,
		Line:      e.Line(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// ServeHTTP upgrades the request to a websocket and streams journal entries
// until the client disconnects.
func (h *JournalHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Warn("journal watch: websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	// CloseRead discards incoming frames and cancels the context when the
	// peer goes away.
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev := <-ch:
			if err := wsjson.Write(ctx, conn, ev); err != nil {
				slog.Debug("journal watch: write failed, dropping watcher", "error", err)
				return
			}
		}
	}
}

func (h *JournalHub) subscribe() chan journalEvent {
	ch := make(chan journalEvent, watchBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *JournalHub) unsubscribe(ch chan journalEvent) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

var _ engine.Notifier = (*JournalHub)(nil)

// Watchers reports the current number of connected journal watchers.
func (h *JournalHub) Watchers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
