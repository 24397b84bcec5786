// Package session holds the in-memory state of a running investigation:
// the current day, per-character interrogation histories, and village-wide
// shared events. Sessions live for the process lifetime only; durable clue
// state belongs to the journal.
package session

import (
	"sync"
	"time"

	"github.com/duskvale/duskvale/internal/cast"
)

// HistoryWindow is the number of most-recent turns fed back into a prompt.
const HistoryWindow = 6

// Turn is one interrogation exchange with a single character, stamped with
// the day it happened on.
type Turn struct {
	Player string    `json:"player"`
	Reply  string    `json:"reply"`
	Day    int       `json:"day"`
	At     time.Time `json:"at"`
}

// SharedEvent is a piece of village-wide knowledge every character learns of
// on the day it happens (a disappearance, a death, a night passing).
type SharedEvent struct {
	Day  int    `json:"day"`
	Text string `json:"text"`
}

// Session is a single investigation. One mutex serialises all turns within a
// session, including the model call itself, so concurrent interrogations of
// the same session cannot interleave history.
type Session struct {
	mu sync.Mutex

	ID        string
	Day       int
	CreatedAt time.Time

	histories map[cast.Character][]Turn
	events    []SharedEvent
}

// newSession seeds a day-1 session with the events every villager already
// knows about when the investigation starts.
func newSession(id string) *Session {
	return &Session{
		ID:        id,
		Day:       1,
		CreatedAt: time.Now(),
		histories: make(map[cast.Character][]Turn),
		events: []SharedEvent{
			{Day: 1, Text: "A villager, Kabir, has vanished without a trace."},
			{Day: 1, Text: "Rumors spread of a demon that wears the skins of the dead."},
		},
	}
}

// Lock serialises a full interrogation turn. Held across the model call.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the turn lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// RecordTurn appends an exchange to c's history, stamped with day.
// Caller must hold the session lock.
func (s *Session) RecordTurn(c cast.Character, player, reply string, day int) {
	s.histories[c] = append(s.histories[c], Turn{
		Player: player,
		Reply:  reply,
		Day:    day,
		At:     time.Now(),
	})
}

// AddSharedEvent records a village-wide event on the given day.
// Caller must hold the session lock.
func (s *Session) AddSharedEvent(day int, text string) {
	s.events = append(s.events, SharedEvent{Day: day, Text: text})
}

// SharedEvents returns the events known by day (inclusive), oldest first.
// Caller must hold the session lock.
func (s *Session) SharedEvents(day int) []SharedEvent {
	out := make([]SharedEvent, 0, len(s.events))
	for _, e := range s.events {
		if e.Day <= day {
			out = append(out, e)
		}
	}
	return out
}

// HistoryForPrompt returns at most [HistoryWindow] of c's most recent turns
// whose day does not exceed day. Turns from later days never leak backwards
// into an earlier-day prompt. Caller must hold the session lock.
func (s *Session) HistoryForPrompt(c cast.Character, day int) []Turn {
	all := s.histories[c]
	start := len(all) - HistoryWindow
	if start < 0 {
		start = 0
	}
	out := make([]Turn, 0, HistoryWindow)
	for _, t := range all[start:] {
		if t.Day <= day {
			out = append(out, t)
		}
	}
	return out
}

// History returns c's full recorded history. Caller must hold the session lock.
func (s *Session) History(c cast.Character) []Turn {
	return s.histories[c]
}

// AdvanceDay moves the session to the next day and returns it. No upper
// bound: the death and impostor schedules resolve days past their defined
// range themselves. Caller must hold the session lock.
func (s *Session) AdvanceDay() int {
	s.Day++
	return s.Day
}
