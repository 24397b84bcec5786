// Package engine orchestrates the Duskvale investigation: it owns the
// session store and journal, drives prompt composition and the model call,
// interprets replies, and applies the death and impostor schedules.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/duskvale/duskvale/internal/cast"
	"github.com/duskvale/duskvale/internal/interpret"
	"github.com/duskvale/duskvale/internal/journal"
	"github.com/duskvale/duskvale/internal/observe"
	"github.com/duskvale/duskvale/internal/prompt"
	"github.com/duskvale/duskvale/internal/session"
	"github.com/duskvale/duskvale/pkg/provider/llm"
)

// defaultCallTimeout bounds a single model call. A backend that never
// answers degrades into the canned-reply path instead of blocking the turn.
const defaultCallTimeout = 30 * time.Second

// Notifier receives journal entries as they are persisted. Used to push live
// updates to journal watchers.
type Notifier interface {
	JournalAppended(e journal.Entry)
}

// Engine is the game orchestrator. Safe for concurrent use: cross-session
// calls run fully in parallel, turns within one session are serialised by
// the session lock.
type Engine struct {
	sessions *session.Store
	journal  journal.Store
	provider llm.Provider

	metrics  *observe.Metrics
	notifier Notifier
	timeout  time.Duration
}

// Option is a functional option for [New].
type Option func(*Engine)

// WithCallTimeout bounds each model call. Default: 30s.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithMetrics sets the metrics instance. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithNotifier registers a journal notifier.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// New creates an [Engine] over the given session store, journal, and model
// provider.
func New(sessions *session.Store, js journal.Store, provider llm.Provider, opts ...Option) *Engine {
	e := &Engine{
		sessions: sessions,
		journal:  js,
		provider: provider,
		timeout:  defaultCallTimeout,
	}
	for _, o := range opts {
		o(e)
	}
	if e.metrics == nil {
		e.metrics = observe.DefaultMetrics()
	}
	return e
}

// NewGameResult is the outcome of starting a fresh investigation.
type NewGameResult struct {
	SessionID  string
	Day        int
	Characters []cast.Character
	Message    string
}

// NewGame creates a fresh day-1 session and clears the journal. Every call
// yields a new session; the journal is shared, so starting a new game wipes
// the clues of any previous one.
func (e *Engine) NewGame(ctx context.Context) (NewGameResult, error) {
	s, err := e.sessions.Create()
	if err != nil {
		return NewGameResult{}, fmt.Errorf("engine: new game: %w", err)
	}
	if err := e.journal.Clear(ctx); err != nil {
		observe.Logger(ctx).Warn("journal clear failed", "error", err)
		e.metrics.JournalErrors.Add(ctx, 1)
	}
	e.metrics.ActiveSessions.Add(ctx, 1)

	observe.Logger(ctx).Info("new game started", "session_id", s.ID)
	return NewGameResult{
		SessionID:  s.ID,
		Day:        s.Day,
		Characters: cast.Characters,
		Message:    "New investigation started. Beware the Skinwalker.",
	}, nil
}

// InterrogateParams carries one interrogation turn.
type InterrogateParams struct {
	SessionID string
	Character cast.Character
	Message   string

	// Day, when positive, probes that day instead of the session's current
	// day. The session's day of record is never mutated by interrogation.
	Day int
}

// InterrogateResult is the outcome of one turn. Clue is empty when the
// exchange produced nothing for the journal.
type InterrogateResult struct {
	Character cast.Character
	Response  string
	Day       int
	Clue      string
}

// Interrogate runs one turn against a character. Unknown sessions are
// auto-created rather than rejected so a restarted client keeps its session
// ID working. Provider and journal failures never fail the turn.
func (e *Engine) Interrogate(ctx context.Context, p InterrogateParams) (InterrogateResult, error) {
	s, created := e.sessions.GetOrCreate(p.SessionID)
	if created {
		e.metrics.ActiveSessions.Add(ctx, 1)
	}

	s.Lock()
	defer s.Unlock()

	day := s.Day
	if p.Day > 0 {
		day = p.Day
	}
	start := time.Now()
	defer func() {
		e.metrics.TurnDuration.Record(ctx, time.Since(start).Seconds())
	}()

	// Scheduled deaths short-circuit: fixed reply, canned clue, no model
	// call, no history mutation.
	if cast.IsDead(p.Character, day) {
		clue := cast.DeadClue(p.Character)
		e.appendClue(ctx, day, p.Character, clue)
		e.metrics.RecordInterrogation(ctx, string(p.Character), "dead")
		return InterrogateResult{Character: p.Character, Response: cast.DeadReply, Day: day, Clue: clue}, nil
	}

	history := s.HistoryForPrompt(p.Character, day)
	events := s.SharedEvents(day)

	req, ok := prompt.Compose(p.Character, day, p.Message, history, events)
	if !ok {
		// No persona for this day. Recorded like any other exchange.
		s.RecordTurn(p.Character, p.Message, cast.UnavailableReply, s.Day)
		e.metrics.RecordInterrogation(ctx, string(p.Character), "unavailable")
		return InterrogateResult{Character: p.Character, Response: cast.UnavailableReply, Day: day}, nil
	}

	// The turn is stamped with the session's day of record, not the day
	// under discussion: a probed exchange stays visible to current-day
	// prompts instead of hiding behind the no-lookahead filter.
	speech, clue, outcome := e.complete(ctx, p.Character, day, req)
	s.RecordTurn(p.Character, p.Message, speech, s.Day)
	if clue != "" {
		e.appendClue(ctx, day, p.Character, clue)
	}
	e.metrics.RecordInterrogation(ctx, string(p.Character), outcome)

	return InterrogateResult{Character: p.Character, Response: speech, Day: day, Clue: clue}, nil
}

// complete runs the bounded model call and parses the reply, degrading to
// the canned (character, day) fallback on any provider error.
func (e *Engine) complete(ctx context.Context, c cast.Character, day int, req llm.CompletionRequest) (speech, clue, outcome string) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	resp, err := e.provider.Complete(callCtx, req)
	e.metrics.LLMDuration.Record(ctx, time.Since(start).Seconds())

	if err != nil {
		observe.Logger(ctx).Warn("model call failed, serving canned reply",
			"character", string(c), "day", day, "error", err)
		e.metrics.RecordProviderError(ctx, "llm")
		canned := cast.FallbackReply(c, day)
		return canned.Speech, canned.Clue, "fallback"
	}

	parsed := interpret.Parse(resp.Content)
	return parsed.Speech, parsed.Clue, "model"
}

// appendClue persists one clue. Persistence failures are logged and
// swallowed so gameplay never blocks on the journal.
func (e *Engine) appendClue(ctx context.Context, day int, c cast.Character, clue string) {
	entry := journal.Entry{Day: day, Character: c, Clue: clue}
	if err := e.journal.Append(ctx, entry); err != nil {
		observe.Logger(ctx).Warn("journal append failed",
			"character", string(c), "day", day, "error", err)
		e.metrics.JournalErrors.Add(ctx, 1)
		return
	}
	e.metrics.JournalAppends.Add(ctx, 1)
	if e.notifier != nil {
		e.notifier.JournalAppended(entry)
	}
}

// AdvanceResult is the outcome of moving a session to the next day.
type AdvanceResult struct {
	Day     int
	Message string
	Alive   []cast.Character
}

// AdvanceDay moves the session one day forward, announces the night passing
// to every character, and, when the new day is a scheduled death day,
// announces that death too. Returns [session.ErrNotFound] for unknown IDs.
func (e *Engine) AdvanceDay(ctx context.Context, sessionID string) (AdvanceResult, error) {
	s, err := e.sessions.Get(sessionID)
	if err != nil {
		return AdvanceResult{}, err
	}

	s.Lock()
	defer s.Unlock()

	day := s.AdvanceDay()
	msg := fmt.Sprintf("Night passes. Day %d.", day)
	s.AddSharedEvent(day, fmt.Sprintf("Night has passed. It is now Day %d.", day))

	if victim, ok := cast.VictimOn(day); ok {
		msg += fmt.Sprintf(" %s was found dead!", victim)
		s.AddSharedEvent(day, fmt.Sprintf("%s was found dead this morning.", victim))
	}

	observe.Logger(ctx).Info("day advanced", "session_id", sessionID, "day", day)
	return AdvanceResult{Day: day, Message: msg, Alive: cast.Alive(day)}, nil
}

// EliminateResult is the outcome of an elimination guess.
type EliminateResult struct {
	Result  string // "win" or "lose"
	Message string
}

// Eliminate compares the accused character against the impostor for the
// session's current day. Winning or losing is narrative flavor only: the
// engine does not limit guesses or freeze the session afterwards. Returns
// [session.ErrNotFound] for unknown IDs.
func (e *Engine) Eliminate(ctx context.Context, sessionID string, accused cast.Character) (EliminateResult, error) {
	s, err := e.sessions.Get(sessionID)
	if err != nil {
		return EliminateResult{}, err
	}

	s.Lock()
	day := s.Day
	s.Unlock()

	if cast.IsImpostor(accused, day) {
		e.metrics.RecordElimination(ctx, "win")
		return EliminateResult{
			Result:  "win",
			Message: fmt.Sprintf("%s shrieks as the stolen skin sloughs away. The skinwalker is destroyed. Duskvale is saved.", accused),
		}, nil
	}

	e.metrics.RecordElimination(ctx, "lose")
	return EliminateResult{
		Result:  "lose",
		Message: fmt.Sprintf("%s was innocent. In the silence that follows, something smiles with borrowed lips.", accused),
	}, nil
}

// StatusResult is a read-only snapshot of a session.
type StatusResult struct {
	SessionID  string
	Day        int
	Characters []cast.Character
	Alive      []cast.Character
	Dead       []cast.Character
}

// Status returns the session's current day and cast breakdown. Returns
// [session.ErrNotFound] for unknown IDs.
func (e *Engine) Status(sessionID string) (StatusResult, error) {
	s, err := e.sessions.Get(sessionID)
	if err != nil {
		return StatusResult{}, err
	}

	s.Lock()
	day := s.Day
	s.Unlock()

	return StatusResult{
		SessionID:  sessionID,
		Day:        day,
		Characters: cast.Characters,
		Alive:      cast.Alive(day),
		Dead:       cast.Dead(day),
	}, nil
}

// Journal returns every persisted clue line in append order.
func (e *Engine) Journal(ctx context.Context) ([]string, error) {
	lines, err := e.journal.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine: read journal: %w", err)
	}
	return lines, nil
}
