package engine

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/duskvale/duskvale/internal/cast"
	"github.com/duskvale/duskvale/internal/journal"
	"github.com/duskvale/duskvale/internal/observe"
	"github.com/duskvale/duskvale/internal/session"
	"github.com/duskvale/duskvale/pkg/provider/llm"
	"github.com/duskvale/duskvale/pkg/provider/llm/mock"
)

func newTestEngine(t *testing.T, provider llm.Provider) *Engine {
	t.Helper()
	js := journal.NewFileStore(filepath.Join(t.TempDir(), "journal.txt"))
	return New(session.NewStore(), js, provider)
}

func TestNewGame(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &mock.Provider{})
	res, err := e.NewGame(context.Background())
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if res.SessionID == "" {
		t.Fatal("NewGame: empty session ID")
	}
	if res.Day != 1 {
		t.Fatalf("NewGame day = %d, want 1", res.Day)
	}
	if len(res.Characters) != 6 {
		t.Fatalf("NewGame characters = %d, want 6", len(res.Characters))
	}

	lines, err := e.Journal(context.Background())
	if err != nil {
		t.Fatalf("Journal: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("journal should be empty after NewGame, got %v", lines)
	}
}

func TestInterrogateModelPath(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{
			Content: "I saw him by the mill at midnight, ji.|||JOURNAL: Seen at mill, midnight",
		},
	}
	e := newTestEngine(t, provider)
	ctx := context.Background()

	game, err := e.NewGame(ctx)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}

	res, err := e.Interrogate(ctx, InterrogateParams{
		SessionID: game.SessionID,
		Character: cast.AnyaTheHerbalist,
		Message:   "Where was Kabir that night?",
	})
	if err != nil {
		t.Fatalf("Interrogate: %v", err)
	}
	if res.Response != "I saw him by the mill at midnight, ji." {
		t.Fatalf("response = %q", res.Response)
	}
	if res.Clue != "Seen at mill, midnight" {
		t.Fatalf("clue = %q", res.Clue)
	}
	if res.Day != 1 {
		t.Fatalf("day = %d, want 1", res.Day)
	}

	lines, err := e.Journal(ctx)
	if err != nil {
		t.Fatalf("Journal: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("journal lines = %d, want 1", len(lines))
	}
	if lines[0] != "[Day 1] Anya the Herbalist: Seen at mill, midnight" {
		t.Fatalf("journal line = %q", lines[0])
	}

	// The system prompt carried the persona and the seed events.
	calls := provider.Calls()
	if len(calls) != 1 {
		t.Fatalf("provider calls = %d, want 1", len(calls))
	}
	sys := calls[0].Req.SystemPrompt
	if !strings.Contains(sys, "Anya, the herbalist") {
		t.Error("system prompt missing persona")
	}
	if !strings.Contains(sys, "Kabir, has vanished") {
		t.Error("system prompt missing seed event")
	}
}

func TestInterrogateNoClue(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "Go away, bhai. The woods are cursed."},
	}
	e := newTestEngine(t, provider)
	ctx := context.Background()

	game, _ := e.NewGame(ctx)
	res, err := e.Interrogate(ctx, InterrogateParams{
		SessionID: game.SessionID,
		Character: cast.IshaanTheMiller,
		Message:   "Open the door.",
	})
	if err != nil {
		t.Fatalf("Interrogate: %v", err)
	}
	if res.Clue != "" {
		t.Fatalf("clue = %q, want empty", res.Clue)
	}
	lines, _ := e.Journal(ctx)
	if len(lines) != 0 {
		t.Fatalf("journal should stay empty, got %v", lines)
	}
}

func TestInterrogateDeadShortCircuit(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "should never be called"},
	}
	e := newTestEngine(t, provider)
	ctx := context.Background()

	game, _ := e.NewGame(ctx)

	// Vikram dies on day 2; probe day 2 explicitly.
	res, err := e.Interrogate(ctx, InterrogateParams{
		SessionID: game.SessionID,
		Character: cast.VikramTheHunter,
		Message:   "Speak to me.",
		Day:       2,
	})
	if err != nil {
		t.Fatalf("Interrogate: %v", err)
	}
	if res.Response != cast.DeadReply {
		t.Fatalf("response = %q, want dead reply", res.Response)
	}
	if res.Clue == "" {
		t.Fatal("dead short-circuit should auto-generate a clue")
	}
	if got := len(provider.Calls()); got != 0 {
		t.Fatalf("provider calls = %d, want 0", got)
	}

	lines, _ := e.Journal(ctx)
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "[Day 2] Vikram the Hunter:") {
		t.Fatalf("journal = %v", lines)
	}
}

func TestInterrogateDayProbeDoesNotMutateSession(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "Hmph."},
	}
	e := newTestEngine(t, provider)
	ctx := context.Background()

	game, _ := e.NewGame(ctx)
	res, err := e.Interrogate(ctx, InterrogateParams{
		SessionID: game.SessionID,
		Character: cast.AmarTheElder,
		Message:   "What does the prophecy say?",
		Day:       3,
	})
	if err != nil {
		t.Fatalf("Interrogate: %v", err)
	}
	if res.Day != 3 {
		t.Fatalf("probed day = %d, want 3", res.Day)
	}

	status, err := e.Status(game.SessionID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Day != 1 {
		t.Fatalf("session day = %d after probe, want 1", status.Day)
	}
}

func TestInterrogateUnavailableCharacter(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "should never be called"},
	}
	e := newTestEngine(t, provider)
	ctx := context.Background()

	game, _ := e.NewGame(ctx)

	// The Guard Captain only has a day-1 persona and never dies.
	res, err := e.Interrogate(ctx, InterrogateParams{
		SessionID: game.SessionID,
		Character: cast.GuardCaptain,
		Message:   "Report.",
		Day:       3,
	})
	if err != nil {
		t.Fatalf("Interrogate: %v", err)
	}
	if res.Response != cast.UnavailableReply {
		t.Fatalf("response = %q, want unavailable sentinel", res.Response)
	}
	if res.Clue != "" {
		t.Fatalf("clue = %q, want empty", res.Clue)
	}
	if got := len(provider.Calls()); got != 0 {
		t.Fatalf("provider calls = %d, want 0", got)
	}
}

func TestInterrogateProviderFailureFallsBack(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{CompleteErr: errors.New("rate limited")}
	e := newTestEngine(t, provider)
	ctx := context.Background()

	game, _ := e.NewGame(ctx)
	res, err := e.Interrogate(ctx, InterrogateParams{
		SessionID: game.SessionID,
		Character: cast.AmarTheElder,
		Message:   "Tell me of the Rakshasa.",
	})
	if err != nil {
		t.Fatalf("Interrogate: %v", err)
	}
	want := cast.FallbackReply(cast.AmarTheElder, 1)
	if res.Response != want.Speech {
		t.Fatalf("response = %q, want canned reply", res.Response)
	}
	if res.Clue != want.Clue {
		t.Fatalf("clue = %q, want %q", res.Clue, want.Clue)
	}

	lines, _ := e.Journal(ctx)
	if len(lines) != 1 {
		t.Fatalf("canned clue should be journaled, got %v", lines)
	}
}

func TestInterrogateAutoCreatesSession(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "At once."},
	}
	e := newTestEngine(t, provider)

	res, err := e.Interrogate(context.Background(), InterrogateParams{
		SessionID: "restarted-client",
		Character: cast.GuardCaptain,
		Message:   "What happened here?",
	})
	if err != nil {
		t.Fatalf("Interrogate: %v", err)
	}
	if res.Day != 1 {
		t.Fatalf("auto-created session day = %d, want 1", res.Day)
	}

	if _, err := e.Status("restarted-client"); err != nil {
		t.Fatalf("auto-created session not registered: %v", err)
	}
}

func TestAdvanceDay(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "..."},
	}
	e := newTestEngine(t, provider)
	ctx := context.Background()

	game, _ := e.NewGame(ctx)

	res, err := e.AdvanceDay(ctx, game.SessionID)
	if err != nil {
		t.Fatalf("AdvanceDay: %v", err)
	}
	if res.Day != 2 {
		t.Fatalf("day = %d, want 2", res.Day)
	}
	if !strings.Contains(res.Message, "Night passes. Day 2.") {
		t.Fatalf("message = %q", res.Message)
	}
	if !strings.Contains(res.Message, "Vikram the Hunter was found dead!") {
		t.Fatalf("message should announce the death, got %q", res.Message)
	}
	if len(res.Alive) != 5 {
		t.Fatalf("alive = %d, want 5", len(res.Alive))
	}

	// Both events are visible in the next prompt for any character.
	if _, err := e.Interrogate(ctx, InterrogateParams{
		SessionID: game.SessionID,
		Character: cast.AnyaTheHerbalist,
		Message:   "What happened in the night?",
	}); err != nil {
		t.Fatalf("Interrogate: %v", err)
	}
	calls := provider.Calls()
	sys := calls[len(calls)-1].Req.SystemPrompt
	if !strings.Contains(sys, "Night has passed. It is now Day 2.") {
		t.Error("prompt missing night-passed event")
	}
	if !strings.Contains(sys, "Vikram the Hunter was found dead this morning.") {
		t.Error("prompt missing death event")
	}

	if _, err := e.AdvanceDay(ctx, "unknown"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("AdvanceDay(unknown) = %v, want ErrNotFound", err)
	}
}

func TestEliminate(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "..."},
	}
	e := newTestEngine(t, provider)
	ctx := context.Background()

	game, _ := e.NewGame(ctx)
	if _, err := e.AdvanceDay(ctx, game.SessionID); err != nil {
		t.Fatalf("AdvanceDay: %v", err)
	}

	// Day 2: Diya is the skinwalker's disguise.
	res, err := e.Eliminate(ctx, game.SessionID, cast.DiyaTheWeaver)
	if err != nil {
		t.Fatalf("Eliminate: %v", err)
	}
	if res.Result != "win" {
		t.Fatalf("result = %q, want win", res.Result)
	}
	if !strings.Contains(res.Message, "Diya the Weaver") {
		t.Fatalf("message should name the accused, got %q", res.Message)
	}

	res, err = e.Eliminate(ctx, game.SessionID, cast.IshaanTheMiller)
	if err != nil {
		t.Fatalf("Eliminate: %v", err)
	}
	if res.Result != "lose" {
		t.Fatalf("result = %q, want lose", res.Result)
	}
	if !strings.Contains(res.Message, "Ishaan the Miller") {
		t.Fatalf("message should name the accused, got %q", res.Message)
	}

	if _, err := e.Eliminate(ctx, "unknown", cast.DiyaTheWeaver); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("Eliminate(unknown) = %v, want ErrNotFound", err)
	}
}

func TestInterrogateDayProbeStampsCurrentDay(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "The prophecy names no one, beta."},
	}
	e := newTestEngine(t, provider)
	ctx := context.Background()

	game, _ := e.NewGame(ctx)

	// Probe day 3 from a day-1 session.
	if _, err := e.Interrogate(ctx, InterrogateParams{
		SessionID: game.SessionID,
		Character: cast.AmarTheElder,
		Message:   "What does the prophecy say about day three?",
		Day:       3,
	}); err != nil {
		t.Fatalf("Interrogate: %v", err)
	}
	provider.Reset()

	// The probed exchange is stamped with the session's day of record, so it
	// must still appear as context in the next day-1 prompt.
	if _, err := e.Interrogate(ctx, InterrogateParams{
		SessionID: game.SessionID,
		Character: cast.AmarTheElder,
		Message:   "And today?",
	}); err != nil {
		t.Fatalf("Interrogate: %v", err)
	}

	calls := provider.Calls()
	if len(calls) != 1 {
		t.Fatalf("provider calls = %d, want 1", len(calls))
	}
	msgs := calls[0].Req.Messages
	if len(msgs) != 3 {
		t.Fatalf("messages = %d, want probed exchange plus current message", len(msgs))
	}
	if msgs[0].Content != "What does the prophecy say about day three?" {
		t.Errorf("first message = %q, want the probed question", msgs[0].Content)
	}
}

func TestActiveSessionsGaugeCountsAutoCreated(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "At once."},
	}
	store := session.NewStore()
	js := journal.NewFileStore(filepath.Join(t.TempDir(), "journal.txt"))
	e := New(store, js, provider, WithMetrics(m))
	ctx := context.Background()

	if _, err := e.NewGame(ctx); err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	for i := 0; i < 2; i++ {
		// Same ID twice: only the first call registers a new session.
		if _, err := e.Interrogate(ctx, InterrogateParams{
			SessionID: "restarted-client",
			Character: cast.GuardCaptain,
			Message:   "Report.",
		}); err != nil {
			t.Fatalf("Interrogate: %v", err)
		}
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	var got int64
	for _, sm := range rm.ScopeMetrics {
		for _, met := range sm.Metrics {
			if met.Name != "duskvale.active_sessions" {
				continue
			}
			sum, ok := met.Data.(metricdata.Sum[int64])
			if !ok || len(sum.DataPoints) == 0 {
				t.Fatal("active sessions gauge has no data points")
			}
			got = sum.DataPoints[0].Value
		}
	}
	if got != int64(store.Count()) || got != 2 {
		t.Fatalf("active sessions gauge = %d, store count = %d, want both 2", got, store.Count())
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &mock.Provider{})
	ctx := context.Background()

	game, _ := e.NewGame(ctx)
	e.AdvanceDay(ctx, game.SessionID)
	e.AdvanceDay(ctx, game.SessionID)

	status, err := e.Status(game.SessionID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Day != 3 {
		t.Fatalf("day = %d, want 3", status.Day)
	}
	if len(status.Alive) != 4 || len(status.Dead) != 2 {
		t.Fatalf("alive/dead = %d/%d, want 4/2", len(status.Alive), len(status.Dead))
	}
}
