// Command duskvale is the main entry point for the Duskvale game server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"golang.org/x/sync/errgroup"

	"github.com/duskvale/duskvale/internal/config"
	"github.com/duskvale/duskvale/internal/engine"
	"github.com/duskvale/duskvale/internal/health"
	"github.com/duskvale/duskvale/internal/journal"
	"github.com/duskvale/duskvale/internal/observe"
	"github.com/duskvale/duskvale/internal/resilience"
	"github.com/duskvale/duskvale/internal/server"
	"github.com/duskvale/duskvale/internal/session"
	"github.com/duskvale/duskvale/pkg/provider/llm"
	"github.com/duskvale/duskvale/pkg/provider/llm/anyllm"
	oaillm "github.com/duskvale/duskvale/pkg/provider/llm/openai"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "duskvale: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "duskvale: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("duskvale starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	provider, configured, err := buildLLMProvider(cfg, reg)
	if err != nil {
		slog.Error("failed to build model backend", "err", err)
		return 1
	}

	// ── Journal backend ───────────────────────────────────────────────────────
	js, closeJournal, err := buildJournal(ctx, cfg)
	if err != nil {
		slog.Error("failed to open journal backend", "err", err)
		return 1
	}
	defer closeJournal()

	// ── Engine and HTTP server ────────────────────────────────────────────────
	hub := server.NewJournalHub()

	engOpts := []engine.Option{engine.WithNotifier(hub)}
	if cfg.Game.CallTimeout > 0 {
		engOpts = append(engOpts, engine.WithCallTimeout(cfg.Game.CallTimeout))
	}
	eng := engine.New(session.NewStore(), js, provider, engOpts...)

	checks := health.New(
		health.JournalReadable(js),
		health.ProviderConfigured(configured),
	)
	srv := server.New(eng,
		server.WithHealth(checks),
		server.WithJournalHub(hub),
		server.WithCORSOrigin(cfg.Server.CORSOrigin),
	)

	httpSrv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ── Startup summary ───────────────────────────────────────────────────────
	printStartupSummary(cfg, configured)
	slog.Info("server ready — press Ctrl+C to shut down")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", cfg.Server.ListenAddr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received, stopping…")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires all built-in model backend factories into reg.
func registerBuiltinProviders(reg *config.Registry) {
	// openai uses the native SDK client so the request path supports BaseURL
	// gateways like OpenRouter without any-llm indirection.
	reg.RegisterLLM("openai", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []oaillm.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaillm.WithBaseURL(entry.BaseURL))
		}
		return oaillm.New(entry.APIKey, entry.Model, opts...)
	})

	// anthropic, gemini, deepseek, mistral, groq, llamacpp, llamafile all
	// share the same pattern: optional APIKey + optional BaseURL.
	for _, providerName := range []string{
		"anthropic", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile",
	} {
		reg.RegisterLLM(providerName, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterLLM("ollama", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New("ollama", entry.Model, opts...)
	})
}

// buildLLMProvider instantiates the primary backend and its fallback chain.
// With no backend configured it returns a provider that always errors, which
// keeps the engine on the canned-reply path; configured reports which case
// applies so the readiness probe can tell the difference.
func buildLLMProvider(cfg *config.Config, reg *config.Registry) (p llm.Provider, configured bool, err error) {
	name := cfg.Providers.LLM.Name
	if name == "" {
		slog.Warn("no model backend configured; characters will only serve canned replies")
		return unconfiguredProvider{}, false, nil
	}

	primary, err := reg.CreateLLM(cfg.Providers.LLM)
	if err != nil {
		return nil, false, fmt.Errorf("create llm provider %q: %w", name, err)
	}
	slog.Info("provider created", "kind", "llm", "name", name, "model", cfg.Providers.LLM.Model)

	fb := resilience.NewLLMFallback(primary, name, resilience.FallbackConfig{})
	for _, entry := range cfg.Providers.LLMFallbacks {
		fallback, err := reg.CreateLLM(entry)
		if err != nil {
			return nil, false, fmt.Errorf("create llm fallback %q: %w", entry.Name, err)
		}
		fb.AddFallback(entry.Name, fallback)
		slog.Info("provider created", "kind", "llm-fallback", "name", entry.Name, "model", entry.Model)
	}
	return fb, true, nil
}

// unconfiguredProvider fails every call so the engine degrades into its
// canned replies. Used when no backend is configured at all.
type unconfiguredProvider struct{}

var errNoBackend = errors.New("no model backend configured")

func (unconfiguredProvider) Complete(context.Context, llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return nil, errNoBackend
}

func (unconfiguredProvider) CountTokens([]llm.Message) (int, error) { return 0, errNoBackend }

func (unconfiguredProvider) Capabilities() llm.ModelCapabilities { return llm.ModelCapabilities{} }

// ── Journal wiring ────────────────────────────────────────────────────────────

// buildJournal opens the configured journal backend: PostgreSQL when a DSN is
// set, a flat text file otherwise.
func buildJournal(ctx context.Context, cfg *config.Config) (js journal.Store, closeFn func(), err error) {
	if dsn := cfg.Journal.PostgresDSN; dsn != "" {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		store := journal.NewPostgresStore(pool)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate journal schema: %w", err)
		}
		slog.Info("journal backend ready", "backend", "postgres")
		return store, pool.Close, nil
	}

	slog.Info("journal backend ready", "backend", "file", "path", cfg.Journal.Path)
	return journal.NewFileStore(cfg.Journal.Path), func() {}, nil
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config, llmConfigured bool) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║         Duskvale — startup summary    ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	if llmConfigured {
		printSummaryRow("Model backend", cfg.Providers.LLM.Name+" / "+cfg.Providers.LLM.Model)
	} else {
		printSummaryRow("Model backend", "(canned replies)")
	}
	printSummaryRow("Fallbacks", fmt.Sprintf("%d", len(cfg.Providers.LLMFallbacks)))
	if cfg.Journal.PostgresDSN != "" {
		printSummaryRow("Journal", "postgres")
	} else {
		printSummaryRow("Journal", cfg.Journal.Path)
	}
	printSummaryRow("Listen addr", cfg.Server.ListenAddr)
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printSummaryRow(kind, value string) {
	if value == "" {
		value = "(not configured)"
	}
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-13s   : %-19s ║\n", kind, value)
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
