// Package app wires all tallyvox subsystems into a running application.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run executes the utterance loop and the metrics endpoint, and
// Shutdown tears everything down in order.
//
// For testing, inject mock implementations via functional options
// (WithStore, WithDirectory, WithTranscriber, etc.). When an option is not
// provided, New creates real implementations from the config.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallyvox/tallyvox/internal/config"
	"github.com/tallyvox/tallyvox/internal/contacts"
	"github.com/tallyvox/tallyvox/internal/dialogue"
	"github.com/tallyvox/tallyvox/internal/ledger"
	"github.com/tallyvox/tallyvox/internal/nlu"
	"github.com/tallyvox/tallyvox/internal/observe"
	"github.com/tallyvox/tallyvox/internal/resilience"
	"github.com/tallyvox/tallyvox/internal/resolve"
	"github.com/tallyvox/tallyvox/pkg/money"
	"github.com/tallyvox/tallyvox/pkg/provider/stt"
	sttopenai "github.com/tallyvox/tallyvox/pkg/provider/stt/openai"
	"github.com/tallyvox/tallyvox/pkg/provider/tts"
	ttsopenai "github.com/tallyvox/tallyvox/pkg/provider/tts/openai"
)

// App owns all subsystem lifetimes for the tallyvox assistant.
type App struct {
	cfg *config.Config

	store       ledger.Store
	directory   contacts.Directory
	manager     *dialogue.Manager
	session     *dialogue.Session
	transcriber stt.Transcriber
	speaker     tts.Speaker
	metrics     *observe.Metrics

	// closers are called in reverse order during Shutdown.
	closers []func(context.Context) error

	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithStore injects a ledger store instead of creating one from config.
func WithStore(s ledger.Store) Option {
	return func(a *App) { a.store = s }
}

// WithDirectory injects a contact directory instead of loading one from config.
func WithDirectory(d contacts.Directory) Option {
	return func(a *App) { a.directory = d }
}

// WithTranscriber injects a speech-to-text backend.
func WithTranscriber(t stt.Transcriber) Option {
	return func(a *App) { a.transcriber = t }
}

// WithSpeaker injects a text-to-speech backend.
func WithSpeaker(s tts.Speaker) Option {
	return func(a *App) { a.speaker = s }
}

// WithMetrics injects a metrics instance instead of the package default.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// New creates an App by wiring all subsystems together: ledger store,
// contact directory, transcript corrector, routing pipeline, and the
// dialogue manager. Use Option functions to inject test doubles.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	if a.store == nil {
		store, err := a.buildStore(ctx)
		if err != nil {
			return nil, err
		}
		a.store = store
	}

	if a.directory == nil {
		dir, err := buildDirectory(cfg.Contacts)
		if err != nil {
			return nil, err
		}
		a.directory = dir
	}

	if a.transcriber == nil && cfg.Speech.STT.Name == "openai" {
		t, err := a.buildTranscriber(cfg.Speech.STT)
		if err != nil {
			return nil, err
		}
		a.transcriber = t
		slog.Info("app: stt provider created", "name", cfg.Speech.STT.Name, "model", cfg.Speech.STT.Model)
	}
	if a.speaker == nil && cfg.Speech.TTS.Name == "openai" {
		s, err := a.buildSpeaker(cfg.Speech.TTS)
		if err != nil {
			return nil, err
		}
		a.speaker = s
		slog.Info("app: tts provider created", "name", cfg.Speech.TTS.Name, "model", cfg.Speech.TTS.Model)
	}

	router := nlu.NewRouter(nlu.RouterConfig{
		CloudThreshold:   cfg.Understanding.CloudThreshold,
		FallbackMinWords: cfg.Understanding.FallbackMinWords,
		Metrics:          a.metrics,
	})

	var corrector *resolve.Corrector
	if cfg.Understanding.Correction.Enabled {
		corrector = resolve.NewCorrector(
			resolve.WithPhoneticThreshold(cfg.Understanding.Correction.PhoneticThreshold),
			resolve.WithFuzzyThreshold(cfg.Understanding.Correction.FuzzyThreshold),
		)
	}

	manager, err := dialogue.NewManager(dialogue.Config{
		Router:          router,
		Directory:       a.directory,
		Store:           a.store,
		Corrector:       corrector,
		MaxClarifyTurns: cfg.Understanding.MaxClarifyTurns,
		Metrics:         a.metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("app: build dialogue manager: %w", err)
	}
	a.manager = manager
	a.session = dialogue.NewSession()

	return a, nil
}

// buildStore creates the ledger store selected by the config.
func (a *App) buildStore(ctx context.Context) (ledger.Store, error) {
	switch a.cfg.Ledger.Backend {
	case config.LedgerPostgres:
		pool, err := pgxpool.New(ctx, a.cfg.Ledger.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("app: connect postgres: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error {
			pool.Close()
			return nil
		})

		store := ledger.NewPostgresStore(pool)
		if err := store.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("app: migrate ledger schema: %w", err)
		}
		slog.Info("app: ledger store ready", "backend", "postgres")
		return store, nil
	default:
		slog.Info("app: ledger store ready", "backend", "memory")
		return ledger.NewMemStore(), nil
	}
}

// buildDirectory loads the contact directory from the config: a YAML file
// when one is named, otherwise the inline name list.
func buildDirectory(cfg config.ContactsConfig) (contacts.Directory, error) {
	if cfg.File != "" {
		dir, err := contacts.LoadFile(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("app: load contacts: %w", err)
		}
		return dir, nil
	}
	return contacts.NewStatic(cfg.Names), nil
}

// buildTranscriber wraps the cloud backend in a failover group so a flapping
// API trips the circuit breaker instead of failing every utterance.
func (a *App) buildTranscriber(entry config.ProviderEntry) (stt.Transcriber, error) {
	var opts []sttopenai.Option
	if entry.BaseURL != "" {
		opts = append(opts, sttopenai.WithBaseURL(entry.BaseURL))
	}
	t, err := sttopenai.New(entry.APIKey, entry.Model, opts...)
	if err != nil {
		return nil, fmt.Errorf("app: build stt provider: %w", err)
	}
	return resilience.NewTranscriberFallback(t, entry.Name, a.fallbackConfig()), nil
}

func (a *App) buildSpeaker(entry config.ProviderEntry) (tts.Speaker, error) {
	var opts []ttsopenai.Option
	if entry.BaseURL != "" {
		opts = append(opts, ttsopenai.WithBaseURL(entry.BaseURL))
	}
	s, err := ttsopenai.New(entry.APIKey, entry.Model, opts...)
	if err != nil {
		return nil, fmt.Errorf("app: build tts provider: %w", err)
	}
	return resilience.NewSpeakerFallback(s, entry.Name, a.fallbackConfig()), nil
}

// fallbackConfig is the breaker configuration shared by the speech failover
// groups, reporting transitions through the app metrics.
func (a *App) fallbackConfig() resilience.FallbackConfig {
	return resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{Metrics: a.metrics},
	}
}

// HandleTranscript runs one utterance through the dialogue manager and
// persists any finalized command. It returns the user-facing reply text.
func (a *App) HandleTranscript(ctx context.Context, transcript string) (string, error) {
	resp, err := a.manager.HandleUtterance(ctx, a.session, transcript)
	if err != nil {
		return "", err
	}

	switch resp.Kind {
	case dialogue.KindAdded:
		entry := ledger.Entry{
			Creditor: resp.Command.Creditor,
			Debtor:   resp.Command.Debtor,
			Amount:   resp.Command.Amount,
			Note:     resp.Command.Note,
		}
		if _, err := a.store.Add(ctx, entry); err != nil {
			return "", fmt.Errorf("app: record entry: %w", err)
		}
		return resp.Message, nil

	case dialogue.KindSettle:
		net, err := a.store.Settle(ctx, resp.SettleTarget)
		if err != nil {
			return "", fmt.Errorf("app: settle %q: %w", resp.SettleTarget, err)
		}
		return settledMessage(resp.SettleTarget, net), nil

	case dialogue.KindAsk:
		return resp.Question, nil

	default:
		return resp.Message, nil
	}
}

// settledMessage renders the confirmation for a completed settlement.
func settledMessage(target string, net money.Amount) string {
	switch {
	case net > 0:
		return fmt.Sprintf("Settled up with %s: they owed you %s.", target, net.String())
	case net < 0:
		return fmt.Sprintf("Settled up with %s: you owed them %s.", target, net.Neg().String())
	default:
		return fmt.Sprintf("Settled up with %s.", target)
	}
}
