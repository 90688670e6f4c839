package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/tallyvox/tallyvox/internal/health"
)

// Run executes the interactive utterance loop, reading one utterance per
// line from in and writing replies to out. When the config names a listen
// address, the Prometheus /metrics endpoint is served alongside. Run
// returns when ctx is cancelled or in is exhausted.
func (a *App) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	if addr := a.cfg.Server.ListenAddr; addr != "" {
		srv := a.metricsServer(addr)
		g.Go(func() error {
			slog.Info("app: metrics endpoint listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("app: metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer cancel()
		return a.utteranceLoop(ctx, in, out)
	})

	return g.Wait()
}

// utteranceLoop processes lines from in until EOF or cancellation.
func (a *App) utteranceLoop(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}

		reply, err := a.HandleTranscript(ctx, line)
		if err != nil {
			slog.Error("app: utterance failed", "err", err)
			fmt.Fprintln(out, "Sorry, something went wrong. Try again.")
			continue
		}
		fmt.Fprintln(out, reply)

		a.speakReply(ctx, reply, out)
	}
	return scanner.Err()
}

// metricsServer builds the HTTP server that exposes the Prometheus
// registry the OTel exporter feeds, plus liveness and readiness probes.
func (a *App) metricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	health.New(health.StoreChecker(a.store)).Register(mux)
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// HandleAudio transcribes one encoded audio clip and runs the transcript
// through the dialogue manager. The contact directory is passed as
// vocabulary hints so proper names survive transcription.
func (a *App) HandleAudio(ctx context.Context, audio io.Reader) (string, error) {
	if a.transcriber == nil {
		return "", errors.New("app: no stt provider configured")
	}

	hints, err := a.directory.Names(ctx)
	if err != nil {
		return "", fmt.Errorf("app: list contacts: %w", err)
	}

	tr, err := a.transcriber.Transcribe(ctx, audio, hints)
	if err != nil {
		return "", fmt.Errorf("app: transcribe: %w", err)
	}
	slog.Debug("app: transcribed utterance", "text", tr.Text, "confidence", tr.Confidence)

	return a.HandleTranscript(ctx, tr.Text)
}

// Synthesize renders reply text as audio through the configured speaker.
func (a *App) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	if a.speaker == nil {
		return nil, errors.New("app: no tts provider configured")
	}
	return a.speaker.Synthesize(ctx, text, a.cfg.Speech.TTS.Voice)
}

// speakReply synthesises the reply when a speaker is configured, draining
// the audio. Playback is delegated to whatever consumes out; synthesis
// failures only log.
func (a *App) speakReply(ctx context.Context, reply string, out io.Writer) {
	if a.speaker == nil || reply == "" {
		return
	}
	audio, err := a.Synthesize(ctx, reply)
	if err != nil {
		slog.Warn("app: synthesis failed", "err", err)
		return
	}
	defer audio.Close()
	if w, ok := out.(interface{ WriteAudio(io.Reader) error }); ok {
		if err := w.WriteAudio(audio); err != nil {
			slog.Warn("app: audio output failed", "err", err)
		}
		return
	}
	// No audio sink attached; drain so the provider stream completes.
	if _, err := io.Copy(io.Discard, audio); err != nil {
		slog.Warn("app: audio drain failed", "err", err)
	}
}

// Shutdown releases all resources acquired in New, newest first. Safe to
// call more than once.
func (a *App) Shutdown(ctx context.Context) error {
	var err error
	a.stopOnce.Do(func() {
		var errs []error
		for i := len(a.closers) - 1; i >= 0; i-- {
			if e := a.closers[i](ctx); e != nil {
				errs = append(errs, e)
			}
		}
		err = errors.Join(errs...)
		slog.Info("app: shutdown complete")
	})
	return err
}
