// Package app wires the autocorrect subsystems together: persistence,
// correction cascade, rate limiting, the per-word pipeline, the word
// segmenter, and the diagnostics HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SimplyKushal/intelligent-autocorrect-system/internal/cascade"
	"github.com/SimplyKushal/intelligent-autocorrect-system/internal/config"
	"github.com/SimplyKushal/intelligent-autocorrect-system/internal/health"
	"github.com/SimplyKushal/intelligent-autocorrect-system/internal/keyboard"
	"github.com/SimplyKushal/intelligent-autocorrect-system/internal/pipeline"
	"github.com/SimplyKushal/intelligent-autocorrect-system/internal/ratelimit"
	"github.com/SimplyKushal/intelligent-autocorrect-system/internal/store"
	"github.com/SimplyKushal/intelligent-autocorrect-system/pkg/inject"
	"github.com/SimplyKushal/intelligent-autocorrect-system/pkg/source"
	"github.com/SimplyKushal/intelligent-autocorrect-system/pkg/suggest"
)

// httpReadTimeout bounds diagnostics request reads.
const httpReadTimeout = 10 * time.Second

// Deps are the externally supplied capabilities of the application.
type Deps struct {
	// Source delivers the key-event stream. Required.
	Source source.KeySource

	// Injector applies corrections. Required.
	Injector inject.Injector

	// Suggester is the optional ML backend. Nil disables the ML stage.
	Suggester suggest.Suggester
}

// App is the assembled autocorrect service.
type App struct {
	cfg *config.Config

	store     *store.CachedStore
	cascade   *cascade.Cascade
	guard     *ratelimit.Guard
	pipeline  *pipeline.Pipeline
	segmenter *keyboard.Segmenter
	src       source.KeySource

	httpSrv *http.Server
}

// New assembles the application from cfg and deps. The persistence backend
// is opened here; call [App.Shutdown] to release it.
func New(ctx context.Context, cfg *config.Config, deps Deps) (*App, error) {
	if deps.Source == nil {
		return nil, fmt.Errorf("app: key-event source is required")
	}
	if deps.Injector == nil {
		return nil, fmt.Errorf("app: injector is required")
	}

	backend, err := openBackend(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	cached := store.NewCached(ctx, backend)

	cascadeCfg := cascade.Config{
		UseML:                 cfg.Corrector.UseMLCorrections,
		MLConfidenceThreshold: cfg.Corrector.MLConfidenceThreshold,
	}
	var cascadeOpts []cascade.Option
	cascadeOpts = append(cascadeOpts, cascade.WithConfig(cascadeCfg))
	if deps.Suggester != nil {
		cascadeOpts = append(cascadeOpts, cascade.WithSuggester(deps.Suggester))
	}
	casc := cascade.New(cached, cached, cascadeOpts...)

	guard := ratelimit.New(time.Duration(cfg.Corrector.CorrectionCooldownMs) * time.Millisecond)

	filter := keyboard.NewFilter(cached)
	pipe := pipeline.New(filter, casc, guard, deps.Injector,
		cfg.Input.MaxConcurrentWords,
		pipeline.Settings{
			Tone:            cfg.Corrector.DefaultTone,
			Formality:       cfg.Corrector.DefaultFormality,
			ProcessingDelay: time.Duration(cfg.Input.ProcessingDelayMs) * time.Millisecond,
		},
		pipeline.WithRecorder(cached),
	)

	seg := keyboard.NewSegmenter(pipe.Process,
		keyboard.WithThrottle(time.Duration(cfg.Input.TypingSpeedThresholdMs)*time.Millisecond),
	)

	a := &App{
		cfg:       cfg,
		store:     cached,
		cascade:   casc,
		guard:     guard,
		pipeline:  pipe,
		segmenter: seg,
		src:       deps.Source,
	}

	if cfg.Server.MetricsAddr != "" {
		a.httpSrv = &http.Server{
			Addr:        cfg.Server.MetricsAddr,
			Handler:     a.diagnosticsMux(),
			ReadTimeout: httpReadTimeout,
		}
	}

	return a, nil
}

// openBackend creates the persistence backend named by cfg.
func openBackend(ctx context.Context, cfg config.StoreConfig) (store.Backend, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return store.OpenPostgres(ctx, cfg.PostgresDSN)
	case config.DriverSQLite, "":
		return store.OpenSQLite(ctx, cfg.Path)
	}
	return nil, fmt.Errorf("app: unknown store driver %q", cfg.Driver)
}

// diagnosticsMux builds the /metrics, /healthz, /readyz, and /statsz routes.
func (a *App) diagnosticsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())

	h := health.New(a.store, a.segmenter, health.Checker{
		Name: "store",
		Check: func(ctx context.Context) error {
			_, err := a.store.Stats(ctx)
			return err
		},
	})
	h.Register(mux)
	return mux
}

// Store exposes the cached store for management surfaces (adding personal
// corrections and ignored words at runtime).
func (a *App) Store() *store.CachedStore {
	return a.store
}

// Segmenter exposes the segmenter for pause/resume control.
func (a *App) Segmenter() *keyboard.Segmenter {
	return a.segmenter
}

// Run starts the segmenter, the diagnostics server, and the key-event
// source, then blocks until the source ends or ctx is cancelled. A source
// that ends normally (replay exhausted) returns nil after in-flight words
// drain.
func (a *App) Run(ctx context.Context) error {
	a.segmenter.Start()

	if a.httpSrv != nil {
		go func() {
			slog.Info("app: diagnostics server listening", "addr", a.httpSrv.Addr)
			if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("app: diagnostics server error", "err", err)
			}
		}()
	}

	err := a.src.Run(ctx, a.segmenter.OnEvent)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("app: key-event source: %w", err)
	}

	// Let in-flight word tasks drain before reporting completion.
	a.pipeline.Wait()
	return nil
}

// ApplyConfig is the config-watcher callback: it forwards the hot-updatable
// settings to the running subsystems. Store driver and suggester changes
// require a restart and are ignored here.
func (a *App) ApplyConfig(_, next *config.Config) {
	a.cascade.UpdateConfig(cascade.Config{
		UseML:                 next.Corrector.UseMLCorrections,
		MLConfidenceThreshold: next.Corrector.MLConfidenceThreshold,
	})
	a.pipeline.UpdateSettings(pipeline.Settings{
		Tone:            next.Corrector.DefaultTone,
		Formality:       next.Corrector.DefaultFormality,
		ProcessingDelay: time.Duration(next.Input.ProcessingDelayMs) * time.Millisecond,
	})
	a.guard.SetCooldown(time.Duration(next.Corrector.CorrectionCooldownMs) * time.Millisecond)
	a.segmenter.SetThrottle(time.Duration(next.Input.TypingSpeedThresholdMs) * time.Millisecond)

	slog.Info("app: configuration applied",
		"tone", next.Corrector.DefaultTone,
		"formality", next.Corrector.DefaultFormality,
		"use_ml", next.Corrector.UseMLCorrections,
	)
}

// Shutdown stops the segmenter, drains in-flight word tasks, and releases
// the HTTP server and store.
func (a *App) Shutdown(ctx context.Context) error {
	a.segmenter.Stop()
	a.pipeline.Wait()

	var errs []error
	if a.httpSrv != nil {
		if err := a.httpSrv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("app: http shutdown: %w", err))
		}
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("app: store close: %w", err))
	}
	return errors.Join(errs...)
}
