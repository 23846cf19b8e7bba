// Command autocorrectd runs the real-time autocorrection service.
//
// Key events are read from stdin in this build (each rune is treated as a
// key press; spaces and punctuation act as word boundaries), corrections are
// written to the structured log, and diagnostics are served over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/SimplyKushal/intelligent-autocorrect-system/internal/app"
	"github.com/SimplyKushal/intelligent-autocorrect-system/internal/config"
	"github.com/SimplyKushal/intelligent-autocorrect-system/internal/observe"
	"github.com/SimplyKushal/intelligent-autocorrect-system/pkg/inject"
	"github.com/SimplyKushal/intelligent-autocorrect-system/pkg/source"
	"github.com/SimplyKushal/intelligent-autocorrect-system/pkg/suggest"
	"github.com/SimplyKushal/intelligent-autocorrect-system/pkg/suggest/anyllm"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "autocorrectd: %v\n", err)
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("autocorrectd starting",
		"config", *configPath,
		"log_level", cfg.Server.LogLevel,
		"store_driver", cfg.Store.Driver,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "autocorrectd",
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Suggester (optional) ──────────────────────────────────────────────────
	suggester, err := buildSuggester(cfg)
	if err != nil {
		slog.Error("failed to build suggester", "err", err)
		return 1
	}

	// ── Application ───────────────────────────────────────────────────────────
	application, err := app.New(ctx, cfg, app.Deps{
		Source:    source.NewReader(os.Stdin),
		Injector:  &inject.Log{},
		Suggester: suggester,
	})
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}

	// ── Config hot reload ─────────────────────────────────────────────────────
	watcher, err := config.NewWatcher(*configPath, application.ApplyConfig)
	if err != nil {
		slog.Warn("config watcher unavailable, hot reload disabled", "err", err)
	} else {
		defer watcher.Stop()
	}

	slog.Info("monitoring started — press Ctrl+C to shut down")

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	slog.Info("stopping…")
	if err := application.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// loadConfig loads the YAML config, falling back to built-in defaults when
// the file does not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Info("config file not found, using defaults", "path", path)
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// buildSuggester creates the LLM suggester when one is configured and ML
// corrections are enabled. Returns nil (no error) otherwise.
func buildSuggester(cfg *config.Config) (suggest.Suggester, error) {
	if cfg.Suggester.Provider == "" || !cfg.Corrector.UseMLCorrections {
		return nil, nil
	}

	var opts []anyllmlib.Option
	if cfg.Suggester.APIKey != "" {
		opts = append(opts, anyllmlib.WithAPIKey(cfg.Suggester.APIKey))
	}
	if cfg.Suggester.BaseURL != "" {
		opts = append(opts, anyllmlib.WithBaseURL(cfg.Suggester.BaseURL))
	}

	s, err := anyllm.New(cfg.Suggester.Provider, cfg.Suggester.Model, opts)
	if err != nil {
		return nil, err
	}
	slog.Info("suggester created", "provider", cfg.Suggester.Provider, "model", cfg.Suggester.Model)
	return s, nil
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
