// Package pipeline runs the per-word processing tasks: filter, cascade
// decision, cooldown gate, injection, and persistence.
//
// Every completed word is handed off fire-and-forget: the segmenter's
// listener goroutine never blocks on processing. A weighted semaphore caps
// in-flight tasks; words arriving beyond the cap are dropped (and counted),
// never queued — a stale correction is worse than none.
package pipeline

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/SimplyKushal/intelligent-autocorrect-system/internal/cascade"
	"github.com/SimplyKushal/intelligent-autocorrect-system/internal/keyboard"
	"github.com/SimplyKushal/intelligent-autocorrect-system/internal/observe"
	"github.com/SimplyKushal/intelligent-autocorrect-system/internal/ratelimit"
	"github.com/SimplyKushal/intelligent-autocorrect-system/internal/store"
	"github.com/SimplyKushal/intelligent-autocorrect-system/pkg/inject"
	"github.com/SimplyKushal/intelligent-autocorrect-system/pkg/types"
)

// wordTimeout bounds a single per-word task, including suggester round trips.
const wordTimeout = 10 * time.Second

// Recorder persists applied corrections. The cached store satisfies this.
type Recorder interface {
	LogCorrection(ctx context.Context, rec store.CorrectionRecord) error
}

// Settings are the hot-updatable pipeline knobs.
type Settings struct {
	// Tone and Formality are attached to every cascade request.
	Tone      cascade.Tone
	Formality cascade.Formality

	// ProcessingDelay is slept at the head of each task, giving the user a
	// moment to self-correct before the system does.
	ProcessingDelay time.Duration
}

// Option is a functional option for configuring a [Pipeline].
type Option func(*Pipeline)

// WithMetrics overrides the metrics instance. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithRecorder attaches a correction history recorder. Default: none.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// Pipeline owns the per-word task lifecycle. Safe for concurrent use.
type Pipeline struct {
	filter   *keyboard.Filter
	cascade  *cascade.Cascade
	guard    *ratelimit.Guard
	injector inject.Injector
	recorder Recorder
	metrics  *observe.Metrics

	sem *semaphore.Weighted
	wg  sync.WaitGroup

	mu       sync.RWMutex
	settings Settings
}

// New creates a pipeline. maxConcurrent caps in-flight per-word tasks and
// must be positive.
func New(filter *keyboard.Filter, casc *cascade.Cascade, guard *ratelimit.Guard, injector inject.Injector, maxConcurrent int, settings Settings, opts ...Option) *Pipeline {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	p := &Pipeline{
		filter:   filter,
		cascade:  casc,
		guard:    guard,
		injector: injector,
		sem:      semaphore.NewWeighted(int64(maxConcurrent)),
		settings: settings,
	}
	for _, o := range opts {
		o(p)
	}
	if p.metrics == nil {
		p.metrics = observe.DefaultMetrics()
	}
	return p
}

// UpdateSettings applies new knobs. Takes effect on the next word.
func (p *Pipeline) UpdateSettings(s Settings) {
	p.mu.Lock()
	p.settings = s
	p.mu.Unlock()
}

// Process handles one completed word, fire-and-forget. It never blocks: when
// the concurrency cap is reached the word is dropped and counted. Safe to
// call from the segmenter's emit callback.
func (p *Pipeline) Process(w types.CompletedWord) {
	ctx := context.Background()
	p.metrics.RecordSegmentedWord(ctx, w.Trigger.String())

	if !p.sem.TryAcquire(1) {
		p.metrics.DroppedTasks.Add(ctx, 1)
		slog.Debug("pipeline: concurrency cap reached, dropping word", "word", w.Text)
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)
		defer func() {
			// A panic in one word task must not take the process down.
			if r := recover(); r != nil {
				slog.Error("pipeline: word task panicked",
					"word", w.Text,
					"panic", r,
					"stack", string(debug.Stack()),
				)
			}
		}()

		p.metrics.ActiveTasks.Add(ctx, 1)
		defer p.metrics.ActiveTasks.Add(ctx, -1)

		p.processWord(w)
	}()
}

// Wait blocks until all in-flight word tasks finish. Used during shutdown
// and by tests.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

func (p *Pipeline) processWord(w types.CompletedWord) {
	p.mu.RLock()
	settings := p.settings
	p.mu.RUnlock()

	if settings.ProcessingDelay > 0 {
		time.Sleep(settings.ProcessingDelay)
	}

	ctx, cancel := context.WithTimeout(context.Background(), wordTimeout)
	defer cancel()

	ctx, span := observe.StartSpan(ctx, "pipeline.word")
	defer span.End()

	if !p.filter.ShouldProcess(w.Text) {
		p.metrics.RecordFilteredWord(ctx, "filter")
		return
	}

	start := time.Now()
	correction := p.cascade.Decide(ctx, cascade.Request{
		Word:      w.Text,
		Context:   w.Context,
		Tone:      settings.Tone,
		Formality: settings.Formality,
	})
	p.metrics.CascadeDuration.Record(ctx, time.Since(start).Seconds())

	if correction == nil || correction.CorrectedText == w.Text {
		return
	}

	if !p.guard.Allow() {
		p.metrics.CorrectionsRateLimited.Add(ctx, 1)
		observe.Logger(ctx).Debug("pipeline: correction suppressed by cooldown",
			"word", w.Text,
			"corrected", correction.CorrectedText,
		)
		return
	}

	applied, err := p.injector.Replace(ctx, w.Text, correction.CorrectedText)
	if err != nil || !applied {
		p.metrics.InjectionFailures.Add(ctx, 1)
		observe.Logger(ctx).Warn("pipeline: injection failed",
			"word", w.Text,
			"corrected", correction.CorrectedText,
			"err", err,
		)
		return
	}

	p.metrics.RecordCorrectionApplied(ctx, correction.Source.String())
	observe.Logger(ctx).Info("pipeline: correction applied",
		"word", w.Text,
		"corrected", correction.CorrectedText,
		"source", correction.Source.String(),
		"confidence", correction.Confidence,
	)

	if p.recorder != nil {
		rec := store.CorrectionRecord{
			Original:   w.Text,
			Corrected:  correction.CorrectedText,
			Source:     correction.Source.String(),
			Confidence: correction.Confidence,
			Context:    w.Context,
			Timestamp:  time.Now(),
		}
		if err := p.recorder.LogCorrection(ctx, rec); err != nil {
			observe.Logger(ctx).Warn("pipeline: failed to persist correction", "err", err)
		}
	}
}
