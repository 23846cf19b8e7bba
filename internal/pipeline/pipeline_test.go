package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/SimplyKushal/intelligent-autocorrect-system/internal/cascade"
	"github.com/SimplyKushal/intelligent-autocorrect-system/internal/keyboard"
	"github.com/SimplyKushal/intelligent-autocorrect-system/internal/observe"
	"github.com/SimplyKushal/intelligent-autocorrect-system/internal/ratelimit"
	"github.com/SimplyKushal/intelligent-autocorrect-system/internal/store"
	injectmock "github.com/SimplyKushal/intelligent-autocorrect-system/pkg/inject/mock"
	"github.com/SimplyKushal/intelligent-autocorrect-system/pkg/types"
)

// fakeRecorder collects logged corrections.
type fakeRecorder struct {
	mu   sync.Mutex
	recs []store.CorrectionRecord
	err  error
}

func (f *fakeRecorder) LogCorrection(_ context.Context, rec store.CorrectionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.recs = append(f.recs, rec)
	return nil
}

func (f *fakeRecorder) records() []store.CorrectionRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.CorrectionRecord, len(f.recs))
	copy(out, f.recs)
	return out
}

func testMetrics(t *testing.T) *observe.Metrics {
	t.Helper()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m
}

// newTestPipeline builds a pipeline over the real filter and cascade with a
// permissive cooldown.
func newTestPipeline(t *testing.T, inj *injectmock.Injector, opts ...Option) *Pipeline {
	t.Helper()
	opts = append([]Option{WithMetrics(testMetrics(t))}, opts...)
	return New(
		keyboard.NewFilter(nil),
		cascade.New(nil, nil),
		ratelimit.New(time.Nanosecond),
		inj,
		4,
		Settings{Tone: cascade.ToneNeutral, Formality: cascade.FormalityMedium},
		opts...,
	)
}

func TestPipeline_CorrectsCommonMisspelling(t *testing.T) {
	t.Parallel()

	inj := &injectmock.Injector{}
	rec := &fakeRecorder{}
	p := newTestPipeline(t, inj, WithRecorder(rec))

	p.Process(types.CompletedWord{Text: "teh", Trigger: types.TriggerSpace, Context: "so i typed"})
	p.Wait()

	calls := inj.Calls()
	if len(calls) != 1 {
		t.Fatalf("injector called %d times, want 1", len(calls))
	}
	if calls[0].Original != "teh" || calls[0].Corrected != "the" {
		t.Errorf("Replace(%q, %q), want (teh, the)", calls[0].Original, calls[0].Corrected)
	}

	recs := rec.records()
	if len(recs) != 1 {
		t.Fatalf("recorded %d corrections, want 1", len(recs))
	}
	if recs[0].Source != "common" || recs[0].Confidence != 0.7 {
		t.Errorf("record = %+v, want common/0.7", recs[0])
	}
	if recs[0].Context != "so i typed" {
		t.Errorf("record context = %q, want %q", recs[0].Context, "so i typed")
	}
}

func TestPipeline_CorrectWordNotTouched(t *testing.T) {
	t.Parallel()

	inj := &injectmock.Injector{}
	p := newTestPipeline(t, inj)

	p.Process(types.CompletedWord{Text: "hello", Trigger: types.TriggerSpace})
	p.Wait()

	if n := len(inj.Calls()); n != 0 {
		t.Errorf("injector called %d times for a correct word, want 0", n)
	}
}

func TestPipeline_FilteredWordSkipsCascade(t *testing.T) {
	t.Parallel()

	inj := &injectmock.Injector{}
	p := newTestPipeline(t, inj)

	// Too short for the filter, and also in the common dictionary territory.
	p.Process(types.CompletedWord{Text: "a", Trigger: types.TriggerSpace})
	p.Wait()

	if n := len(inj.Calls()); n != 0 {
		t.Errorf("injector called %d times for filtered word, want 0", n)
	}
}

func TestPipeline_CooldownSuppressesSecondCorrection(t *testing.T) {
	t.Parallel()

	inj := &injectmock.Injector{}
	p := New(
		keyboard.NewFilter(nil),
		cascade.New(nil, nil),
		ratelimit.New(time.Hour),
		inj,
		4,
		Settings{},
		WithMetrics(testMetrics(t)),
	)

	p.Process(types.CompletedWord{Text: "teh", Trigger: types.TriggerSpace})
	p.Process(types.CompletedWord{Text: "adn", Trigger: types.TriggerSpace})
	p.Wait()

	if n := len(inj.Calls()); n != 1 {
		t.Errorf("injector called %d times, want 1 (second correction in cooldown)", n)
	}
}

func TestPipeline_ConcurrencyCapDropsExcessWords(t *testing.T) {
	t.Parallel()

	inj := &injectmock.Injector{}
	p := New(
		keyboard.NewFilter(nil),
		cascade.New(nil, nil),
		ratelimit.New(time.Nanosecond),
		inj,
		1,
		Settings{ProcessingDelay: 100 * time.Millisecond},
		WithMetrics(testMetrics(t)),
	)

	p.Process(types.CompletedWord{Text: "teh", Trigger: types.TriggerSpace})
	p.Process(types.CompletedWord{Text: "adn", Trigger: types.TriggerSpace})
	p.Process(types.CompletedWord{Text: "taht", Trigger: types.TriggerSpace})
	p.Wait()

	if n := len(inj.Calls()); n != 1 {
		t.Errorf("injector called %d times, want 1 (excess words dropped, not queued)", n)
	}
}

func TestPipeline_InjectorErrorDoesNotRecord(t *testing.T) {
	t.Parallel()

	inj := &injectmock.Injector{Err: errors.New("focus lost")}
	rec := &fakeRecorder{}
	p := newTestPipeline(t, inj, WithRecorder(rec))

	p.Process(types.CompletedWord{Text: "teh", Trigger: types.TriggerSpace})
	p.Wait()

	if n := len(rec.records()); n != 0 {
		t.Errorf("recorded %d corrections after injection failure, want 0", n)
	}
}

func TestPipeline_RecorderErrorTolerated(t *testing.T) {
	t.Parallel()

	inj := &injectmock.Injector{}
	rec := &fakeRecorder{err: errors.New("db closed")}
	p := newTestPipeline(t, inj, WithRecorder(rec))

	p.Process(types.CompletedWord{Text: "teh", Trigger: types.TriggerSpace})
	p.Wait()

	// The injection still happened; only persistence failed.
	if n := len(inj.Calls()); n != 1 {
		t.Errorf("injector called %d times, want 1", n)
	}
}

func TestPipeline_SegmenterIntegration(t *testing.T) {
	t.Parallel()

	inj := &injectmock.Injector{}
	p := newTestPipeline(t, inj)

	seg := keyboard.NewSegmenter(p.Process, keyboard.WithThrottle(0))
	seg.Start()
	for _, r := range "i teh " {
		seg.OnEvent(types.Character(r))
	}
	p.Wait()

	calls := inj.Calls()
	if len(calls) != 1 {
		t.Fatalf("injector called %d times, want 1", len(calls))
	}
	if calls[0].Corrected != "the" {
		t.Errorf("Corrected = %q, want the", calls[0].Corrected)
	}
}

func TestPipeline_UpdateSettingsChangesTone(t *testing.T) {
	t.Parallel()

	inj := &injectmock.Injector{}
	p := newTestPipeline(t, inj)

	p.UpdateSettings(Settings{Tone: cascade.ToneFormal, Formality: cascade.FormalityHigh})
	p.Process(types.CompletedWord{Text: "gonna", Trigger: types.TriggerSpace, Context: "i believe that we"})
	p.Wait()

	calls := inj.Calls()
	if len(calls) != 1 {
		t.Fatalf("injector called %d times, want 1", len(calls))
	}
	if calls[0].Corrected != "going to" {
		t.Errorf("Corrected = %q, want %q", calls[0].Corrected, "going to")
	}
}
