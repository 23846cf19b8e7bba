// Package keyboard turns the raw key-event stream delivered by an external
// capture mechanism into discrete completed-word units.
//
// The [Segmenter] is a two-state machine (idle / accumulating) fed one event
// at a time by a single listener goroutine. On every word boundary it emits
// at most one [types.CompletedWord] — cleaned, trigger-tagged, and enriched
// with a trailing-word context window — through a caller-supplied callback.
// The callback runs on the listener goroutine and must not block; the
// processing pipeline spawns its own per-word tasks.
package keyboard

import (
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/SimplyKushal/intelligent-autocorrect-system/pkg/types"
)

// defaultThrottle is the minimum interval between accepted key events.
// Events arriving faster are treated as bounce/duplicate input and dropped
// before they reach the state machine.
const defaultThrottle = 50 * time.Millisecond

// separatorRunes are the characters that terminate the pending word when they
// arrive as ordinary character events.
var separatorRunes = map[rune]struct{}{
	' ': {}, '.': {}, ',': {}, '!': {}, '?': {}, ';': {}, ':': {},
	'\n': {}, '\t': {},
}

// sentenceEnders is the subset of separators that map to the sentence-end
// trigger.
var sentenceEnders = map[rune]struct{}{'.': {}, '!': {}, '?': {}}

// Option is a functional option for configuring a [Segmenter].
type Option func(*Segmenter)

// WithThrottle sets the minimum inter-key interval. Events arriving within
// this window of the previous accepted event are dropped. Default: 50 ms.
func WithThrottle(d time.Duration) Option {
	return func(s *Segmenter) {
		if d >= 0 {
			s.throttle = d
		}
	}
}

// WithClock overrides the time source used for throttling. Tests use this to
// drive the throttle window deterministically.
func WithClock(now func() time.Time) Option {
	return func(s *Segmenter) {
		s.now = now
	}
}

// Segmenter accumulates character events into a pending word and emits a
// [types.CompletedWord] at every boundary.
//
// All methods are safe for concurrent use, but the event stream itself must
// be delivered sequentially — the external listener is the single writer of
// the pending word.
type Segmenter struct {
	emit     func(types.CompletedWord)
	throttle time.Duration
	now      func() time.Time

	mu         sync.Mutex
	pending    []rune
	lastKey    time.Time
	monitoring bool
	paused     bool

	// buffer outlives Stop/Start cycles; it is cleared only at construction.
	buffer *ContextBuffer
}

// Stats is a point-in-time snapshot of segmenter state, for diagnostics.
type Stats struct {
	PendingLength int
	ContextSize   int
	Monitoring    bool
	Paused        bool
}

// NewSegmenter creates a segmenter that delivers completed words to emit.
// The callback runs on the event-delivery goroutine and must return quickly.
func NewSegmenter(emit func(types.CompletedWord), opts ...Option) *Segmenter {
	s := &Segmenter{
		emit:     emit,
		throttle: defaultThrottle,
		now:      time.Now,
		buffer:   NewContextBuffer(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Buffer returns the segmenter's context ring buffer. The cascade reads it;
// only the segmenter writes to it.
func (s *Segmenter) Buffer() *ContextBuffer {
	return s.buffer
}

// Start begins processing events. Any pending word from a previous run is
// discarded; the context buffer is retained across Stop/Start within the
// process lifetime.
func (s *Segmenter) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = nil
	s.paused = false
	s.monitoring = true
	slog.Info("segmenter: monitoring started")
}

// Stop halts processing and clears the pending word.
func (s *Segmenter) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = nil
	s.monitoring = false
	slog.Info("segmenter: monitoring stopped")
}

// Pause puts the segmenter into silent-passthrough mode: events are still
// accepted so the live stream position is not lost, but nothing is emitted
// and the pending word is not mutated.
func (s *Segmenter) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.paused = true
	slog.Info("segmenter: monitoring paused")
}

// Resume leaves paused mode.
func (s *Segmenter) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.paused = false
	slog.Info("segmenter: monitoring resumed")
}

// SetThrottle updates the minimum inter-key interval, taking effect on the
// next event.
func (s *Segmenter) SetThrottle(d time.Duration) {
	if d < 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.throttle = d
}

// OnEvent feeds one key event to the state machine. Events delivered while
// stopped or paused are accepted without effect.
func (s *Segmenter) OnEvent(ev types.KeyEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.monitoring || s.paused {
		return
	}

	// Throttle pre-filter: bounce/duplicate suppression ahead of the state
	// machine proper.
	now := s.now()
	if s.throttle > 0 && !s.lastKey.IsZero() && now.Sub(s.lastKey) < s.throttle {
		return
	}
	s.lastKey = now

	switch ev.Kind {
	case types.EventCharacter:
		s.handleCharacter(ev.Char)
	case types.EventSeparator:
		s.boundary(triggerForSeparator(ev.Separator))
	case types.EventBackspace:
		if len(s.pending) > 0 {
			s.pending = s.pending[:len(s.pending)-1]
		}
	case types.EventOther:
		// Modifier and function keys carry no text.
	default:
		slog.Debug("segmenter: dropping malformed key event", "kind", int(ev.Kind))
	}
}

// Stats returns a snapshot of the segmenter state.
func (s *Segmenter) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		PendingLength: len(s.pending),
		ContextSize:   s.buffer.Len(),
		Monitoring:    s.monitoring,
		Paused:        s.paused,
	}
}

// handleCharacter appends a printable character to the pending word, or
// treats it as a boundary when it is a separator rune. Non-printable
// characters are malformed input: logged and dropped, state untouched.
func (s *Segmenter) handleCharacter(r rune) {
	if _, ok := separatorRunes[r]; ok {
		s.boundary(triggerForRune(r))
		return
	}
	if !unicode.IsPrint(r) {
		slog.Debug("segmenter: dropping non-printable character", "codepoint", int(r))
		return
	}
	s.pending = append(s.pending, r)
}

// boundary completes the pending word. It emits at most one CompletedWord —
// never one with empty cleaned text — and always resets the pending word.
// The context attached to the emitted word is built before the word itself
// is pushed onto the ring buffer.
func (s *Segmenter) boundary(trigger types.Trigger) {
	defer func() { s.pending = nil }()

	raw := strings.TrimSpace(string(s.pending))
	if raw == "" {
		return
	}

	cleaned := CleanWord(raw)
	if cleaned == "" {
		return
	}

	word := types.CompletedWord{
		Text:    cleaned,
		Trigger: trigger,
		Context: s.buffer.ContextString(),
	}
	s.emit(word)
	s.buffer.Push(cleaned)
}

// CleanWord strips leading and trailing non-word runes (anything outside
// letters, digits, and underscore). Interior punctuation is preserved.
func CleanWord(word string) string {
	isWordRune := func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
	}
	return strings.TrimFunc(word, func(r rune) bool { return !isWordRune(r) })
}

// triggerForRune maps a separator character to its boundary trigger.
func triggerForRune(r rune) types.Trigger {
	if _, ok := sentenceEnders[r]; ok {
		return types.TriggerSentenceEnd
	}
	switch r {
	case ' ':
		return types.TriggerSpace
	case '\n':
		return types.TriggerNewline
	case '\t':
		return types.TriggerTab
	}
	return types.TriggerPunctuation
}

// triggerForSeparator maps an explicit separator key to its boundary trigger.
func triggerForSeparator(kind types.SeparatorKind) types.Trigger {
	switch kind {
	case types.SeparatorSpace:
		return types.TriggerSpace
	case types.SeparatorTab:
		return types.TriggerTab
	case types.SeparatorNewline:
		return types.TriggerNewline
	}
	return types.TriggerPunctuation
}
