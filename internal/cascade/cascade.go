// Package cascade implements the layered correction-decision policy at the
// heart of the autocorrect system.
//
// A completed word is resolved through an ordered list of correction sources
// with strict precedence, short-circuiting on the first hit:
//
//  1. Personal override — the user's own stored corrections (authoritative).
//  2. Common dictionary — a small fixed map of frequent misspellings.
//  3. Pattern rules — ordered rewrite rules; first rule that changes the
//     word wins.
//  4. Statistical/ML suggester — an optional injected capability; its raw
//     output is distilled to the single best candidate token by edit
//     similarity.
//  5. Rephrase heuristic — informal-contraction formalisation, applied only
//     under formal tone and high formality.
//
// Precedence is absolute: a later stage is never consulted once an earlier
// stage returns a result, regardless of confidence. Each [Correction]
// records which source produced it so callers can audit or display
// provenance.
//
// The cascade owns no persistent state. It borrows read access to the
// personal-correction and ignored-word caches and may be invoked from many
// per-word goroutines concurrently.
package cascade

import (
	"context"
	"log/slog"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/SimplyKushal/intelligent-autocorrect-system/pkg/suggest"
)

// Source identifies which cascade stage produced a correction.
type Source int

const (
	SourcePersonal Source = iota
	SourceCommon
	SourceRules
	SourceMl
	SourceRephrase
)

// String returns the lowercase name of the source, used in logs and
// persisted correction records.
func (s Source) String() string {
	switch s {
	case SourcePersonal:
		return "personal"
	case SourceCommon:
		return "common"
	case SourceRules:
		return "rules"
	case SourceMl:
		return "ml"
	case SourceRephrase:
		return "rephrase"
	}
	return "unknown"
}

// Tone is the desired writing tone.
type Tone string

const (
	ToneCasual  Tone = "casual"
	ToneNeutral Tone = "neutral"
	ToneFormal  Tone = "formal"
)

// IsValid reports whether t is a recognised tone.
func (t Tone) IsValid() bool {
	switch t {
	case ToneCasual, ToneNeutral, ToneFormal:
		return true
	}
	return false
}

// Formality is the desired formality level.
type Formality string

const (
	FormalityLow    Formality = "low"
	FormalityMedium Formality = "medium"
	FormalityHigh   Formality = "high"
)

// IsValid reports whether f is a recognised formality level.
func (f Formality) IsValid() bool {
	switch f {
	case FormalityLow, FormalityMedium, FormalityHigh:
		return true
	}
	return false
}

// Request is the input to a cascade decision.
type Request struct {
	// Word is the completed, cleaned word under consideration.
	Word string

	// Context is the space-joined trailing window of previously completed
	// words. May be empty.
	Context string

	// Tone and Formality carry the user's current writing preferences.
	Tone      Tone
	Formality Formality
}

// Correction is the outcome of a cascade decision: at most one per word.
type Correction struct {
	// CorrectedText is the replacement for the original word.
	CorrectedText string

	// Confidence is the source's confidence in this substitution (0.0–1.0).
	Confidence float64

	// Source identifies the stage that produced the correction.
	Source Source

	// Reason is a short human-readable explanation for logs and history.
	Reason string
}

// Corrector is the uniform contract every correction source satisfies.
//
// A nil *Correction with a nil error means "no match — consult the next
// stage". A non-nil error means the stage is unavailable; the cascade logs
// it and moves on (the pipeline must never fail because one source did).
//
// Implementations must be safe for concurrent use.
type Corrector interface {
	// Name is a short stable label for logs.
	Name() string

	// Correct evaluates req and returns a correction, nothing, or an error.
	Correct(ctx context.Context, req Request) (*Correction, error)
}

// configurable is implemented by sources whose behaviour follows the live
// cascade configuration (currently only the ML stage).
type configurable interface {
	updateConfig(cfg Config)
}

// PersonalLookup resolves a word against the user's personal correction
// store. Lookups are cache-backed and case-insensitive; a store outage
// degrades to "no match".
type PersonalLookup interface {
	PersonalCorrection(word string) (corrected string, ok bool)
}

// IgnoreChecker reports ignore-list membership. Mirrors
// keyboard.IgnoreChecker so the cached store serves both consumers.
type IgnoreChecker interface {
	IsIgnored(word string) bool
}

// Config holds the hot-updatable cascade settings.
type Config struct {
	// UseML enables the statistical/ML stage when a suggester is configured.
	UseML bool

	// MLConfidenceThreshold is the minimum confidence an ML result must meet
	// to be surfaced.
	MLConfidenceThreshold float64
}

// DefaultConfig returns the cascade defaults: ML enabled, threshold 0.7.
func DefaultConfig() Config {
	return Config{
		UseML:                 true,
		MLConfidenceThreshold: 0.7,
	}
}

// Option is a functional option for configuring a [Cascade].
type Option func(*Cascade)

// WithSuggester attaches the optional statistical/ML stage. When nil (the
// default) the stage is absent entirely.
func WithSuggester(s suggest.Suggester) Option {
	return func(c *Cascade) {
		c.suggester = s
	}
}

// WithConfig overrides the default cascade configuration.
func WithConfig(cfg Config) Option {
	return func(c *Cascade) {
		c.cfg = cfg
	}
}

// Cascade resolves words through the ordered correction sources.
// Safe for concurrent use; many per-word pipelines may call Decide at once.
type Cascade struct {
	ignored IgnoreChecker

	mu      sync.RWMutex
	cfg     Config
	sources []Corrector

	suggester suggest.Suggester
}

// New constructs a cascade. personal and ignored may be nil (no personal
// overrides, no ignore list); the remaining stages are always present.
func New(personal PersonalLookup, ignored IgnoreChecker, opts ...Option) *Cascade {
	c := &Cascade{
		ignored: ignored,
		cfg:     DefaultConfig(),
	}
	for _, o := range opts {
		o(c)
	}

	c.sources = []Corrector{
		newPersonalSource(personal),
		newCommonSource(),
		newRuleSource(),
	}
	if c.suggester != nil {
		c.sources = append(c.sources, newMLSource(c.suggester, c.cfg))
	}
	c.sources = append(c.sources, newRephraseSource())

	return c
}

// UpdateConfig applies new settings. Takes effect on the next word decided.
func (c *Cascade) UpdateConfig(cfg Config) {
	c.mu.Lock()
	c.cfg = cfg
	sources := c.sources
	c.mu.Unlock()

	for _, s := range sources {
		if cs, ok := s.(configurable); ok {
			cs.updateConfig(cfg)
		}
	}
}

// Decide resolves req to at most one correction, or nil when no stage
// matches. The decision is a pure function of req and the current snapshot
// of the underlying stores: identical inputs against unchanged store state
// yield identical results.
//
// The internal skip check re-validates eligibility independently of the word
// filter, so Decide is safe to call directly.
func (c *Cascade) Decide(ctx context.Context, req Request) *Correction {
	if c.shouldSkip(req.Word) {
		return nil
	}

	c.mu.RLock()
	sources := c.sources
	c.mu.RUnlock()

	for _, s := range sources {
		res, err := s.Correct(ctx, req)
		if err != nil {
			slog.Debug("cascade: source unavailable, skipping stage",
				"source", s.Name(),
				"word", req.Word,
				"err", err,
			)
			continue
		}
		if res != nil {
			return res
		}
	}
	return nil
}

// shouldSkip applies the cascade's own eligibility heuristics: very short
// words, probable acronyms (all uppercase), probable code or identifiers
// (mixed digits and letters), and ignore-list members.
func (c *Cascade) shouldSkip(word string) bool {
	if utf8.RuneCountInString(word) < 2 {
		return true
	}
	if isAllUpper(word) {
		return true
	}
	if hasDigit(word) && hasLetter(word) {
		return true
	}
	if c.ignored != nil && c.ignored.IsIgnored(word) {
		return true
	}
	return false
}

// isAllUpper reports whether word contains at least one letter and no
// lowercase letters — the probable-acronym heuristic.
func isAllUpper(word string) bool {
	hasUpper := false
	for _, r := range word {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
