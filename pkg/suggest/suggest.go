// Package suggest defines the statistical/ML suggestion capability consumed
// by the correction cascade.
//
// A [Suggester] is an optional, injected dependency: absence is a normal,
// checked state, not an error. Calls may have high and variable latency and
// therefore run only inside per-word processing tasks, never on the
// key-event listener goroutine.
package suggest

import "context"

// Request carries the word under consideration together with its trailing
// context window and the user's current tone/formality settings.
type Request struct {
	// Word is the completed word to correct.
	Word string

	// Context is the space-joined trailing window of previously completed
	// words. May be empty.
	Context string

	// Tone is the desired tone: "casual", "neutral", or "formal".
	Tone string

	// Formality is the desired formality level: "low", "medium", or "high".
	Formality string
}

// Suggester produces a raw correction suggestion for a word. The returned
// text may contain multiple tokens; the cascade extracts the best candidate
// by edit similarity to the original word.
//
// Implementations must be safe for concurrent use and must respect context
// cancellation.
type Suggester interface {
	// Suggest returns the model's suggestion text for req. An empty string
	// with a nil error means the model had nothing to offer.
	Suggest(ctx context.Context, req Request) (string, error)
}
