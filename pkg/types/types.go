// Package types defines the shared domain types of the autocorrect system:
// key events as delivered by an external capture mechanism, word-boundary
// triggers, and completed words flowing into the correction pipeline.
package types

// EventKind discriminates the variants of a [KeyEvent].
type EventKind int

const (
	// EventCharacter is a printable character key press. Char holds the rune.
	EventCharacter EventKind = iota

	// EventSeparator is an explicit word-boundary key (space, tab, enter, or
	// a punctuation key reported without a character). Separator holds the kind.
	EventSeparator

	// EventBackspace removes the last pending character.
	EventBackspace

	// EventOther covers modifier and function keys that neither produce a
	// character nor terminate a word. The segmenter ignores them.
	EventOther
)

// SeparatorKind classifies an [EventSeparator] key event.
type SeparatorKind int

const (
	SeparatorSpace SeparatorKind = iota
	SeparatorTab
	SeparatorNewline
	SeparatorPunctuation
)

// KeyEvent is a single keyboard event produced by the external key-event
// source. Events are ephemeral: they are consumed immediately by the word
// segmenter and never retained.
type KeyEvent struct {
	Kind      EventKind
	Char      rune          // set when Kind is EventCharacter
	Separator SeparatorKind // set when Kind is EventSeparator
}

// Character returns a KeyEvent for a printable character.
func Character(r rune) KeyEvent {
	return KeyEvent{Kind: EventCharacter, Char: r}
}

// Separator returns a KeyEvent for an explicit boundary key.
func Separator(kind SeparatorKind) KeyEvent {
	return KeyEvent{Kind: EventSeparator, Separator: kind}
}

// Backspace returns a backspace KeyEvent.
func Backspace() KeyEvent {
	return KeyEvent{Kind: EventBackspace}
}

// Other returns a KeyEvent for an ignored key (modifiers, function keys).
func Other() KeyEvent {
	return KeyEvent{Kind: EventOther}
}

// Trigger identifies what kind of boundary completed a word.
type Trigger int

const (
	TriggerSpace Trigger = iota
	TriggerSentenceEnd
	TriggerNewline
	TriggerTab
	TriggerPunctuation
)

// String returns the lowercase name of the trigger, suitable for logs and
// persisted records.
func (t Trigger) String() string {
	switch t {
	case TriggerSpace:
		return "space"
	case TriggerSentenceEnd:
		return "sentence_end"
	case TriggerNewline:
		return "newline"
	case TriggerTab:
		return "tab"
	case TriggerPunctuation:
		return "punctuation"
	}
	return "unknown"
}

// CompletedWord is an immutable word unit emitted by the segmenter at a
// boundary. Text is already cleaned (no leading/trailing punctuation) and
// Context holds the trailing window of previously completed words, oldest
// first, space-joined.
type CompletedWord struct {
	Text    string
	Trigger Trigger
	Context string
}
