package cascade

import (
	"context"
	"strings"
	"testing"

	"github.com/SimplyKushal/intelligent-autocorrect-system/pkg/suggest/mock"
)

// stubPersonal is a fixed personal-correction lookup.
type stubPersonal map[string]string

func (s stubPersonal) PersonalCorrection(word string) (string, bool) {
	c, ok := s[strings.ToLower(word)]
	return c, ok
}

// stubIgnored is a fixed ignore list.
type stubIgnored map[string]bool

func (s stubIgnored) IsIgnored(word string) bool {
	return s[strings.ToLower(word)]
}

func TestDecide_CommonMisspelling(t *testing.T) {
	t.Parallel()

	c := New(nil, nil)
	got := c.Decide(context.Background(), Request{Word: "teh"})

	if got == nil {
		t.Fatal("Decide(teh) = nil, want correction")
	}
	if got.CorrectedText != "the" {
		t.Errorf("CorrectedText = %q, want %q", got.CorrectedText, "the")
	}
	if got.Source != SourceCommon {
		t.Errorf("Source = %v, want SourceCommon", got.Source)
	}
	if got.Confidence != 0.7 {
		t.Errorf("Confidence = %v, want 0.7", got.Confidence)
	}
}

func TestDecide_PersonalBeatsCommon(t *testing.T) {
	t.Parallel()

	// "teh" is also in the common dictionary; the personal override must win.
	c := New(stubPersonal{"teh": "tech"}, nil)
	got := c.Decide(context.Background(), Request{Word: "teh"})

	if got == nil {
		t.Fatal("Decide(teh) = nil, want correction")
	}
	if got.Source != SourcePersonal {
		t.Errorf("Source = %v, want SourcePersonal", got.Source)
	}
	if got.CorrectedText != "tech" {
		t.Errorf("CorrectedText = %q, want %q", got.CorrectedText, "tech")
	}
	if got.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", got.Confidence)
	}
}

func TestDecide_NoMatchReturnsNil(t *testing.T) {
	t.Parallel()

	c := New(nil, nil)
	if got := c.Decide(context.Background(), Request{Word: "hello"}); got != nil {
		t.Errorf("Decide(hello) = %+v, want nil", got)
	}
}

func TestDecide_Idempotent(t *testing.T) {
	t.Parallel()

	c := New(nil, nil)
	first := c.Decide(context.Background(), Request{Word: "teh"})
	if first == nil {
		t.Fatal("Decide(teh) = nil, want correction")
	}

	// Feeding the corrected output back through must produce nothing.
	if again := c.Decide(context.Background(), Request{Word: first.CorrectedText}); again != nil {
		t.Errorf("Decide(%q) = %+v, want nil (correcting a correction)", first.CorrectedText, again)
	}
}

func TestDecide_SkipHeuristics(t *testing.T) {
	t.Parallel()

	c := New(stubPersonal{"nasa": "should-not-fire"}, stubIgnored{"teh": true})

	tests := []struct {
		name string
		word string
	}{
		{"single rune", "x"},
		{"empty", ""},
		{"all uppercase acronym", "NASA"},
		{"digits and letters", "x86solution"},
		{"ignored word", "teh"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := c.Decide(context.Background(), Request{Word: tc.word}); got != nil {
				t.Errorf("Decide(%q) = %+v, want nil", tc.word, got)
			}
		})
	}
}

func TestDecide_CasePreservation(t *testing.T) {
	t.Parallel()

	c := New(nil, nil)
	tests := []struct {
		word string
		want string
	}{
		{"teh", "the"},
		{"Teh", "The"},
	}

	for _, tc := range tests {
		got := c.Decide(context.Background(), Request{Word: tc.word})
		if got == nil {
			t.Fatalf("Decide(%q) = nil, want correction", tc.word)
		}
		if got.CorrectedText != tc.want {
			t.Errorf("Decide(%q).CorrectedText = %q, want %q", tc.word, got.CorrectedText, tc.want)
		}
	}

	// All-uppercase misspellings hit the acronym skip instead.
	if got := c.Decide(context.Background(), Request{Word: "TEH"}); got != nil {
		t.Errorf("Decide(TEH) = %+v, want nil (acronym heuristic)", got)
	}
}

func TestDecide_SourceErrorFallsThrough(t *testing.T) {
	t.Parallel()

	// A failing suggester must not block the rephrase stage behind it.
	sugg := &mock.Suggester{Err: context.DeadlineExceeded}
	c := New(nil, nil, WithSuggester(sugg))

	got := c.Decide(context.Background(), Request{
		Word:      "gonna",
		Context:   "i think that we are",
		Tone:      ToneFormal,
		Formality: FormalityHigh,
	})
	if got == nil {
		t.Fatal("Decide(gonna) = nil, want rephrase correction despite suggester error")
	}
	if got.Source != SourceRephrase {
		t.Errorf("Source = %v, want SourceRephrase", got.Source)
	}
}

func TestUpdateConfig_DisablesMLStage(t *testing.T) {
	t.Parallel()

	sugg := &mock.Suggester{Response: "received"}
	c := New(nil, nil, WithSuggester(sugg))

	c.UpdateConfig(Config{UseML: false, MLConfidenceThreshold: 0.7})
	c.Decide(context.Background(), Request{Word: "recived"})

	if n := len(sugg.Calls()); n != 0 {
		t.Errorf("suggester called %d times with ML disabled, want 0", n)
	}
}

func TestSourceString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  Source
		want string
	}{
		{SourcePersonal, "personal"},
		{SourceCommon, "common"},
		{SourceRules, "rules"},
		{SourceMl, "ml"},
		{SourceRephrase, "rephrase"},
		{Source(99), "unknown"},
	}
	for _, tc := range tests {
		if got := tc.src.String(); got != tc.want {
			t.Errorf("Source(%d).String() = %q, want %q", int(tc.src), got, tc.want)
		}
	}
}
