package cascade

import (
	"context"
	"errors"
	"testing"

	"github.com/SimplyKushal/intelligent-autocorrect-system/pkg/suggest/mock"
)

func TestMLSource_AcceptsSimilarCandidate(t *testing.T) {
	t.Parallel()

	sugg := &mock.Suggester{Response: "received"}
	s := newMLSource(sugg, DefaultConfig())

	got, err := s.Correct(context.Background(), Request{Word: "receved"})
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if got == nil {
		t.Fatal("Correct(receved) = nil, want correction")
	}
	if got.CorrectedText != "received" {
		t.Errorf("CorrectedText = %q, want %q", got.CorrectedText, "received")
	}
	if got.Source != SourceMl {
		t.Errorf("Source = %v, want SourceMl", got.Source)
	}
	if got.Confidence != 0.75 {
		t.Errorf("Confidence = %v, want 0.75", got.Confidence)
	}
}

func TestMLSource_PicksClosestTokenFromProse(t *testing.T) {
	t.Parallel()

	// Models sometimes answer with a sentence despite instructions; the
	// closest token by edit similarity must be extracted.
	sugg := &mock.Suggester{Response: "The corrected word is: received."}
	s := newMLSource(sugg, DefaultConfig())

	got, err := s.Correct(context.Background(), Request{Word: "receved"})
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if got == nil || got.CorrectedText != "received" {
		t.Fatalf("Correct(receved) = %+v, want received", got)
	}
}

func TestMLSource_RejectsDissimilarCandidate(t *testing.T) {
	t.Parallel()

	sugg := &mock.Suggester{Response: "completely unrelated"}
	s := newMLSource(sugg, DefaultConfig())

	got, err := s.Correct(context.Background(), Request{Word: "zzzz"})
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if got != nil {
		t.Errorf("Correct(zzzz) = %+v, want nil (no similar token)", got)
	}
}

func TestMLSource_IdenticalSuggestionIsNoMatch(t *testing.T) {
	t.Parallel()

	sugg := &mock.Suggester{Response: "hello"}
	s := newMLSource(sugg, DefaultConfig())

	got, err := s.Correct(context.Background(), Request{Word: "hello"})
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if got != nil {
		t.Errorf("Correct(hello) = %+v, want nil (word already correct)", got)
	}
}

func TestMLSource_ShortWordSkipsModel(t *testing.T) {
	t.Parallel()

	sugg := &mock.Suggester{Response: "the"}
	s := newMLSource(sugg, DefaultConfig())

	got, err := s.Correct(context.Background(), Request{Word: "teh"})
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if got != nil {
		t.Errorf("Correct(teh) = %+v, want nil (below ML length floor)", got)
	}
	if n := len(sugg.Calls()); n != 0 {
		t.Errorf("suggester called %d times for short word, want 0", n)
	}
}

func TestMLSource_DisabledSkipsModel(t *testing.T) {
	t.Parallel()

	sugg := &mock.Suggester{Response: "received"}
	s := newMLSource(sugg, Config{UseML: false, MLConfidenceThreshold: 0.7})

	got, err := s.Correct(context.Background(), Request{Word: "receved"})
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if got != nil || len(sugg.Calls()) != 0 {
		t.Errorf("disabled ML stage produced %+v after %d calls, want nil and 0", got, len(sugg.Calls()))
	}
}

func TestMLSource_ThresholdAboveConfidenceSkips(t *testing.T) {
	t.Parallel()

	sugg := &mock.Suggester{Response: "received"}
	s := newMLSource(sugg, Config{UseML: true, MLConfidenceThreshold: 0.9})

	got, err := s.Correct(context.Background(), Request{Word: "receved"})
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if got != nil {
		t.Errorf("Correct = %+v, want nil (0.75 < threshold 0.9)", got)
	}
	if n := len(sugg.Calls()); n != 0 {
		t.Errorf("suggester called %d times below threshold, want 0", n)
	}
}

func TestMLSource_ErrorPropagates(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("backend down")
	sugg := &mock.Suggester{Err: wantErr}
	s := newMLSource(sugg, DefaultConfig())

	_, err := s.Correct(context.Background(), Request{Word: "receved"})
	if !errors.Is(err, wantErr) {
		t.Errorf("Correct error = %v, want wrapped %v", err, wantErr)
	}
}

func TestSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want float64
	}{
		{"hello", "hello", 1.0},
		{"Hello", "hello", 1.0},
		{"", "", 0.0},
	}
	for _, tc := range tests {
		if got := similarity(tc.a, tc.b); got != tc.want {
			t.Errorf("similarity(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}

	if got := similarity("received", "receved"); got <= 0.5 {
		t.Errorf("similarity(received, receved) = %v, want > 0.5", got)
	}
	if got := similarity("zzzz", "unrelated"); got > 0.5 {
		t.Errorf("similarity(zzzz, unrelated) = %v, want <= 0.5", got)
	}
}
