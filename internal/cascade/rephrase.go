package cascade

import (
	"context"
	"strings"
)

const (
	rephraseConfidence = 0.7

	// rephraseMinContext: formalisation needs a real sentence in flight, not
	// an isolated word.
	rephraseMinContext = 10
)

// informalPair maps an informal contraction to its formal replacement.
// The slice order fixes scan order.
type informalPair struct {
	informal string
	formal   string
}

var informalPairs = []informalPair{
	{"gonna", "going to"},
	{"wanna", "want to"},
	{"gotta", "have to"},
	{"kinda", "kind of"},
	{"sorta", "sort of"},
}

// rephraseSource formalises informal contractions, but only under formal
// tone with high formality, and only when enough context has accumulated.
//
// The scan stops at the first informal token found anywhere in the combined
// context-plus-word text; a correction is returned only when that token is
// the current word itself. An informal token sitting in the context window
// therefore shadows a later informal current word.
type rephraseSource struct{}

var _ Corrector = (*rephraseSource)(nil)

func newRephraseSource() *rephraseSource { return &rephraseSource{} }

func (s *rephraseSource) Name() string { return "rephrase" }

func (s *rephraseSource) Correct(_ context.Context, req Request) (*Correction, error) {
	if req.Tone != ToneFormal || req.Formality != FormalityHigh {
		return nil, nil
	}
	if len(req.Context) <= rephraseMinContext {
		return nil, nil
	}

	combined := strings.ToLower(req.Context + " " + req.Word)
	word := strings.ToLower(req.Word)
	for _, p := range informalPairs {
		if !strings.Contains(combined, p.informal) {
			continue
		}
		if word != p.informal {
			return nil, nil
		}
		return &Correction{
			CorrectedText: p.formal,
			Confidence:    rephraseConfidence,
			Source:        SourceRephrase,
			Reason:        "informal phrasing",
		}, nil
	}
	return nil, nil
}
