package cascade

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/antzucaro/matchr"

	"github.com/SimplyKushal/intelligent-autocorrect-system/pkg/suggest"
)

const (
	// mlConfidence is the fixed confidence attached to accepted ML results.
	mlConfidence = 0.75

	// mlMinWordLength: very short words are not worth a model round trip.
	mlMinWordLength = 4

	// mlMinSimilarity is the minimum normalized edit similarity between the
	// original word and the model's candidate. Guards against the model
	// substituting an unrelated word.
	mlMinSimilarity = 0.5
)

// mlSource delegates to an injected [suggest.Suggester] and distills its raw
// output to a single best candidate token by edit similarity.
type mlSource struct {
	suggester suggest.Suggester

	mu        sync.RWMutex
	enabled   bool
	threshold float64
}

var (
	_ Corrector    = (*mlSource)(nil)
	_ configurable = (*mlSource)(nil)
)

func newMLSource(s suggest.Suggester, cfg Config) *mlSource {
	return &mlSource{
		suggester: s,
		enabled:   cfg.UseML,
		threshold: cfg.MLConfidenceThreshold,
	}
}

func (s *mlSource) Name() string { return "ml" }

func (s *mlSource) updateConfig(cfg Config) {
	s.mu.Lock()
	s.enabled = cfg.UseML
	s.threshold = cfg.MLConfidenceThreshold
	s.mu.Unlock()
}

func (s *mlSource) Correct(ctx context.Context, req Request) (*Correction, error) {
	s.mu.RLock()
	enabled, threshold := s.enabled, s.threshold
	s.mu.RUnlock()

	if !enabled || utf8.RuneCountInString(req.Word) < mlMinWordLength {
		return nil, nil
	}
	if mlConfidence < threshold {
		return nil, nil
	}

	raw, err := s.suggester.Suggest(ctx, suggest.Request{
		Word:      req.Word,
		Context:   req.Context,
		Tone:      string(req.Tone),
		Formality: string(req.Formality),
	})
	if err != nil {
		return nil, fmt.Errorf("ml suggestion: %w", err)
	}

	candidate, ok := extractCandidate(req.Word, raw)
	if !ok {
		return nil, nil
	}
	return &Correction{
		CorrectedText: candidate,
		Confidence:    mlConfidence,
		Source:        SourceMl,
		Reason:        "statistical suggestion",
	}, nil
}

// extractCandidate picks the token from raw most similar to word by
// normalized Levenshtein similarity, accepting it only when the similarity
// exceeds mlMinSimilarity and the token actually differs from the word.
func extractCandidate(word, raw string) (string, bool) {
	best := ""
	bestScore := 0.0
	for _, tok := range strings.Fields(raw) {
		tok = strings.Trim(tok, `.,!?;:"'`)
		if tok == "" {
			continue
		}
		score := similarity(word, tok)
		if score > bestScore {
			best, bestScore = tok, score
		}
	}
	if best == "" || bestScore <= mlMinSimilarity {
		return "", false
	}
	if strings.EqualFold(best, word) {
		return "", false
	}
	return best, true
}

// similarity is 1 - levenshtein(a, b)/max(len(a), len(b)), computed
// case-insensitively over runes. Identical strings score 1.0.
func similarity(a, b string) float64 {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == lb {
		return 1.0
	}
	maxLen := utf8.RuneCountInString(la)
	if n := utf8.RuneCountInString(lb); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 0.0
	}
	dist := matchr.Levenshtein(la, lb)
	return 1.0 - float64(dist)/float64(maxLen)
}
