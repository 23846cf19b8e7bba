package cascade

import "context"

// personalConfidence: the user's own stored corrections are authoritative.
const personalConfidence = 1.0

// personalSource resolves words against the user's personal correction
// store. Highest precedence in the cascade.
type personalSource struct {
	lookup PersonalLookup
}

var _ Corrector = (*personalSource)(nil)

func newPersonalSource(lookup PersonalLookup) *personalSource {
	return &personalSource{lookup: lookup}
}

func (s *personalSource) Name() string { return "personal" }

func (s *personalSource) Correct(_ context.Context, req Request) (*Correction, error) {
	if s.lookup == nil {
		return nil, nil
	}
	corrected, ok := s.lookup.PersonalCorrection(req.Word)
	if !ok || corrected == req.Word {
		return nil, nil
	}
	return &Correction{
		CorrectedText: corrected,
		Confidence:    personalConfidence,
		Source:        SourcePersonal,
		Reason:        "user preference",
	}, nil
}
