package cascade

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const commonConfidence = 0.7

// commonMisspellings maps frequent misspellings (lowercase) to their fixes.
// Lookups are case-insensitive; the original word's casing shape is
// re-derived onto the replacement.
var commonMisspellings = map[string]string{
	"teh":         "the",
	"adn":         "and",
	"nad":         "and",
	"hte":         "the",
	"taht":        "that",
	"thier":       "their",
	"recieve":     "receive",
	"seperate":    "separate",
	"definately":  "definitely",
	"occured":     "occurred",
	"untill":      "until",
	"wich":        "which",
	"becuase":     "because",
	"beleive":     "believe",
	"accomodate":  "accommodate",
	"embarass":    "embarrass",
	"existance":   "existence",
	"occurence":   "occurrence",
	"neccessary":  "necessary",
	"definitly":   "definitely",
	"tommorow":    "tomorrow",
	"begining":    "beginning",
	"calender":    "calendar",
	"cemetary":    "cemetery",
	"changable":   "changeable",
	"collegue":    "colleague",
	"commitee":    "committee",
	"concious":    "conscious",
	"enviroment":  "environment",
	"goverment":   "government",
	"gratefull":   "grateful",
	"independant": "independent",
	"liason":      "liaison",
	"maintainance": "maintenance",
	"occassion":   "occasion",
	"persistant":  "persistent",
	"publically":  "publicly",
	"recomend":    "recommend",
	"succesful":   "successful",
}

// commonSource fixes common misspellings from a fixed dictionary.
type commonSource struct{}

var _ Corrector = (*commonSource)(nil)

func newCommonSource() *commonSource { return &commonSource{} }

func (s *commonSource) Name() string { return "common" }

func (s *commonSource) Correct(_ context.Context, req Request) (*Correction, error) {
	fixed, ok := commonMisspellings[strings.ToLower(req.Word)]
	if !ok {
		return nil, nil
	}
	return &Correction{
		CorrectedText: matchCase(req.Word, fixed),
		Confidence:    commonConfidence,
		Source:        SourceCommon,
		Reason:        "common misspelling",
	}, nil
}

// matchCase re-derives the casing shape of original onto replacement:
// all-uppercase stays uppercase, leading-capital stays title case,
// everything else is returned lowercase as stored.
func matchCase(original, replacement string) string {
	if original == strings.ToUpper(original) && original != strings.ToLower(original) {
		return strings.ToUpper(replacement)
	}
	first, _ := firstRune(original)
	if unicode.IsUpper(first) {
		return cases.Title(language.English).String(replacement)
	}
	return replacement
}

func firstRune(s string) (rune, bool) {
	for _, r := range s {
		return r, true
	}
	return 0, false
}
