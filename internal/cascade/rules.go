package cascade

import (
	"context"
	"regexp"
	"strings"
)

const ruleConfidence = 0.8

// rewriteRule is a single ordered rewrite. apply returns the word unchanged
// when the rule does not fire.
type rewriteRule struct {
	name  string
	apply func(string) string
}

var (
	ieSuffixRe   = regexp.MustCompile(`(?i)ie([dsr])`)
	iseSuffixRe  = regexp.MustCompile(`(?i)ise$`)
	afterPeriodRe = regexp.MustCompile(`(\. )([a-z])`)
)

// ruleSet is evaluated in order; the first rule that changes the word wins
// and the remaining rules are not consulted.
var ruleSet = []rewriteRule{
	{
		name:  "collapse repeated characters",
		apply: collapseRepeats,
	},
	{
		name: "ie/ei transposition before d, s, r",
		apply: func(w string) string {
			return ieSuffixRe.ReplaceAllString(w, "ei$1")
		},
	},
	{
		name: "recieve family",
		apply: func(w string) string {
			return strings.ReplaceAll(w, "recieve", "receive")
		},
	},
	{
		name: "beleive family",
		apply: func(w string) string {
			return strings.ReplaceAll(w, "beleive", "believe")
		},
	},
	{
		name: "-ise to -ize",
		apply: func(w string) string {
			return iseSuffixRe.ReplaceAllString(w, "ize")
		},
	},
	{
		name: "colour to color",
		apply: func(w string) string {
			return strings.ReplaceAll(w, "colour", "color")
		},
	},
	{
		name: "favour to favor",
		apply: func(w string) string {
			return strings.ReplaceAll(w, "favour", "favor")
		},
	},
	{
		name: "capitalize after sentence end",
		apply: func(w string) string {
			return afterPeriodRe.ReplaceAllStringFunc(w, func(m string) string {
				return m[:2] + strings.ToUpper(m[2:])
			})
		},
	},
}

// collapseRepeats reduces runs of three or more identical characters to two
// ("helllo" -> "hello", "sooooo" -> "soo").
func collapseRepeats(w string) string {
	var sb strings.Builder
	sb.Grow(len(w))

	var prev rune
	run := 0
	for _, r := range w {
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run <= 2 {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// ruleSource applies the ordered pattern rewrite rules.
type ruleSource struct{}

var _ Corrector = (*ruleSource)(nil)

func newRuleSource() *ruleSource { return &ruleSource{} }

func (s *ruleSource) Name() string { return "rules" }

func (s *ruleSource) Correct(_ context.Context, req Request) (*Correction, error) {
	for _, rule := range ruleSet {
		fixed := rule.apply(req.Word)
		if fixed != req.Word {
			return &Correction{
				CorrectedText: fixed,
				Confidence:    ruleConfidence,
				Source:        SourceRules,
				Reason:        rule.name,
			}, nil
		}
	}
	return nil, nil
}
