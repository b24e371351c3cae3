package phone

import (
	"regexp"
	"strings"
)

var nonDigits = regexp.MustCompile(`[^0-9]+`)

// Outcome tells how a destination was produced.
type Outcome int

const (
	// OutcomeApplied: the country rule matched and rewrote the number.
	OutcomeApplied Outcome = iota
	// OutcomeNoMatch: the country is known but the number didn't fit its plan.
	OutcomeNoMatch
	// OutcomeUnknownCountry: no rule, digits only.
	OutcomeUnknownCountry
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeNoMatch:
		return "no_match"
	default:
		return "unknown_country"
	}
}

// Digits strips every character that is not an ASCII digit.
func Digits(raw string) string {
	return nonDigits.ReplaceAllString(raw, "")
}

type Normalizer struct {
	rules *Rules
}

func NewNormalizer(rules *Rules) *Normalizer {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Normalizer{rules: rules}
}

// Rules exposes the table the normalizer was built with.
func (n *Normalizer) Rules() *Rules { return n.rules }

// Format turns raw into a destination number for country.
func (n *Normalizer) Format(raw, country string) string {
	out, _ := n.FormatOutcome(raw, country)
	return out
}

// FormatOutcome is Format plus how the result was obtained.
func (n *Normalizer) FormatOutcome(raw, country string) (string, Outcome) {
	digits := Digits(raw)

	rule, ok := n.rules.Lookup(strings.ToUpper(country))
	if !ok {
		return digits, OutcomeUnknownCountry
	}
	if out, matched := rule.apply(digits); matched {
		return out, OutcomeApplied
	}
	return digits, OutcomeNoMatch
}
