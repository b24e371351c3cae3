package phone

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed countries.yaml
var countriesYAML []byte

var ErrInvalidRule = errors.New("invalid country rule")

var countryCode = regexp.MustCompile(`^[A-Z]{2}$`)

// Rule is the numbering-plan normalization of one destination country.
type Rule struct {
	Code     string `yaml:"code" json:"code"`
	Validate string `yaml:"validate" json:"validate"`
	Template string `yaml:"template" json:"template"`

	re *regexp.Regexp
}

// Rules is an immutable lookup of rules keyed by country code.
type Rules struct {
	byCode map[string]Rule
	codes  []string
}

// LoadRules parses a YAML list of rules. Patterns are anchored to the whole
// digit string.
func LoadRules(data []byte) (*Rules, error) {
	var list []Rule
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}

	rs := &Rules{byCode: make(map[string]Rule, len(list))}
	for _, r := range list {
		if !countryCode.MatchString(r.Code) {
			return nil, fmt.Errorf("%w: bad code %q", ErrInvalidRule, r.Code)
		}
		if _, dup := rs.byCode[r.Code]; dup {
			return nil, fmt.Errorf("%w: duplicate code %q", ErrInvalidRule, r.Code)
		}
		re, err := regexp.Compile("^(?:" + r.Validate + ")$")
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRule, r.Code, err)
		}
		r.re = re
		rs.byCode[r.Code] = r
		rs.codes = append(rs.codes, r.Code)
	}
	sort.Strings(rs.codes)

	return rs, nil
}

var defaultRules = sync.OnceValue(func() *Rules {
	rs, err := LoadRules(countriesYAML)
	if err != nil {
		panic(err)
	}
	return rs
})

// DefaultRules returns the bundled rule table.
func DefaultRules() *Rules { return defaultRules() }

// Lookup finds the rule for code, ignoring case.
func (rs *Rules) Lookup(code string) (Rule, bool) {
	r, ok := rs.byCode[strings.ToUpper(code)]
	return r, ok
}

// All returns every rule ordered by code.
func (rs *Rules) All() []Rule {
	out := make([]Rule, 0, len(rs.codes))
	for _, c := range rs.codes {
		out = append(out, rs.byCode[c])
	}
	return out
}

// Len reports the number of configured countries.
func (rs *Rules) Len() int { return len(rs.codes) }

// apply replaces digits per the rule; a non-matching number is returned as is.
func (r Rule) apply(digits string) (string, bool) {
	if !r.re.MatchString(digits) {
		return digits, false
	}
	return r.re.ReplaceAllString(digits, r.Template), true
}
