package template

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout = "2/01/2006"
	hourLayout = "15:04"
)

// Engine evaluates template functions. Clock and random source are
// swappable so callers can pin them in tests.
type Engine struct {
	now  func() time.Time
	intn func(int) int
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithRand(intn func(int) int) Option {
	return func(e *Engine) { e.intn = intn }
}

func New(opts ...Option) *Engine {
	e := &Engine{now: time.Now, intn: rand.IntN}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Apply computes one generated cell. value is the source column content
// ("" when the source is missing), target the optional argument.
func (e *Engine) Apply(kind Kind, value string, target *string) string {
	switch kind {
	case KindSendDate:
		return e.now().UTC().Format(dateLayout)
	case KindSendHour:
		tz := "0:00"
		if target != nil {
			tz = *target
		}
		return e.now().In(Zone(tz)).Format(hourLayout)
	case KindRandomNum:
		return strconv.Itoa(e.intn(1000))
	case KindDowncase:
		return strings.ToLower(value)
	case KindUpcase:
		return strings.ToUpper(value)
	case KindFirstWord:
		return firstWord(value)
	case KindFirstDown:
		return strings.ToLower(firstWord(value))
	case KindFixed:
		if target == nil {
			return ""
		}
		return *target
	default:
		// dynamic and unknown kinds
		return value
	}
}

func firstWord(s string) string {
	w, _, _ := strings.Cut(s, " ")
	return w
}

// Offset parses "[-]H:MM" into seconds east of UTC. Unparseable parts count
// as zero; any '-' makes the offset negative.
func Offset(tz string) int {
	hh, mm, _ := strings.Cut(strings.ReplaceAll(tz, "-", ""), ":")
	hours, _ := strconv.Atoi(hh)
	minutes, _ := strconv.Atoi(mm)

	secs := hours*3600 + minutes*60
	if strings.Contains(tz, "-") {
		return -secs
	}
	return secs
}

// Zone returns a fixed zone for a "[-]H:MM" offset.
func Zone(tz string) *time.Location {
	return time.FixedZone(tz, Offset(tz))
}
