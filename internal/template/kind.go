package template

// Kind is a column-generating function. The set is closed: anything not
// listed parses to KindUnknown, which passes the source value through.
type Kind int

const (
	KindUnknown Kind = iota
	KindSendDate
	KindSendHour
	KindRandomNum
	KindDowncase
	KindUpcase
	KindFirstWord
	KindFirstDown
	KindFixed
	KindDynamic
)

var kindNames = map[Kind]string{
	KindSendDate:  "send_date",
	KindSendHour:  "send_hour",
	KindRandomNum: "random_num",
	KindDowncase:  "downcase",
	KindUpcase:    "upcase",
	KindFirstWord: "first_word",
	KindFirstDown: "first_down",
	KindFixed:     "fixed",
	KindDynamic:   "dynamic",
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, n := range kindNames {
		m[n] = k
	}
	return m
}()

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// ParseKind maps a function name to its Kind. Matching is exact.
func ParseKind(name string) Kind {
	return kindByName[name]
}

// Kinds lists every known kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindSendDate, KindSendHour, KindRandomNum, KindDowncase, KindUpcase,
		KindFirstWord, KindFirstDown, KindFixed, KindDynamic,
	}
}

// ReadsSource reports whether the kind uses the target column's value.
// fixed, send_date, send_hour and random_num only use the target as an
// argument, if at all.
func (k Kind) ReadsSource() bool {
	switch k {
	case KindSendDate, KindSendHour, KindRandomNum, KindFixed:
		return false
	default:
		return true
	}
}
