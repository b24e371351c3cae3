package csvio

import "strings"

// Output is the delimiter used for every serialized list.
const Output = ';'

// Sniff picks the field delimiter from the first line of a list.
// Semicolon wins over the others, comma is the fallback.
func Sniff(line string) rune {
	for _, sep := range []rune{';', '|', '\t', ','} {
		if strings.ContainsRune(line, sep) {
			return sep
		}
	}
	return ','
}

// firstLine returns content up to the first line break.
func firstLine(content string) string {
	line, _, _ := strings.Cut(content, "\n")
	return strings.TrimSuffix(line, "\r")
}
