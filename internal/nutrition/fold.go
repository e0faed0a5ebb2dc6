package nutrition

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldName reduces a product name to a plain token stream used both by the
// name classifiers in this package and by the search index:
//
//   - lowercased, ß → ss
//   - accents removed (NFD, drop nonspacing marks, NFC)
//   - apostrophes dropped ("allen's" → "allens")
//   - any other non-letter/non-digit becomes a space ("k-cup" → "k cup")
//   - whitespace collapsed and trimmed
func FoldName(s string) string {
	s = strings.ReplaceAll(strings.ToLower(s), "ß", "ss")

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\'' || r == '’':
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		default:
			sb.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
