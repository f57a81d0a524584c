package electoral

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeColumn canonicalizes a source header: BOM and surrounding space removed,
// diacritics folded, upper case.
func NormalizeColumn(h string) string {
	h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, h); err == nil {
		h = folded
	}
	return strings.ToUpper(h)
}

// ParseID parses an integer identifier cell. Integral floats such as "12.0" are accepted.
func ParseID(s string) NullInt {
	s = strings.TrimSpace(s)
	if s == "" {
		return NullInt{}
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(v)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return NullInt{}
	}
	return Int(int64(f))
}
