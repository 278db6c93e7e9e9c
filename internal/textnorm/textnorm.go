// Package textnorm reduces labels and values to canonical comparison keys.
package textnorm

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Key lowercases v and keeps only a-z and 0-9. Strings are NFKC-folded first so
// full-width digits and letters compare equal to their ASCII forms. nil yields "".
func Key(v any) string {
	var s string
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	case bool:
		s = strconv.FormatBool(t)
	case interface{ String() string }:
		s = t.String()
	default:
		return ""
	}
	return strip(norm.NFKC.String(s))
}

func strip(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		}
	}
	return b.String()
}

// Contains reports bidirectional containment of two already-normalized keys.
// Empty keys never match.
func Contains(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// Dashes replaces unicode dash and comparison variants with their ASCII forms.
var Dashes = strings.NewReplacer(
	"‐", "-", // hyphen
	"‑", "-", // non-breaking hyphen
	"‒", "-", // figure dash
	"–", "-", // en dash
	"—", "-", // em dash
	"―", "-", // horizontal bar
	"−", "-", // minus sign
	"﹣", "-",
	"－", "-",
	"≤", "<=",
	"≥", ">=",
	"＜", "<",
	"＞", ">",
)
