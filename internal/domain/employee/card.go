package employee

import "strings"

// NormalizeCardNumber strips non-digits and leading zeros so that "007",
// "07" and "7" compare equal. It is the only join key between local
// employees and remote attendance rows.
func NormalizeCardNumber(card string) string {
	var b strings.Builder
	b.Grow(len(card))
	for _, r := range card {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return strings.TrimLeft(b.String(), "0")
}

// SameCard compares two raw card numbers by their normalized form.
func SameCard(a, b string) bool {
	na := NormalizeCardNumber(a)
	return na != "" && na == NormalizeCardNumber(b)
}
