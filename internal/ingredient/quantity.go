package ingredient

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Quantity is the leading amount of an ingredient line. Unit is empty when the
// line names no recognised unit.
type Quantity struct {
	Amount float64
	Unit   string
}

var vulgarFractions = map[rune]float64{
	'½': 1.0 / 2, '⅓': 1.0 / 3, '⅔': 2.0 / 3, '¼': 1.0 / 4, '¾': 3.0 / 4,
	'⅕': 1.0 / 5, '⅖': 2.0 / 5, '⅗': 3.0 / 5, '⅘': 4.0 / 5, '⅙': 1.0 / 6,
	'⅚': 5.0 / 6, '⅛': 1.0 / 8, '⅜': 3.0 / 8, '⅝': 5.0 / 8, '⅞': 7.0 / 8,
}

// ParseQuantity reads the amount and unit at the start of an ingredient line.
// It reports false when the first token is not a number, whatever follows it.
func ParseQuantity(line string) (Quantity, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Quantity{}, false
	}

	amount, unit, ok := parseLeading(fields[0])
	if !ok {
		return Quantity{}, false
	}
	rest := fields[1:]

	// "1 1/2 cups": a whole number followed by a fraction
	if len(rest) > 0 && unit == "" && amount == math.Trunc(amount) {
		if frac, ok := parseFraction(rest[0]); ok && frac < 1 {
			amount += frac
			rest = rest[1:]
		}
	}

	if unit == "" && len(rest) > 0 {
		if u, ok := CanonicalUnit(alphanumeric(rest[0])); ok {
			unit = u
		}
	}
	return Quantity{Amount: amount, Unit: unit}, true
}

// parseLeading parses a single token as an amount. An amount glued to a known
// unit ("200g") yields the unit as well.
func parseLeading(tok string) (float64, string, bool) {
	if v, ok := parseAmount(tok); ok {
		return v, "", true
	}

	split := strings.IndexFunc(tok, unicode.IsLetter)
	if split <= 0 {
		return 0, "", false
	}
	v, ok := parseAmount(tok[:split])
	if !ok {
		return 0, "", false
	}
	u, ok := CanonicalUnit(alphanumeric(strings.ToLower(tok[split:])))
	if !ok {
		return 0, "", false
	}
	return v, u, true
}

// parseAmount accepts a vulgar fraction glyph, digits followed by a glyph,
// a slash fraction, a hyphenated range (averaged) or a plain number.
func parseAmount(tok string) (float64, bool) {
	if tok == "" {
		return 0, false
	}

	last, size := utf8.DecodeLastRuneInString(tok)
	if frac, ok := vulgarFractions[last]; ok {
		whole := tok[:len(tok)-size]
		if whole == "" {
			return frac, true
		}
		if !isDigits(whole) {
			return 0, false
		}
		n, err := strconv.Atoi(whole)
		if err != nil {
			return 0, false
		}
		return float64(n) + frac, true
	}

	if v, ok := parseFraction(tok); ok {
		return v, true
	}

	if lo, hi, found := cutRange(tok); found {
		a, okA := parseNumber(lo)
		b, okB := parseNumber(hi)
		if okA && okB {
			return (a + b) / 2, true
		}
		return 0, false
	}

	return parseNumber(tok)
}

func parseFraction(tok string) (float64, bool) {
	num, den, found := strings.Cut(tok, "/")
	if !found {
		return 0, false
	}
	a, okA := parseNumber(num)
	b, okB := parseNumber(den)
	if !okA || !okB || b == 0 {
		return 0, false
	}
	return a / b, true
}

func cutRange(tok string) (string, string, bool) {
	for _, sep := range []string{"-", "–", "—"} {
		if lo, hi, found := strings.Cut(tok, sep); found {
			return lo, hi, true
		}
	}
	return "", "", false
}

// parseNumber accepts plain decimals only; strconv alone would also take
// "inf", "nan" and hex floats. A comma is a thousands separator when it is
// followed by exactly three digits ("1,000"), otherwise a decimal point ("1,5").
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	if isGrouped(s) {
		s = strings.ReplaceAll(s, ",", "")
	}
	dot := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case (r == '.' || r == ',') && !dot:
			dot = true
		default:
			return 0, false
		}
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// isGrouped reports whether the integer part of s is written in comma
// separated groups of three digits.
func isGrouped(s string) bool {
	whole, _, _ := strings.Cut(s, ".")
	groups := strings.Split(whole, ",")
	if len(groups) < 2 || len(groups[0]) == 0 || len(groups[0]) > 3 || !isDigits(groups[0]) {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 || !isDigits(g) {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func alphanumeric(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, s)
}
