// Package ingredient turns free-text ingredient lines into comparable values:
// a grouping key that decides when two lines name the same ingredient, and a
// leading quantity with its unit.
package ingredient

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Key derives the canonical grouping key for a raw ingredient line.
// It reports false when no usable noun survives filtering.
//
// The head noun of an ingredient phrase sits near its end ("2 tbsp light soy
// sauce" is keyed "soy sauce"), so the key is built from the tail of the
// surviving tokens.
func Key(line string) (string, bool) {
	tokens := tokenize(line)
	if len(tokens) == 0 {
		return "", false
	}

	kept := filter(tokens)
	if len(kept) == 0 {
		return "", false
	}

	for i, tok := range kept {
		kept[i] = Singularize(tok)
	}
	return strings.Join(tail(kept), " "), true
}

// tokenize lowercases the line, removes the first parenthesized group and
// diacritics, and splits what is left into letter-only tokens.
func tokenize(line string) []string {
	s := strings.ToLower(line)
	s = stripParenthetical(s)
	s = stripDiacritics(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			b.WriteRune(r)
		case r == '\'' || r == '’':
			// keep possessives in one token
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Fields(b.String())
}

func filter(tokens []string) []string {
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if len(tok) < 2 || isUnit(tok) || isStopWord(tok) || isDescriptor(tok) || isPurposeWord(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	return kept
}

// tail keeps the last one to two tokens, or two to three when the final
// token is a generic compound tail such as "sauce".
func tail(tokens []string) []string {
	n := 2
	if isCompoundTail(tokens[len(tokens)-1]) {
		n = 3
	}
	if len(tokens) > n {
		return tokens[len(tokens)-n:]
	}
	return tokens
}

// stripParenthetical removes the first "(...)" group, without nesting.
func stripParenthetical(s string) string {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return s
	}
	end := strings.IndexByte(s[open:], ')')
	if end < 0 {
		return s
	}
	return s[:open] + " " + s[open+end+1:]
}

func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}
