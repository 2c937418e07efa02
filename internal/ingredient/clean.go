package ingredient

import (
	"strings"
)

// Clean tidies an ingredient line for display. It removes the first
// parenthesized group, a "for ..." purpose clause, trailing comma-separated
// clauses that add no ingredient noun, and trailing preparation words.
// The purpose clause stays when nothing before it names an ingredient
// ("2 tbsp for the glaze").
func Clean(line string) string {
	s := collapse(stripParenthetical(line))
	if i := indexWord(s, "for"); i > 0 {
		if head := trimPunct(s[:i]); head != "" {
			if _, ok := Key(head); ok {
				s = head
			}
		}
	}

	key, keyed := Key(s)
	sameKey := func(candidate string) bool {
		if !keyed {
			return true
		}
		k, ok := Key(candidate)
		return ok && k == key
	}

	for {
		i := strings.LastIndexAny(s, ",;")
		if i <= 0 {
			break
		}
		head := trimPunct(s[:i])
		if head == "" || !sameKey(head) {
			break
		}
		s = head
	}

	words := strings.Fields(s)
	for len(words) > 1 {
		last := alphanumeric(words[len(words)-1])
		if !isDescriptor(last) && !isStopWord(last) {
			break
		}
		words = words[:len(words)-1]
	}
	return trimPunct(strings.Join(words, " "))
}

// Name strips the leading quantity and unit from a cleaned line, leaving the
// ingredient name ("200 g of spaghetti" becomes "spaghetti").
func Name(line string) string {
	words := strings.Fields(Clean(line))
	if len(words) == 0 {
		return ""
	}

	if _, _, ok := parseLeading(words[0]); ok {
		words = words[1:]
		if len(words) > 0 {
			if _, ok := parseFraction(words[0]); ok {
				words = words[1:]
			}
		}
	}
	for len(words) > 1 {
		w := alphanumeric(words[0])
		if !isUnit(w) && w != "of" && w != "x" {
			break
		}
		words = words[1:]
	}
	return strings.Join(words, " ")
}

// indexWord returns the byte offset in s of the first standalone occurrence
// of the ASCII word, ignoring ASCII case, or -1.
func indexWord(s, word string) int {
	for i := 0; i+len(word) <= len(s); i++ {
		if !strings.EqualFold(s[i:i+len(word)], word) {
			continue
		}
		if isBoundary(s, i-1) && isBoundary(s, i+len(word)) {
			return i
		}
	}
	return -1
}

// isBoundary reports whether the byte at i ends a word. Bytes of multi-byte
// runes count as letters.
func isBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c >= 0x80:
		return false
	}
	return true
}

func trimPunct(s string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), ",;:-–"))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
