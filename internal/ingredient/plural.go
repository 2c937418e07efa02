package ingredient

import "strings"

// irregularPlurals maps plural forms the suffix rules get wrong to their singular.
var irregularPlurals = map[string]string{
	"tomatoes":  "tomato",
	"potatoes":  "potato",
	"mangoes":   "mango",
	"avocadoes": "avocado",
	"cheeses":   "cheese",
	"olives":    "olive",
	"chives":    "chive",
	"cloves":    "clove",
	"leaves":    "leaf",
	"knives":    "knife",
	"cookies":   "cookie",
	"brownies":  "brownie",
	"pies":      "pie",
	"veggies":   "veggie",
	"chillies":  "chilli",
	"chilies":   "chili",
	"geese":     "goose",
	"mice":      "mouse",
	"molasses":  "molasses",
	"series":    "series",
	"species":   "species",
}

// uncountable nouns are identical in singular and plural.
var uncountable = set(
	"rice", "flour", "salt", "sugar", "butter", "milk", "water", "oil", "pasta",
	"spaghetti", "linguine", "fettuccine", "penne", "macaroni", "garlic", "cream",
	"yogurt", "yoghurt", "honey", "beef", "pork", "lamb", "fish", "bread", "parsley",
	"basil", "cilantro", "coriander", "thyme", "rosemary", "oregano", "cumin", "paprika",
	"cinnamon", "stock", "broth", "vinegar", "juice", "spinach", "couscous", "quinoa",
	"mince", "meat", "tofu", "wine", "coffee", "tea", "chocolate", "cocoa", "yeast",
	"asparagus", "hummus", "broccoli", "celery", "lettuce", "cheese", "dill", "mint",
	"sage", "tarragon", "turmeric", "nutmeg", "ginger", "chicken", "salmon", "tuna",
	"shrimp", "cod", "bacon", "ham", "feta", "mozzarella", "parmesan", "cheddar",
)

// pluralOf inverts irregularPlurals for the forms that are not invariant.
var pluralOf = func() map[string]string {
	m := make(map[string]string, len(irregularPlurals))
	for plural, singular := range irregularPlurals {
		if plural != singular {
			m[singular] = plural
		}
	}
	return m
}()

// Singularize reduces a lowercase token to its singular form.
func Singularize(word string) string {
	if s, ok := irregularPlurals[word]; ok {
		return s
	}
	if _, ok := uncountable[word]; ok {
		return word
	}
	if len(word) <= 3 {
		return word
	}
	switch {
	case strings.HasSuffix(word, "ies") && len(word) > 4:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "ves"):
		return word[:len(word)-3] + "f"
	case strings.HasSuffix(word, "es"):
		stem := word[:len(word)-2]
		if hasSibilantEnding(stem) {
			return stem
		}
		return word[:len(word)-1]
	case strings.HasSuffix(word, "ss"), strings.HasSuffix(word, "us"), strings.HasSuffix(word, "is"):
		return word
	case strings.HasSuffix(word, "s"):
		return word[:len(word)-1]
	}
	return word
}

// Pluralize returns the plural form of a lowercase singular token. Words already
// ending in "s" are returned unchanged.
func Pluralize(word string) string {
	if word == "" {
		return word
	}
	if p, ok := pluralOf[word]; ok {
		return p
	}
	if _, ok := uncountable[word]; ok {
		return word
	}
	if _, ok := irregularPlurals[word]; ok {
		return word
	}
	switch {
	case strings.HasSuffix(word, "s"):
		return word
	case strings.HasSuffix(word, "y") && len(word) > 1 && !isVowel(word[len(word)-2]):
		return word[:len(word)-1] + "ies"
	case hasSibilantEnding(word):
		return word + "es"
	}
	return word + "s"
}

func hasSibilantEnding(s string) bool {
	for _, suffix := range []string{"s", "x", "z", "ch", "sh"} {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
