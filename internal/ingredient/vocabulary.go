package ingredient

// The tables below are read-only after package initialization.

// units maps every recognised spelling of a measurement unit to its canonical form.
var units = map[string]string{
	// mass
	"g": "g", "gr": "g", "gram": "g", "grams": "g", "gramme": "g", "grammes": "g",
	"kg": "kg", "kgs": "kg", "kilo": "kg", "kilos": "kg", "kilogram": "kg", "kilograms": "kg",
	"mg": "mg", "milligram": "mg", "milligrams": "mg",
	"oz": "oz", "ounce": "oz", "ounces": "oz",
	"lb": "lb", "lbs": "lb", "pound": "lb", "pounds": "lb",

	// volume
	"ml": "ml", "millilitre": "ml", "millilitres": "ml", "milliliter": "ml", "milliliters": "ml",
	"cl": "cl", "dl": "dl",
	"l": "l", "litre": "l", "litres": "l", "liter": "l", "liters": "l",
	"tsp": "tsp", "tsps": "tsp", "teaspoon": "tsp", "teaspoons": "tsp",
	"tbsp": "tbsp", "tbsps": "tbsp", "tbs": "tbsp", "tbl": "tbsp", "tablespoon": "tbsp", "tablespoons": "tbsp",
	"cup": "cup", "cups": "cup",
	"pint": "pint", "pints": "pint", "pt": "pint",
	"quart": "quart", "quarts": "quart", "qt": "quart",
	"gallon": "gallon", "gallons": "gallon",
	"floz": "floz",

	// count
	"pinch": "pinch", "pinches": "pinch",
	"dash": "dash", "dashes": "dash",
	"clove": "clove", "cloves": "clove",
	"can": "can", "cans": "can", "tin": "tin", "tins": "tin",
	"jar": "jar", "jars": "jar",
	"packet": "packet", "packets": "packet", "pack": "pack", "packs": "pack",
	"package": "package", "packages": "package",
	"bunch": "bunch", "bunches": "bunch",
	"handful": "handful", "handfuls": "handful",
	"sprig": "sprig", "sprigs": "sprig",
	"stick": "stick", "sticks": "stick",
	"slice": "slice", "slices": "slice",
	"piece": "piece", "pieces": "piece",
	"head": "head", "heads": "head",
	"stalk": "stalk", "stalks": "stalk",
	"knob": "knob", "knobs": "knob",
	"sheet": "sheet", "sheets": "sheet",
	"drop": "drop", "drops": "drop",
}

// descriptors are preparation and state words that never identify an ingredient.
var descriptors = set(
	"chopped", "finely", "roughly", "coarsely", "diced", "minced", "sliced", "thinly",
	"grated", "shredded", "crushed", "ground", "mashed", "pureed", "julienned",
	"fresh", "freshly", "frozen", "dried", "dry", "canned", "tinned", "cooked", "uncooked",
	"raw", "ripe", "large", "small", "medium", "big", "extra", "virgin",
	"light", "dark", "plain", "unsalted", "salted", "softened", "melted", "beaten",
	"whisked", "peeled", "unpeeled", "deseeded", "seeded", "pitted", "halved", "quartered",
	"cubed", "trimmed", "rinsed", "drained", "washed", "packed", "heaped", "heaping",
	"level", "rounded", "room", "temperature", "warm", "cold", "chilled", "boiling",
	"toasted", "roasted", "zested", "juiced", "boneless", "skinless", "organic",
	"homemade", "shop", "store", "bought", "optional", "divided", "good", "quality",
	"thick", "thin", "fine", "coarse", "lightly", "generous", "cut", "torn", "strips",
	"chunks", "cubes", "wedges", "rings", "lengthways", "lengthwise", "crosswise",
	"approximately", "approx", "well",
)

// stopWords are connectors that carry no ingredient meaning.
var stopWords = set(
	"of", "for", "the", "a", "an", "and", "or", "to", "into", "in", "with", "without",
	"at", "on", "from", "as", "your", "some", "each", "per", "if", "needed", "more",
	"such", "any", "other", "like", "up", "off", "x", "then", "few", "you", "use",
	"also", "until", "about", "plus", "little", "bit",
)

// purposeWords describe what an ingredient is used for. They must not become a key.
var purposeWords = set(
	"garnish", "garnishing", "serving", "serve", "glazing", "dusting", "decoration",
	"decorating", "greasing", "frying", "drizzling", "seasoning", "taste", "brushing",
	"sprinkling", "topping", "dipping", "marinating",
)

// compoundTails are head nouns too generic to stand alone without a qualifier.
var compoundTails = set(
	"sauce", "powder", "breast", "thigh", "oil", "paste", "stock", "juice", "vinegar",
	"cheese", "seed", "flake", "leaf", "extract", "syrup", "milk", "cream", "butter",
	"broth", "wine", "mince", "fillet", "zest",
)

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func isUnit(tok string) bool {
	_, ok := units[tok]
	return ok
}

func isDescriptor(tok string) bool {
	_, ok := descriptors[tok]
	return ok
}

func isStopWord(tok string) bool {
	_, ok := stopWords[tok]
	return ok
}

func isPurposeWord(tok string) bool {
	_, ok := purposeWords[tok]
	return ok
}

func isCompoundTail(tok string) bool {
	_, ok := compoundTails[tok]
	return ok
}

// CanonicalUnit returns the canonical spelling for a unit token, or false if
// the token is not a recognised unit.
func CanonicalUnit(tok string) (string, bool) {
	u, ok := units[tok]
	return u, ok
}
