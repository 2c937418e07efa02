package shopping

// Item is one line of a shopping list: every ingredient line across the
// requested recipes that shares the same grouping key.
type Item struct {
	// Key is the grouping key. It is not meant for display.
	Key     string   `json:"key"`
	Display string   `json:"display"`
	Lines   []string `json:"lines"`
	// Recipes holds the title of the recipe behind each entry of Lines, so a
	// recipe listing the same ingredient twice appears twice.
	Recipes  []string `json:"recipes"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     string   `json:"unit,omitempty"`
}

// RecipeCount is the number of ingredient lines that contributed to the item.
func (i Item) RecipeCount() int {
	return len(i.Lines)
}

// IsCommon reports whether more than one line asks for this ingredient.
func (i Item) IsCommon() bool {
	return i.RecipeCount() > 1
}
