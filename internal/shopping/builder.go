// Package shopping aggregates the ingredient lines of several recipes into a
// shopping list.
package shopping

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"meal-planner/internal/ingredient"
	"meal-planner/internal/recipe"
)

type group struct {
	key        string
	lines      []string
	recipes    []string
	quantities []ingredient.Quantity
}

// Build groups the ingredient lines of recipes by grouping key. Lines with no
// key are left out. Items that several lines share come first, then items are
// ordered by key.
func Build(recipes []recipe.Recipe) []Item {
	groups := make(map[string]*group)
	var order []string

	for _, r := range recipes {
		for _, line := range r.Ingredients {
			key, ok := ingredient.Key(line)
			if !ok {
				continue
			}
			g, seen := groups[key]
			if !seen {
				g = &group{key: key}
				groups[key] = g
				order = append(order, key)
			}
			g.lines = append(g.lines, line)
			g.recipes = append(g.recipes, r.Title)
			if q, ok := ingredient.ParseQuantity(line); ok {
				g.quantities = append(g.quantities, q)
			}
		}
	}

	items := make([]Item, 0, len(order))
	for _, key := range order {
		items = append(items, groups[key].item())
	}
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].RecipeCount() != items[b].RecipeCount() {
			return items[a].RecipeCount() > items[b].RecipeCount()
		}
		return items[a].Key < items[b].Key
	})
	return items
}

func (g *group) item() Item {
	it := Item{
		Key:     g.key,
		Lines:   g.lines,
		Recipes: g.recipes,
	}

	if len(g.lines) == 1 {
		it.Display = ingredient.Clean(g.lines[0])
		if len(g.quantities) == 1 {
			amount := g.quantities[0].Amount
			it.Quantity = &amount
			it.Unit = g.quantities[0].Unit
		}
		return it
	}

	if len(g.quantities) == 0 {
		it.Display = ingredient.Clean(g.lines[0])
		return it
	}

	var total float64
	for _, q := range g.quantities {
		total += q.Amount
		if it.Unit == "" {
			it.Unit = q.Unit
		}
	}
	it.Quantity = &total
	it.Display = display(total, it.Unit, ingredient.Name(g.lines[0]))
	return it
}

func display(amount float64, unit, name string) string {
	words := strings.Fields(name)
	if n := len(words); n > 0 {
		last := ingredient.Singularize(strings.ToLower(words[n-1]))
		if amount > 1 {
			last = ingredient.Pluralize(last)
		}
		words[n-1] = last
	}

	parts := []string{FormatAmount(amount)}
	if unit != "" {
		parts = append(parts, unit)
	}
	parts = append(parts, words...)
	return strings.Join(parts, " ")
}

// FormatAmount renders a whole amount without decimals and anything else with
// one decimal place.
func FormatAmount(amount float64) string {
	if math.Abs(amount-math.Round(amount)) < 1e-9 {
		return strconv.FormatFloat(math.Round(amount), 'f', 0, 64)
	}
	return strconv.FormatFloat(amount, 'f', 1, 64)
}

// FormatText renders items as a plain-text list for sharing. Items asked for
// by more than one line carry the line count.
func FormatText(items []Item) string {
	if len(items) == 0 {
		return "Shopping list is empty."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Shopping list (%d items)\n", len(items))
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it.Display)
		if it.IsCommon() {
			fmt.Fprintf(&b, " (x%d)", it.RecipeCount())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
