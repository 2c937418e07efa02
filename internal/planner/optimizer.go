package planner

import (
	"meal-planner/internal/ingredient"
	"meal-planner/internal/recipe"
)

// exactSearchLimit is the largest collection searched exhaustively. Above it
// the number of combinations grows too fast and the greedy pass takes over.
const exactSearchLimit = 14

// Strategy names the search that produced a Selection.
type Strategy string

const (
	StrategyNone   Strategy = "none"
	StrategySingle Strategy = "single"
	StrategyExact  Strategy = "exact"
	StrategyGreedy Strategy = "greedy"
)

// Selection is a subset of a recipe collection chosen for a meal plan.
type Selection struct {
	Recipes []recipe.Recipe
	// Score is the summed pairwise overlap of the selected recipes.
	Score    int
	Strategy Strategy
}

// IDs returns the identities of the selected recipes.
func (s Selection) IDs() []string {
	ids := make([]string, len(s.Recipes))
	for i, r := range s.Recipes {
		ids[i] = r.ID
	}
	return ids
}

// Optimize picks k recipes whose ingredients overlap the most, so the
// resulting shopping list stays short. k is clamped to the collection size.
// previous holds the recipe IDs of the last plan; among equally good
// selections one that differs from it is preferred.
func Optimize(recipes []recipe.Recipe, k int, previous []string) Selection {
	if len(recipes) == 0 || k <= 0 {
		return Selection{Strategy: StrategyNone}
	}
	if k > len(recipes) {
		k = len(recipes)
	}

	p := newPool(recipes)
	var (
		picked   []int
		strategy Strategy
	)
	switch {
	case k == 1:
		picked, strategy = []int{p.largest()}, StrategySingle
	case len(recipes) <= exactSearchLimit:
		picked, strategy = p.exact(k, previous), StrategyExact
	default:
		picked, strategy = p.greedy(k), StrategyGreedy
	}

	sel := Selection{Score: p.score(picked), Strategy: strategy}
	for _, i := range picked {
		sel.Recipes = append(sel.Recipes, recipes[i])
	}
	return sel
}

// pool holds the grouping-key sets of a collection and their pairwise overlap.
type pool struct {
	recipes []recipe.Recipe
	sizes   []int
	overlap [][]int
}

func newPool(recipes []recipe.Recipe) *pool {
	keys := make([]map[string]struct{}, len(recipes))
	sizes := make([]int, len(recipes))
	for i, r := range recipes {
		keys[i] = keySet(r)
		sizes[i] = len(keys[i])
	}

	overlap := make([][]int, len(recipes))
	for i := range overlap {
		overlap[i] = make([]int, len(recipes))
	}
	for i := range recipes {
		for j := i + 1; j < len(recipes); j++ {
			n := shared(keys[i], keys[j])
			overlap[i][j], overlap[j][i] = n, n
		}
	}
	return &pool{recipes: recipes, sizes: sizes, overlap: overlap}
}

func keySet(r recipe.Recipe) map[string]struct{} {
	keys := make(map[string]struct{}, len(r.Ingredients))
	for _, line := range r.Ingredients {
		if k, ok := ingredient.Key(line); ok {
			keys[k] = struct{}{}
		}
	}
	return keys
}

func shared(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

func (p *pool) score(picked []int) int {
	total := 0
	for i := range picked {
		for j := i + 1; j < len(picked); j++ {
			total += p.overlap[picked[i]][picked[j]]
		}
	}
	return total
}

// largest returns the recipe with the most distinct ingredients.
func (p *pool) largest() int {
	best := 0
	for i, size := range p.sizes {
		if size > p.sizes[best] {
			best = i
		}
	}
	return best
}

// exact enumerates every k-combination in lexicographic order.
func (p *pool) exact(k int, previous []string) []int {
	n := len(p.recipes)
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}

	best := -1
	var first, fresh []int
	for {
		s := p.score(idx)
		switch {
		case s > best:
			best = s
			first = append([]int(nil), idx...)
			fresh = nil
			if p.differs(idx, previous) {
				fresh = first
			}
		case s == best && fresh == nil && p.differs(idx, previous):
			fresh = append([]int(nil), idx...)
		}

		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			break
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}

	if len(previous) > 0 && fresh != nil {
		return fresh
	}
	return first
}

// differs reports whether picked names a different set of recipes than previous.
func (p *pool) differs(picked []int, previous []string) bool {
	if len(previous) == 0 {
		return false
	}
	if len(picked) != len(previous) {
		return true
	}
	prev := make(map[string]struct{}, len(previous))
	for _, id := range previous {
		prev[id] = struct{}{}
	}
	for _, i := range picked {
		if _, ok := prev[p.recipes[i].ID]; !ok {
			return true
		}
	}
	return false
}

// greedy seeds with the recipe overlapping most with the whole collection and
// then keeps adding the recipe that overlaps most with those already picked.
// Ties go to the recipe with fewer ingredients, then to the earlier one.
func (p *pool) greedy(k int) []int {
	n := len(p.recipes)
	taken := make([]bool, n)

	seed, seedTotal := -1, -1
	for i := 0; i < n; i++ {
		total := 0
		for j := 0; j < n; j++ {
			total += p.overlap[i][j]
		}
		if p.better(i, total, seed, seedTotal) {
			seed, seedTotal = i, total
		}
	}
	picked := []int{seed}
	taken[seed] = true

	for len(picked) < k {
		next, nextGain := -1, -1
		for i := 0; i < n; i++ {
			if taken[i] {
				continue
			}
			gain := 0
			for _, s := range picked {
				gain += p.overlap[i][s]
			}
			if p.better(i, gain, next, nextGain) {
				next, nextGain = i, gain
			}
		}
		picked = append(picked, next)
		taken[next] = true
	}
	return picked
}

// better reports whether candidate i with value v beats the current best.
// Candidates are visited in collection order, so equal ones keep the earlier.
func (p *pool) better(i, v, best, bestV int) bool {
	if best < 0 || v > bestV {
		return true
	}
	return v == bestV && p.sizes[i] < p.sizes[best]
}
