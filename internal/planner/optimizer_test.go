package planner

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/recipe"
)

func r(id string, ingredients ...string) recipe.Recipe {
	return recipe.Recipe{ID: id, Title: id, Ingredients: ingredients}
}

func TestOptimize_PrefersOverlap(t *testing.T) {
	a := r("A", "200 g pasta", "2 tomatoes", "1 garlic", "1 onion", "basil")
	b := r("B", "pasta", "tomato", "garlic", "onion", "salt")
	c := r("C", "rice", "chicken", "lime")

	orders := [][]recipe.Recipe{{a, b, c}, {c, a, b}, {b, c, a}}
	for i, recipes := range orders {
		t.Run(fmt.Sprintf("order %d", i), func(t *testing.T) {
			sel := Optimize(recipes, 2, nil)
			assert.ElementsMatch(t, []string{"A", "B"}, sel.IDs())
			assert.Equal(t, 4, sel.Score)
			assert.Equal(t, StrategyExact, sel.Strategy)
		})
	}
}

func TestOptimize_Single(t *testing.T) {
	recipes := []recipe.Recipe{
		r("small", "salt"),
		r("big", "rice", "beans", "onion"),
		r("also-big", "pasta", "cream", "bacon"),
	}

	sel := Optimize(recipes, 1, nil)
	assert.Equal(t, []string{"big"}, sel.IDs())
	assert.Equal(t, StrategySingle, sel.Strategy)
	assert.Zero(t, sel.Score)
}

func TestOptimize_Edges(t *testing.T) {
	recipes := []recipe.Recipe{r("A", "salt"), r("B", "salt"), r("C", "pepper")}

	t.Run("empty collection", func(t *testing.T) {
		sel := Optimize(nil, 3, nil)
		assert.Empty(t, sel.Recipes)
		assert.Equal(t, StrategyNone, sel.Strategy)
	})

	t.Run("non-positive k", func(t *testing.T) {
		assert.Empty(t, Optimize(recipes, 0, nil).Recipes)
		assert.Empty(t, Optimize(recipes, -1, nil).Recipes)
	})

	t.Run("k is clamped", func(t *testing.T) {
		sel := Optimize(recipes, 10, nil)
		assert.Equal(t, []string{"A", "B", "C"}, sel.IDs())
		assert.Equal(t, 1, sel.Score)
	})

	t.Run("input is not reordered", func(t *testing.T) {
		Optimize(recipes, 2, nil)
		assert.Equal(t, "A", recipes[0].ID)
		assert.Equal(t, "C", recipes[2].ID)
	})
}

func TestOptimize_Variety(t *testing.T) {
	recipes := []recipe.Recipe{
		r("A", "pasta", "tomato"),
		r("B", "pasta", "tomato"),
		r("C", "rice", "lime"),
		r("D", "rice", "lime"),
	}

	assert.Equal(t, []string{"A", "B"}, Optimize(recipes, 2, nil).IDs())
	assert.Equal(t, []string{"C", "D"}, Optimize(recipes, 2, []string{"B", "A"}).IDs())
	assert.Equal(t, []string{"A", "B"}, Optimize(recipes, 2, []string{"C", "D"}).IDs())

	t.Run("single optimum is kept", func(t *testing.T) {
		sel := Optimize(recipes[:3], 2, []string{"A", "B"})
		assert.Equal(t, []string{"A", "B"}, sel.IDs())
	})
}

var pantry = []string{
	"tomato", "onion", "garlic", "basil", "rice", "lemon", "chicken", "carrot",
	"potato", "pepper", "spinach", "mushroom", "pasta", "egg", "ginger", "lime",
}

func randomCollection(rng *rand.Rand, n int) []recipe.Recipe {
	recipes := make([]recipe.Recipe, n)
	for i := range recipes {
		var lines []string
		for _, j := range rng.Perm(len(pantry))[:2+rng.Intn(5)] {
			lines = append(lines, pantry[j])
		}
		recipes[i] = r(fmt.Sprintf("r%d", i), lines...)
	}
	return recipes
}

func TestExactNeverScoresBelowGreedy(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		recipes := randomCollection(rng, 3+rng.Intn(exactSearchLimit-2))
		p := newPool(recipes)
		for k := 2; k <= len(recipes) && k <= 6; k++ {
			exact := p.score(p.exact(k, nil))
			greedy := p.score(p.greedy(k))
			require.GreaterOrEqual(t, exact, greedy, "round %d, n=%d, k=%d", round, len(recipes), k)
		}
	}
}

func TestLargestBreaksTiesByFirstOccurrence(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		recipes := randomCollection(rng, 1+rng.Intn(exactSearchLimit))
		sel := Optimize(recipes, 1, nil)
		require.Len(t, sel.Recipes, 1)

		p := newPool(recipes)
		want := 0
		for i, size := range p.sizes {
			if size > p.sizes[want] {
				want = i
			}
		}
		assert.Equal(t, recipes[want].ID, sel.Recipes[0].ID)
	}
}

func TestOptimize_Greedy(t *testing.T) {
	filler := []string{
		"apple", "banana", "cherry", "date", "fig", "grape", "kiwi",
		"mango", "melon", "peach", "pear", "plum", "quince",
	}
	var recipes []recipe.Recipe
	for _, f := range filler {
		recipes = append(recipes, r(f, f))
	}
	// X, Y and Z overlap pairwise by two; Y is the smallest.
	recipes = append(recipes[:3], append([]recipe.Recipe{r("X", "tomato", "onion", "garlic", "basil")}, recipes[3:]...)...)
	recipes = append(recipes[:5], append([]recipe.Recipe{r("Y", "tomato", "onion")}, recipes[5:]...)...)
	recipes = append(recipes[:7], append([]recipe.Recipe{r("Z", "tomato", "onion", "lemon", "lime")}, recipes[7:]...)...)
	require.Greater(t, len(recipes), exactSearchLimit)

	sel := Optimize(recipes, 2, nil)
	assert.Equal(t, StrategyGreedy, sel.Strategy)
	assert.Equal(t, []string{"Y", "X"}, sel.IDs())
	assert.Equal(t, 2, sel.Score)

	sel = Optimize(recipes, 3, nil)
	assert.Equal(t, []string{"Y", "X", "Z"}, sel.IDs())
	assert.Equal(t, 6, sel.Score)

	sel = Optimize(recipes, 8, nil)
	assert.Len(t, sel.Recipes, 8)
	seen := map[string]bool{}
	for _, id := range sel.IDs() {
		assert.False(t, seen[id], "duplicate recipe %s", id)
		seen[id] = true
	}
}
