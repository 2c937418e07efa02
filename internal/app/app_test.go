package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"meal-planner/internal/config"
	"meal-planner/internal/database"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
)

type clipResult struct {
	recipe recipe.Recipe
	source recipe.Source
	err    error
}

type fakeClipper map[string]clipResult

func (f fakeClipper) Clip(_ context.Context, url string) (recipe.Recipe, recipe.Source, error) {
	res, ok := f[url]
	if !ok {
		return recipe.Recipe{}, recipe.SourceNone, fmt.Errorf("failed to fetch %s: connection refused", url)
	}
	return res.recipe, res.source, res.err
}

func newTestApp(t *testing.T, clip fakeClipper) (*App, *metrics.Collectors) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "app.db")
	db, err := database.NewDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	collectors := metrics.NewCollectors(prometheus.NewRegistry())
	a := NewApp(clip, recipe.NewRepository(db.SQL), planner.NewPlanRepository(db.SQL), collectors, zap.NewNop(), dbPath, 2)
	return a, collectors
}

func clipped(id string, ingredients ...string) clipResult {
	return clipResult{
		recipe: recipe.Recipe{
			ID:          id,
			Title:       "Recipe " + id,
			Ingredients: ingredients,
			SourceURL:   "https://example.com/" + id,
			CreatedAt:   time.Now(),
		},
		source: recipe.SourceStructured,
	}
}

var kitchen = fakeClipper{
	"https://example.com/a": clipped("a", "200 g spaghetti", "2 tomatoes", "1 onion"),
	"https://example.com/b": clipped("b", "100 g spaghetti", "1 tomato", "basil"),
	"https://example.com/c": clipped("c", "rice", "1 lime"),
	"https://example.com/blog": {
		err: fmt.Errorf("https://example.com/blog: %w", recipe.ErrExtractionFailed),
	},
}

func TestClipRecipe(t *testing.T) {
	ctx := context.Background()
	a, m := newTestApp(t, kitchen)

	r, err := a.ClipRecipe(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "a", r.ID)

	saved, err := a.GetRecipe(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, r.Ingredients, saved.Ingredients)

	_, err = a.ClipRecipe(ctx, "https://example.com/blog")
	assert.ErrorIs(t, err, recipe.ErrExtractionFailed)

	_, err = a.ClipRecipe(ctx, "https://example.com/down")
	assert.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Extractions.WithLabelValues(metrics.OutcomeStructured)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Extractions.WithLabelValues(metrics.OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Extractions.WithLabelValues(metrics.OutcomeFetchError)))

	all, err := a.ListRecipes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestIngestURLs(t *testing.T) {
	a, _ := newTestApp(t, kitchen)

	report, err := a.IngestURLs(context.Background(), []string{
		"https://example.com/a", "https://example.com/blog", "https://example.com/b",
	})
	require.NoError(t, err)
	assert.Len(t, report.Saved, 2)
	require.Contains(t, report.Failed, "https://example.com/blog")
	assert.ErrorIs(t, report.Failed["https://example.com/blog"], recipe.ErrExtractionFailed)

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := a.IngestURLs(ctx, []string{"https://example.com/c"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestShoppingList(t *testing.T) {
	ctx := context.Background()
	a, m := newTestApp(t, kitchen)
	for _, u := range []string{"https://example.com/a", "https://example.com/b"} {
		_, err := a.ClipRecipe(ctx, u)
		require.NoError(t, err)
	}

	items, err := a.ShoppingList(ctx, []string{"a", "b"})
	require.NoError(t, err)
	require.NotEmpty(t, items)
	assert.Equal(t, "spaghetti", items[0].Key)
	assert.Equal(t, "300 g spaghetti", items[0].Display)
	assert.Equal(t, 1, testutil.CollectAndCount(m.ShoppingItems))

	_, err = a.ShoppingList(ctx, []string{"a", "nope"})
	assert.ErrorIs(t, err, recipe.ErrNotFound)
}

func TestPlanMeals(t *testing.T) {
	ctx := context.Background()
	a, m := newTestApp(t, kitchen)

	_, err := a.PlanMeals(ctx, 2)
	assert.ErrorIs(t, err, planner.ErrNoRecipes)

	_, err = a.LatestPlan(ctx)
	assert.ErrorIs(t, err, ErrNoPlan)

	for _, u := range []string{"https://example.com/a", "https://example.com/b", "https://example.com/c"} {
		_, err := a.ClipRecipe(ctx, u)
		require.NoError(t, err)
	}

	res, err := a.PlanMeals(ctx, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, res.Plan.RecipeIDs)
	assert.Len(t, res.Recipes, 2)
	require.NotEmpty(t, res.Shopping)
	assert.True(t, res.Shopping[0].IsCommon())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Plans.WithLabelValues(string(planner.StrategyExact))))

	latest, err := a.LatestPlan(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.Plan.ID, latest.Plan.ID)
	assert.Equal(t, len(res.Shopping), len(latest.Shopping))

	t.Run("deleted recipes drop out of the latest plan", func(t *testing.T) {
		require.NoError(t, a.DeleteRecipe(ctx, "b"))
		latest, err := a.LatestPlan(ctx)
		require.NoError(t, err)
		require.Len(t, latest.Recipes, 1)
		assert.Equal(t, "a", latest.Recipes[0].ID)
	})
}

func TestHealth(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t, kitchen)
	_, err := a.ClipRecipe(ctx, "https://example.com/c")
	require.NoError(t, err)

	h, err := a.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, h.Recipes)
	assert.Positive(t, h.DataBytes)
	assert.Contains(t, h.String(), "Recipes: 1")
}

func TestSetup(t *testing.T) {
	cfg := &config.Config{
		DatabasePath:     filepath.Join(t.TempDir(), "data", "setup.db"),
		HTTPTimeout:      time.Second,
		RedisAddr:        "127.0.0.1:1",
		PageCacheTTL:     time.Minute,
		DefaultMealCount: 3,
	}

	a, cleanup, err := Setup(context.Background(), cfg, zap.NewNop(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer cleanup()

	_, err = a.PlanMeals(context.Background(), 0)
	assert.True(t, errors.Is(err, planner.ErrNoRecipes))
	assert.Equal(t, 3, a.defaultMealCount)
}

func TestSetup_ClipPlanShop(t *testing.T) {
	pages := map[string]string{
		"/carbonara": `<html><head><script type="application/ld+json">
{"@type":"Recipe","name":"Carbonara","recipeIngredient":["200 g spaghetti","2 eggs"],"recipeInstructions":["Boil.","Mix."]}
</script></head><body></body></html>`,
		"/aglio": `<html><head><title>Aglio e Olio</title></head><body>
<h1>Aglio e Olio</h1>
<h2>Ingredients</h2><ul><li>100 g spaghetti</li><li>3 cloves garlic</li></ul>
<h2>Method</h2><ol><li>Cook the pasta.</li></ol>
</body></html>`,
		"/salad": `<html><head><script type="application/ld+json">
{"@type":"Recipe","name":"Salad","recipeIngredient":["1 lettuce","1 cucumber"]}
</script></head><body></body></html>`,
		"/about": `<html><body><h1>About us</h1></body></html>`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	cfg := &config.Config{
		DatabasePath:     filepath.Join(t.TempDir(), "e2e.db"),
		HTTPTimeout:      5 * time.Second,
		DefaultMealCount: 2,
	}
	reg := prometheus.NewRegistry()
	a, cleanup, err := Setup(context.Background(), cfg, zap.NewNop(), reg)
	require.NoError(t, err)
	defer cleanup()

	ctx := context.Background()
	report, err := a.IngestURLs(ctx, []string{
		srv.URL + "/carbonara",
		srv.URL + "/aglio",
		srv.URL + "/salad",
		srv.URL + "/about",
		srv.URL + "/missing",
	})
	require.NoError(t, err)
	require.Len(t, report.Saved, 3)
	assert.Len(t, report.Failed, 2)
	assert.True(t, errors.Is(report.Failed[srv.URL+"/about"], recipe.ErrExtractionFailed))
	assert.Equal(t, "Aglio e Olio", report.Saved[1].Title)

	res, err := a.PlanMeals(ctx, 0)
	require.NoError(t, err)
	var titles []string
	for _, r := range res.Recipes {
		titles = append(titles, r.Title)
	}
	assert.ElementsMatch(t, []string{"Carbonara", "Aglio e Olio"}, titles)
	assert.Equal(t, 1, res.Plan.Score)
	require.NotEmpty(t, res.Shopping)
	assert.Equal(t, "spaghetti", res.Shopping[0].Key)
	assert.Equal(t, "300 g spaghetti", res.Shopping[0].Display)

	latest, err := a.LatestPlan(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.Plan.ID, latest.Plan.ID)
	assert.Equal(t, res.Shopping, latest.Shopping)

	n, err := testutil.GatherAndCount(reg, "meal_planner_extractions_total")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
