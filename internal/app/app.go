package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shopping"
)

// ErrNoPlan is returned when a shopping list is asked for before any plan exists.
var ErrNoPlan = errors.New("no meal plan generated yet")

// Clipper fetches a page and extracts a recipe from it.
type Clipper interface {
	Clip(ctx context.Context, url string) (recipe.Recipe, recipe.Source, error)
}

// App holds the application's dependencies.
type App struct {
	recipeClipper Clipper
	recipeRepo    *recipe.Repository
	planRepo      *planner.PlanRepository
	mealPlanner   *planner.Planner
	metrics       *metrics.Collectors
	logger        *zap.Logger

	dbPath           string
	defaultMealCount int
}

// NewApp creates and initializes a new App instance.
func NewApp(
	recipeClipper Clipper,
	recipeRepo *recipe.Repository,
	planRepo *planner.PlanRepository,
	collectors *metrics.Collectors,
	logger *zap.Logger,
	dbPath string,
	defaultMealCount int,
) *App {
	if defaultMealCount <= 0 {
		defaultMealCount = 5
	}
	return &App{
		recipeClipper:    recipeClipper,
		recipeRepo:       recipeRepo,
		planRepo:         planRepo,
		mealPlanner:      planner.NewPlanner(recipeRepo, planRepo),
		metrics:          collectors,
		logger:           logger,
		dbPath:           dbPath,
		defaultMealCount: defaultMealCount,
	}
}

// ListRecipes returns all saved recipes, oldest first.
func (a *App) ListRecipes(ctx context.Context) ([]recipe.Recipe, error) {
	return a.recipeRepo.List(ctx)
}

// GetRecipe returns a saved recipe.
func (a *App) GetRecipe(ctx context.Context, id string) (recipe.Recipe, error) {
	return a.recipeRepo.Get(ctx, id)
}

// DeleteRecipe removes a saved recipe.
func (a *App) DeleteRecipe(ctx context.Context, id string) error {
	if err := a.recipeRepo.Delete(ctx, id); err != nil {
		return err
	}
	a.logger.Info("recipe deleted", zap.String("recipe_id", id))
	return nil
}

// ShoppingList builds the shopping list for the given saved recipes.
func (a *App) ShoppingList(ctx context.Context, ids []string) ([]shopping.Item, error) {
	recipes, err := a.recipeRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if missing := missingIDs(ids, recipes); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", recipe.ErrNotFound, missing)
	}
	return a.buildList(recipes), nil
}

func (a *App) buildList(recipes []recipe.Recipe) []shopping.Item {
	items := shopping.Build(recipes)
	a.metrics.RecordShoppingList(len(items))
	return items
}

// PlanResult is a generated meal plan with the recipes it selected and their
// shopping list.
type PlanResult struct {
	Plan     *planner.MealPlan
	Recipes  []recipe.Recipe
	Shopping []shopping.Item
}

// PlanMeals selects k recipes from the saved collection. A k of zero or less
// means the configured default.
func (a *App) PlanMeals(ctx context.Context, k int) (PlanResult, error) {
	if k <= 0 {
		k = a.defaultMealCount
	}

	start := time.Now()
	plan, sel, err := a.mealPlanner.GeneratePlan(ctx, k)
	if err != nil {
		return PlanResult{}, fmt.Errorf("failed to generate plan: %w", err)
	}
	took := time.Since(start)
	a.metrics.RecordPlan(string(sel.Strategy), took)
	a.logger.Info("meal plan generated",
		zap.String("plan_id", plan.ID),
		zap.Int("requested", k),
		zap.Int("selected", len(sel.Recipes)),
		zap.String("strategy", string(sel.Strategy)),
		zap.Int("score", sel.Score),
		zap.Duration("took", took))

	return PlanResult{
		Plan:     plan,
		Recipes:  sel.Recipes,
		Shopping: a.buildList(sel.Recipes),
	}, nil
}

// LatestPlan returns the most recent plan with its shopping list. Recipes
// deleted since the plan was made are left out.
func (a *App) LatestPlan(ctx context.Context) (PlanResult, error) {
	plan, err := a.planRepo.Latest(ctx)
	if err != nil {
		return PlanResult{}, err
	}
	if plan == nil {
		return PlanResult{}, ErrNoPlan
	}
	recipes, err := a.recipeRepo.GetByIDs(ctx, plan.RecipeIDs)
	if err != nil {
		return PlanResult{}, err
	}
	return PlanResult{
		Plan:     plan,
		Recipes:  recipes,
		Shopping: a.buildList(recipes),
	}, nil
}

// Health is a snapshot of the process and the saved collection.
type Health struct {
	metrics.SysHealth
	Recipes int
}

// Health reports runtime statistics and the number of saved recipes.
func (a *App) Health(ctx context.Context) (Health, error) {
	n, err := a.recipeRepo.Count(ctx)
	if err != nil {
		return Health{}, err
	}
	return Health{SysHealth: metrics.GetSysHealth(a.dbPath), Recipes: n}, nil
}

func (h Health) String() string {
	return fmt.Sprintf("Recipes: %d\n%s", h.Recipes, h.SysHealth.String())
}

func missingIDs(ids []string, found []recipe.Recipe) []string {
	have := make(map[string]struct{}, len(found))
	for _, r := range found {
		have[r.ID] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
