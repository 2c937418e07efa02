// Package planner chooses which saved recipes to cook together so that their
// ingredients overlap as much as possible.
package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"meal-planner/internal/recipe"
)

// ErrNoRecipes is returned when there is nothing to plan from.
var ErrNoRecipes = errors.New("no saved recipes to plan from")

// RecipeSource lists the saved recipe collection.
type RecipeSource interface {
	List(ctx context.Context) ([]recipe.Recipe, error)
}

// PlanStore remembers generated plans.
type PlanStore interface {
	Save(ctx context.Context, plan MealPlan) error
	Latest(ctx context.Context) (*MealPlan, error)
}

// Planner handles the generation of meal plans.
type Planner struct {
	recipes RecipeSource
	plans   PlanStore
	now     func() time.Time
	newID   func() string
}

// NewPlanner creates a new Planner instance.
func NewPlanner(recipes RecipeSource, plans PlanStore) *Planner {
	return &Planner{
		recipes: recipes,
		plans:   plans,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// GeneratePlan selects k recipes from the saved collection, preferring a
// different set than the last plan when several are equally good, and stores
// the result as the new latest plan.
func (p *Planner) GeneratePlan(ctx context.Context, k int) (*MealPlan, Selection, error) {
	all, err := p.recipes.List(ctx)
	if err != nil {
		return nil, Selection{}, fmt.Errorf("failed to load recipes: %w", err)
	}
	if len(all) == 0 {
		return nil, Selection{}, ErrNoRecipes
	}

	var previous []string
	last, err := p.plans.Latest(ctx)
	if err != nil {
		return nil, Selection{}, fmt.Errorf("failed to load previous plan: %w", err)
	}
	if last != nil {
		previous = last.RecipeIDs
	}

	sel := Optimize(all, k, previous)
	if len(sel.Recipes) == 0 {
		return nil, sel, fmt.Errorf("invalid meal count %d", k)
	}

	plan := &MealPlan{
		ID:        p.newID(),
		RecipeIDs: sel.IDs(),
		Strategy:  sel.Strategy,
		Score:     sel.Score,
		CreatedAt: p.now(),
	}
	if err := p.plans.Save(ctx, *plan); err != nil {
		return nil, sel, fmt.Errorf("failed to save meal plan: %w", err)
	}
	return plan, sel, nil
}
