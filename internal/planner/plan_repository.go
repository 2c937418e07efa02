package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// PlanRepository is a database-backed repository for meal plans.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{db: d}
}

// Save inserts a new meal plan into the database.
func (r *PlanRepository) Save(ctx context.Context, plan MealPlan) error {
	ids, err := json.Marshal(plan.RecipeIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe IDs: %w", err)
	}
	createdAt := plan.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO meal_plans (id, recipe_ids, strategy, score, created_at) VALUES (?, ?, ?, ?, ?)`,
		plan.ID, string(ids), string(plan.Strategy), plan.Score, createdAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert meal plan: %w", err)
	}
	return nil
}

// Latest returns the most recent meal plan, or nil when none was saved.
func (r *PlanRepository) Latest(ctx context.Context) (*MealPlan, error) {
	plans, err := r.ListRecent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, nil
	}
	return &plans[0], nil
}

// ListRecent retrieves the N most recent meal plans, newest first.
func (r *PlanRepository) ListRecent(ctx context.Context, limit int) ([]MealPlan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, recipe_ids, strategy, score, created_at FROM meal_plans ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent meal plans: %w", err)
	}
	defer rows.Close()

	var plans []MealPlan
	for rows.Next() {
		var (
			plan     MealPlan
			ids      string
			strategy string
		)
		if err := rows.Scan(&plan.ID, &ids, &strategy, &plan.Score, &plan.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan meal plan: %w", err)
		}
		if err := json.Unmarshal([]byte(ids), &plan.RecipeIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recipe IDs of plan %s: %w", plan.ID, err)
		}
		plan.Strategy = Strategy(strategy)
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list recent meal plans: %w", err)
	}
	return plans, nil
}
