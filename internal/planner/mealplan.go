package planner

import "time"

// MealPlan is a stored meal plan: the recipes chosen by one Optimize run.
type MealPlan struct {
	ID        string    `json:"id"`
	RecipeIDs []string  `json:"recipe_ids"`
	Strategy  Strategy  `json:"strategy"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}
