package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository is a database-backed store for saved recipes.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

const upsertRecipe = `
INSERT INTO recipes (id, title, source_url, data, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	title = excluded.title,
	source_url = excluded.source_url,
	data = excluded.data`

// Save inserts or updates a recipe.
func (r *Repository) Save(ctx context.Context, rec Recipe) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe to JSON: %w", err)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	if _, err := r.db.ExecContext(ctx, upsertRecipe, rec.ID, rec.Title, rec.SourceURL, string(data), createdAt.UTC()); err != nil {
		return fmt.Errorf("failed to save recipe %s: %w", rec.ID, err)
	}
	return nil
}

// Get retrieves a recipe by its ID.
func (r *Repository) Get(ctx context.Context, id string) (Recipe, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM recipes WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Recipe{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Recipe{}, fmt.Errorf("failed to get recipe by ID: %w", err)
	}
	return decode(data)
}

// GetByIDs retrieves recipes in the order of ids. Unknown IDs are skipped.
func (r *Repository) GetByIDs(ctx context.Context, ids []string) ([]Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	found, err := r.query(ctx, `SELECT data FROM recipes WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipes by IDs: %w", err)
	}
	byID := make(map[string]Recipe, len(found))
	for _, rec := range found {
		byID[rec.ID] = rec
	}

	recipes := make([]Recipe, 0, len(ids))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			recipes = append(recipes, rec)
		}
	}
	return recipes, nil
}

// List retrieves all recipes, oldest first.
func (r *Repository) List(ctx context.Context) ([]Recipe, error) {
	recipes, err := r.query(ctx, `SELECT data FROM recipes ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

// Count returns the number of saved recipes.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return n, nil
}

// Delete removes a recipe.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (r *Repository) query(ctx context.Context, q string, args ...any) ([]Recipe, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		rec, err := decode(data)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, rec)
	}
	return recipes, rows.Err()
}

func decode(data string) (Recipe, error) {
	var rec Recipe
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return Recipe{}, fmt.Errorf("failed to unmarshal recipe JSON: %w", err)
	}
	return rec, nil
}
