package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"meal-planner/internal/metrics"
	"meal-planner/internal/recipe"
)

// ClipRecipe fetches url, extracts its recipe and saves it.
func (a *App) ClipRecipe(ctx context.Context, url string) (recipe.Recipe, error) {
	r, source, err := a.recipeClipper.Clip(ctx, url)
	if err != nil {
		outcome := metrics.OutcomeFetchError
		if errors.Is(err, recipe.ErrExtractionFailed) {
			outcome = metrics.OutcomeFailed
		}
		a.metrics.RecordExtraction(outcome)
		a.logger.Warn("clip failed", zap.String("url", url), zap.String("outcome", outcome), zap.Error(err))
		return recipe.Recipe{}, err
	}
	a.metrics.RecordExtraction(string(source))

	if err := a.recipeRepo.Save(ctx, r); err != nil {
		return recipe.Recipe{}, fmt.Errorf("failed to save recipe: %w", err)
	}
	a.logger.Info("recipe clipped",
		zap.String("recipe_id", r.ID),
		zap.String("title", r.Title),
		zap.String("url", url),
		zap.String("source", string(source)))
	return r, nil
}

// IngestReport summarizes a batch of clipped URLs.
type IngestReport struct {
	Saved  []recipe.Recipe
	Failed map[string]error
}

// IngestURLs clips each URL in turn. A failing URL is recorded in the report
// and does not stop the batch; only context cancellation does.
func (a *App) IngestURLs(ctx context.Context, urls []string) (IngestReport, error) {
	report := IngestReport{Failed: map[string]error{}}
	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		r, err := a.ClipRecipe(ctx, url)
		if err != nil {
			report.Failed[url] = err
			continue
		}
		report.Saved = append(report.Saved, r)
	}
	a.logger.Info("ingestion complete", zap.Int("saved", len(report.Saved)), zap.Int("failed", len(report.Failed)))
	return report, nil
}
