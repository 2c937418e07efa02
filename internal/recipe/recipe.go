package recipe

import (
	"errors"
	"time"
)

// DefaultTitle is used when a page offers no usable title.
const DefaultTitle = "Recipe"

var (
	// ErrExtractionFailed is returned when neither structured data nor the
	// page headings yield any ingredient or step.
	ErrExtractionFailed = errors.New("could not parse a recipe from this page")

	// ErrNotFound is returned by the repository for unknown recipe IDs.
	ErrNotFound = errors.New("recipe not found")
)

// Recipe is a recipe extracted from a single web page. It is treated as
// immutable once created.
type Recipe struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Ingredients []string  `json:"ingredients"`
	Steps       []string  `json:"steps"`
	SourceURL   string    `json:"source_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// HasContent reports whether the recipe carries at least one ingredient or step.
func (r Recipe) HasContent() bool {
	return len(r.Ingredients) > 0 || len(r.Steps) > 0
}

// Source identifies which extraction pass produced a recipe.
type Source string

const (
	SourceNone       Source = "none"
	SourceStructured Source = "structured"
	SourceHeuristic  Source = "heuristic"
)
