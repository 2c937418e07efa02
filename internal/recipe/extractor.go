package recipe

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// Extractor turns an HTML document into a Recipe. Structured data
// (application/ld+json) is tried first; page headings are the fallback.
type Extractor struct {
	now   func() time.Time
	newID func() string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// WithIDGenerator overrides how recipe IDs are generated.
func WithIDGenerator(newID func() string) Option {
	return func(e *Extractor) { e.newID = newID }
}

// NewExtractor creates an Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExtractor = NewExtractor()

// Extract parses a recipe from page using the default Extractor.
func Extract(page, sourceURL string) (Recipe, error) {
	return defaultExtractor.Extract(page, sourceURL)
}

// Extract parses a recipe from page. sourceURL is only carried over to the result.
func (e *Extractor) Extract(page, sourceURL string) (Recipe, error) {
	r, _, err := e.ExtractWithSource(page, sourceURL)
	return r, err
}

// ExtractWithSource is Extract that also reports which pass produced the recipe.
func (e *Extractor) ExtractWithSource(page, sourceURL string) (Recipe, Source, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return Recipe{}, SourceNone, ErrExtractionFailed
	}

	source := SourceStructured
	r := fromStructuredData(doc)
	if !r.HasContent() {
		source = SourceHeuristic
		r = fromHeadings(doc)
	}
	if !r.HasContent() {
		return Recipe{}, SourceNone, ErrExtractionFailed
	}

	if r.Title == "" {
		r.Title = pageTitle(doc)
	}
	if r.Title == "" {
		r.Title = DefaultTitle
	}
	r.ID = e.newID()
	r.SourceURL = sourceURL
	r.CreatedAt = e.now()
	return r, source, nil
}

func fromStructuredData(doc *goquery.Document) Recipe {
	var found Recipe
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		typ, _ := s.Attr("type")
		if !strings.EqualFold(strings.TrimSpace(typ), "application/ld+json") {
			return true
		}
		r, ok := parseStructuredData(s.Text())
		if !ok {
			return true
		}
		found = r
		return false
	})
	return found
}

var (
	ingredientHeadings  = []string{"ingredients"}
	instructionHeadings = []string{"instructions", "method", "directions", "preparation", "steps"}
)

func fromHeadings(doc *goquery.Document) Recipe {
	root := doc.Get(0)
	return Recipe{
		Title:       pageTitle(doc),
		Ingredients: section(root, ingredientHeadings),
		Steps:       section(root, instructionHeadings),
	}
}

// pageTitle returns the first <h1>, else the <title>, tag-stripped and trimmed.
func pageTitle(doc *goquery.Document) string {
	if t := collapseSpace(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	return collapseSpace(doc.Find("title").First().Text())
}

// plainText strips markup and entities from a structured-data string.
func plainText(s string) string {
	if strings.ContainsRune(s, '<') {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			return collapseSpace(doc.Text())
		}
	}
	return collapseSpace(html.UnescapeString(s))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
