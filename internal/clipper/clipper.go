// Package clipper fetches recipe pages over HTTP and hands them to the
// recipe extractor.
package clipper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"meal-planner/internal/recipe"
)

var (
	// ErrUnexpectedStatus is returned when the page responds with anything but 200.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
	// ErrInvalidURL is returned for URLs that are not absolute http(s) URLs.
	ErrInvalidURL = errors.New("invalid recipe URL")
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "Mozilla/5.0 (compatible; meal-planner/1.0)"
)

// Clipper handles fetching and extracting recipes from URLs.
type Clipper struct {
	http      *resty.Client
	cache     PageCache
	extractor *recipe.Extractor
	logger    *zap.Logger
}

// Option configures a Clipper.
type Option func(*Clipper)

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Clipper) { c.http.SetTimeout(d) }
}

// WithUserAgent sets the User-Agent sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Clipper) {
		if ua != "" {
			c.http.SetHeader("User-Agent", ua)
		}
	}
}

// WithCache stores fetched pages in cache.
func WithCache(cache PageCache) Option {
	return func(c *Clipper) { c.cache = cache }
}

// WithExtractor replaces the default recipe extractor.
func WithExtractor(e *recipe.Extractor) Option {
	return func(c *Clipper) { c.extractor = e }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Clipper) { c.logger = l }
}

// New creates a Clipper.
func New(opts ...Option) *Clipper {
	c := &Clipper{
		http: resty.New().
			SetTimeout(defaultTimeout).
			SetHeader("User-Agent", defaultUserAgent).
			SetHeader("Accept", "text/html,application/xhtml+xml"),
		cache:     NopCache{},
		extractor: recipe.NewExtractor(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clip fetches rawURL and extracts a recipe from it. The returned Source tells
// which extraction pass succeeded.
func (c *Clipper) Clip(ctx context.Context, rawURL string) (recipe.Recipe, recipe.Source, error) {
	page, err := c.Fetch(ctx, rawURL)
	if err != nil {
		return recipe.Recipe{}, recipe.SourceNone, err
	}
	r, source, err := c.extractor.ExtractWithSource(page, rawURL)
	if err != nil {
		return recipe.Recipe{}, recipe.SourceNone, fmt.Errorf("%s: %w", rawURL, err)
	}
	c.logger.Debug("recipe extracted",
		zap.String("url", rawURL),
		zap.String("source", string(source)),
		zap.Int("ingredients", len(r.Ingredients)),
		zap.Int("steps", len(r.Steps)))
	return r, source, nil
}

// Fetch returns the HTML of rawURL, from the page cache when possible.
// Cache failures are logged and otherwise ignored.
func (c *Clipper) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := validateURL(rawURL); err != nil {
		return "", err
	}

	if page, ok, err := c.cache.Get(ctx, rawURL); err != nil {
		c.logger.Warn("page cache lookup failed", zap.String("url", rawURL), zap.Error(err))
	} else if ok {
		c.logger.Debug("page cache hit", zap.String("url", rawURL))
		return page, nil
	}

	resp, err := c.http.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("failed to fetch %s: %w: %d", rawURL, ErrUnexpectedStatus, resp.StatusCode())
	}

	page := resp.String()
	if err := c.cache.Set(ctx, rawURL, page); err != nil {
		c.logger.Warn("page cache store failed", zap.String("url", rawURL), zap.Error(err))
	}
	return page, nil
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}
	return nil
}
