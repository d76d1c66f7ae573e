package search

import (
	"context"
)

// Result represents a single raw search hit from any provider, prior to
// normalization by the executor.
type Result struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Snippet       string `json:"snippet,omitempty"`
	PublishedDate string `json:"publishedDate,omitempty"`
	DisplayLink   string `json:"displayLink,omitempty"` // publisher label when the provider exposes one
	Source        string `json:"source,omitempty"`      // provider name for observability
}

// Provider is a minimal interface for search providers. recencyDays narrows
// results to the given freshness window when the backend supports it; zero
// means no window. Implementations must honor ctx cancellation so callers
// can impose per-query timeouts.
type Provider interface {
	Search(ctx context.Context, query string, maxResults int, recencyDays int) ([]Result, error)
	Name() string
}
