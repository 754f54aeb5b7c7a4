// Package crawler drives the page-by-page traversal of a review listing.
package crawler

import (
	"context"
	"net/http"
	"time"

	"reviewharvest/internal/review"
)

// FetchRequest captures everything needed to fetch a listing page.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// Fetcher fetches a URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Sink receives each extracted record as it is produced. Implementations
// normalize and persist the record before returning.
type Sink interface {
	Store(ctx context.Context, raw review.RawReview) error
}
