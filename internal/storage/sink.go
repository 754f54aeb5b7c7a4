package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"reviewharvest/internal/review"
)

// ReviewSink adapts a Store into the crawl sink: each raw record is
// normalized and written as one row.
type ReviewSink struct {
	store  Store
	logger *zap.Logger
}

// NewReviewSink constructs a ReviewSink.
func NewReviewSink(store Store, logger *zap.Logger) *ReviewSink {
	return &ReviewSink{store: store, logger: logger}
}

// Store normalizes and persists one raw review.
func (s *ReviewSink) Store(ctx context.Context, raw review.RawReview) error {
	normalized := review.Normalize(raw)
	id, err := s.store.SaveReview(ctx, normalized)
	if err != nil {
		return fmt.Errorf("save review: %w", err)
	}
	s.logger.Debug("review stored",
		zap.Int64("id", id),
		zap.String("title", normalized.Title))
	return nil
}
