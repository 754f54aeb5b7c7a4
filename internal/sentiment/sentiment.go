// Package sentiment derives a per-row star mean and sentiment label from
// the four rating columns and writes both back to the store.
package sentiment

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"reviewharvest/internal/storage"
)

// Sentiment labels written into the sentimento_estrelas column.
const (
	LabelPositive = "Positivo"
	LabelNeutral  = "Neutro"
	LabelNegative = "Negativo"
)

// Classify maps a star mean onto a label: mean >= 4.5 is positive,
// 3.0 <= mean < 4.5 neutral, everything else negative.
func Classify(mean float64) string {
	switch {
	case mean >= 4.5:
		return LabelPositive
	case mean >= 3.0:
		return LabelNeutral
	default:
		return LabelNegative
	}
}

// Mean coerces the raw column values to floats and averages the ones
// that parse. ok is false when no value parses.
func Mean(values []string) (mean float64, ok bool) {
	var sum float64
	var n int
	for _, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		sum += f
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Pass runs the sentiment derivation over every stored row.
type Pass struct {
	store  storage.Store
	logger *zap.Logger
}

// New constructs a Pass.
func New(store storage.Store, logger *zap.Logger) *Pass {
	return &Pass{store: store, logger: logger}
}

// Run ensures the derived columns exist, then classifies every row. A
// row with no numeric rating stores a NULL mean and the negative label.
func (p *Pass) Run(ctx context.Context) error {
	if err := p.store.AddColumnIfAbsent(ctx, storage.ColMean, "REAL"); err != nil {
		return fmt.Errorf("ensure %s column: %w", storage.ColMean, err)
	}
	if err := p.store.AddColumnIfAbsent(ctx, storage.ColSentiment, "TEXT"); err != nil {
		return fmt.Errorf("ensure %s column: %w", storage.ColSentiment, err)
	}

	rows, err := p.store.ListRatings(ctx)
	if err != nil {
		return fmt.Errorf("read ratings: %w", err)
	}
	for _, row := range rows {
		mean, ok := Mean(row.Values)
		if !ok {
			if err := p.store.UpdateSentiment(ctx, row.ID, nil, LabelNegative); err != nil {
				return fmt.Errorf("row %d: %w", row.ID, err)
			}
			continue
		}
		if err := p.store.UpdateSentiment(ctx, row.ID, &mean, Classify(mean)); err != nil {
			return fmt.Errorf("row %d: %w", row.ID, err)
		}
	}
	p.logger.Info("sentiment pass finished", zap.Int("rows", len(rows)))
	return nil
}
