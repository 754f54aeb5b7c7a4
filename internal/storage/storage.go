// Package storage defines the persistence contract for review rows. The
// crawl writes rows through it and the downstream passes read rows back
// and attach derived columns.
package storage

import (
	"context"
	"fmt"
	"regexp"

	"reviewharvest/internal/review"
)

// Column names of the items table, shared by both backends and the
// downstream passes.
const (
	ColCostBenefit   = "custo_beneficio"
	ColEaseOfUse     = "facilidade_uso"
	ColFunctionality = "funcionalidades"
	ColSupport       = "suporte_cliente"

	ColLikes        = "preferencias"
	ColImprovements = "melhorias"
	ColProblems     = "problemas_resolvidos_beneficios"

	ColMean      = "media"
	ColSentiment = "sentimento_estrelas"
)

// RatingColumns lists the four rating columns in schema order.
var RatingColumns = []string{ColCostBenefit, ColEaseOfUse, ColFunctionality, ColSupport}

// AnswerColumns lists the three free-text columns in schema order.
var AnswerColumns = []string{ColLikes, ColImprovements, ColProblems}

// TokensColumn names the derived column holding the token text for a
// free-text source column.
func TokensColumn(col string) string {
	return col + "_tokens"
}

// RatingRow is one row's rating columns as read for the sentiment pass.
// Values are kept raw so non-numeric content coerces to missing rather
// than failing the pass.
type RatingRow struct {
	ID     int64
	Values []string
}

// AnswerRow is one row's free-text columns as read for tokenization.
type AnswerRow struct {
	ID           int64
	Likes        string
	Improvements string
	Problems     string
}

// Store is the relational persistence contract.
type Store interface {
	// InitSchema drops and recreates the items table. Destructive;
	// called exactly once per crawl run, before the first write.
	InitSchema(ctx context.Context) error
	// SaveReview inserts one row inside its own transaction and returns
	// the assigned identity. On failure the transaction is rolled back
	// and no partial row is visible.
	SaveReview(ctx context.Context, r review.NormalizedReview) (int64, error)
	// AddColumnIfAbsent adds a derived column, consulting schema
	// metadata first; an existing column is a no-op.
	AddColumnIfAbsent(ctx context.Context, column, sqlType string) error

	ListRatings(ctx context.Context) ([]RatingRow, error)
	// UpdateSentiment writes the row mean (nil stores NULL) and label.
	UpdateSentiment(ctx context.Context, id int64, mean *float64, label string) error

	ListAnswers(ctx context.Context) ([]AnswerRow, error)
	UpdateTokens(ctx context.Context, id int64, likes, improvements, problems string) error

	Close() error
}

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidateTableName rejects table names that cannot be safely
// interpolated into DDL.
func ValidateTableName(table string) error {
	if !validTableName.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	return nil
}
