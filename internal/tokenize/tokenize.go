// Package tokenize derives token-text columns from the free-text answer
// columns: lowercase, punctuation removal, UAX#29 sentence and word
// segmentation, and Portuguese stopword removal.
package tokenize

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/sentences"
	"github.com/clipperhouse/uax29/v2/words"
	"go.uber.org/zap"

	"reviewharvest/internal/storage"
)

const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Preprocess normalizes one free-text value into its token text. Empty
// input yields an empty string.
func Preprocess(text string) string {
	if text == "" {
		return ""
	}
	lowered := strings.ToLower(text)
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(asciiPunctuation, r) {
			return -1
		}
		return r
	}, lowered)

	var parts []string
	sents := sentences.FromString(cleaned)
	for sents.Next() {
		toks := tokenizeSentence(sents.Value())
		if len(toks) > 0 {
			parts = append(parts, strings.Join(toks, " "))
		}
	}
	return strings.Join(parts, " ")
}

func tokenizeSentence(sentence string) []string {
	var toks []string
	iter := words.FromString(sentence)
	for iter.Next() {
		tok := strings.TrimSpace(iter.Value())
		if tok == "" || !hasAlnum(tok) {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		toks = append(toks, tok)
	}
	return toks
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// Pass runs tokenization over every stored row.
type Pass struct {
	store  storage.Store
	logger *zap.Logger
}

// New constructs a Pass.
func New(store storage.Store, logger *zap.Logger) *Pass {
	return &Pass{store: store, logger: logger}
}

// Run ensures the token columns exist, then writes the token text for
// each row's three answer columns.
func (p *Pass) Run(ctx context.Context) error {
	for _, col := range storage.AnswerColumns {
		if err := p.store.AddColumnIfAbsent(ctx, storage.TokensColumn(col), "TEXT"); err != nil {
			return fmt.Errorf("ensure %s column: %w", storage.TokensColumn(col), err)
		}
	}

	rows, err := p.store.ListAnswers(ctx)
	if err != nil {
		return fmt.Errorf("read answers: %w", err)
	}
	for _, row := range rows {
		err := p.store.UpdateTokens(ctx, row.ID,
			Preprocess(row.Likes),
			Preprocess(row.Improvements),
			Preprocess(row.Problems),
		)
		if err != nil {
			return fmt.Errorf("row %d: %w", row.ID, err)
		}
	}
	p.logger.Info("tokenization pass finished", zap.Int("rows", len(rows)))
	return nil
}
