package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reviewharvest/internal/tokenize"
)

func newTokenizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokenize",
		Short: "Derive token-text columns from the free-text answers",
		Long: `Reads the three answer columns of every row, lowercases the text,
strips punctuation, segments sentences and words, removes Portuguese
stopwords and writes one _tokens column per source column back.
Re-running is safe.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			store, err := openStore(ctx, cfg.DB)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := store.Close(); cerr != nil {
					logger.Warn("failed to close store", zap.Error(cerr))
				}
			}()

			return tokenize.New(store, logger).Run(ctx)
		},
	}
}
