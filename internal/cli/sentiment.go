package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reviewharvest/internal/sentiment"
)

func newSentimentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sentiment",
		Short: "Derive the star mean and sentiment label for every stored row",
		Long: `Reads the four rating columns of every row, averages the numeric
values, classifies the mean as Positivo, Neutro or Negativo and writes
the media and sentimento_estrelas columns back. Re-running is safe.`,
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

			return sentiment.New(store, logger).Run(ctx)
		},
	}
}
