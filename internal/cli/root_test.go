package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"reviewharvest/internal/config"
)

func TestRootCmdWiresSubcommands(t *testing.T) {
	root := NewRootCmd()

	for _, name := range []string{"crawl", "sentiment", "tokenize"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, "subcommand %q", name)
		require.Equal(t, name, cmd.Name())
	}
	require.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestCrawlCmdFlags(t *testing.T) {
	root := NewRootCmd()
	crawl, _, err := root.Find([]string{"crawl"})
	require.NoError(t, err)

	require.NotNil(t, crawl.Flags().Lookup("seed-url"))
	require.NotNil(t, crawl.Flags().Lookup("dsn"))
}

func TestSetupAppliesOverrides(t *testing.T) {
	cfg, logger, err := setup(func(c *config.Config) {
		c.Crawler.SeedURL = "https://example.com/reviews"
	})
	require.NoError(t, err)
	defer func() { _ = logger.Sync() }()

	require.Equal(t, "https://example.com/reviews", cfg.Crawler.SeedURL)
}

func TestOpenStoreSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.db")
	store, err := openStore(context.Background(), config.DBConfig{
		Driver: "sqlite",
		Path:   path,
		Table:  "items",
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	_, err := openStore(context.Background(), config.DBConfig{Driver: "oracle"})
	require.Error(t, err)
}
