package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/treemap/internal/cache"
	"github.com/sells-group/treemap/internal/config"
	"github.com/sells-group/treemap/internal/fetcher"
	"github.com/sells-group/treemap/internal/model"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "treemap",
	Short: "Portland heritage trees dashboard pipeline",
	Long:  "Fetches the Portland heritage tree inventory, filters it, and serves summary statistics, map payloads, and tabular exports.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newDatasetCache wires the fetch-and-normalize loader into a TTL cache.
func newDatasetCache() *cache.Cache {
	client := fetcher.NewClient(cfg.Source.URL, fetcher.HTTPOptions{
		UserAgent:  cfg.Source.UserAgent,
		Timeout:    cfg.Source.Timeout(),
		MaxRetries: cfg.Source.MaxRetries,
		RateLimit:  rate.Limit(cfg.Source.RateLimit),
	})
	return cache.New(cfg.Cache.TTL(), func(ctx context.Context) (*model.Dataset, error) {
		fc, err := client.FetchFeatures(ctx)
		if err != nil {
			return nil, err
		}
		return model.FromFeatureCollection(fc), nil
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
