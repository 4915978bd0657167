package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/cache"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired cache entries",
	Long:  "Removes search results past their TTL from the cache table. Safe to run from cron; sweeping twice is a no-op.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("sweep"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		removed, err := cache.New(st).Sweep(ctx)
		if err != nil {
			return eris.Wrap(err, "sweep cache")
		}

		zap.L().Info("sweep complete", zap.Int64("removed", removed))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
