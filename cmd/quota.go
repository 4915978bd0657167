package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadscout/internal/quota"
)

var (
	quotaTenant string
	quotaJSON   bool
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show a tenant's remaining daily searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("quota"); err != nil {
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

		status := quota.New(st, quota.WithLimit(cfg.Quota.DailyLimit)).Check(ctx, quotaTenant)

		if quotaJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(status)
		}

		fmt.Printf("Tenant:    %s\n", quotaTenant)
		fmt.Printf("Used:      %d of %d\n", status.Count, cfg.Quota.DailyLimit)
		fmt.Printf("Remaining: %d\n", status.Remaining)
		fmt.Printf("Resets at: %s\n", status.ResetAt.Format("2006-01-02 15:04 MST"))
		return nil
	},
}

func init() {
	quotaCmd.Flags().StringVar(&quotaTenant, "tenant", "", "tenant identifier (required)")
	quotaCmd.Flags().BoolVar(&quotaJSON, "json", false, "print status as JSON")
	_ = quotaCmd.MarkFlagRequired("tenant")
	rootCmd.AddCommand(quotaCmd)
}
