package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List available trade and niche profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := initRegistry()
		if err != nil {
			return err
		}

		fmt.Println("Trades:")
		for _, tr := range reg.Trades() {
			fmt.Printf("  %-14s %s\n", tr.ID, tr.DisplayName)
			fmt.Printf("%17sage %.2f  storm %.2f  permit %.2f  income %.2f  ownership %.2f  distance %.2f\n",
				"", tr.Weights.Age, tr.Weights.Storm, tr.Weights.Permit,
				tr.Weights.Income, tr.Weights.Ownership, tr.Weights.Distance)
		}

		niches := reg.Niches()
		if len(niches) > 0 {
			fmt.Println("\nNiches:")
			for _, n := range niches {
				fmt.Printf("  %-14s %s\n", n.ID, n.DisplayName)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}
