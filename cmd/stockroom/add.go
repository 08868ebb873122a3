// Add command creates a medicine record.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	addName  string
	addStock int
	addAisle string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a medicine to the inventory",
	Long: `Add creates a medicine record with a name, an initial stock level,
and an aisle location, and writes one audit entry for it. Negative initial
stock is clamped to zero.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		coord, err := readyCoordinator(cmd.Context())
		if err != nil {
			return err
		}

		if err := coord.AddMedicine(cmd.Context(), addName, addStock, addAisle); err != nil {
			return fmt.Errorf("add: %w", err)
		}
		fmt.Printf("Added %s\n", addName)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addName, "name", "", "medicine name (required)")
	addCmd.Flags().IntVar(&addStock, "stock", 0, "initial stock level")
	addCmd.Flags().StringVar(&addAisle, "aisle", "", "aisle location")
	addCmd.MarkFlagRequired("name")
}
