// Update command edits an existing medicine record.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apothekit/stockroom/pkg/types"
)

var (
	updateName  string
	updateStock int
	updateAisle string
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a medicine's name, stock, or aisle",
	Long: `Update edits the fields given by flags on an existing record and
writes one audit entry. Fields without a flag keep their current value.
For relative stock changes use the stock command instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		coord, err := readyCoordinator(cmd.Context())
		if err != nil {
			return err
		}

		m, ok := coord.MedicineByID(args[0])
		if !ok {
			return fmt.Errorf("update %s: %w", args[0], types.ErrNotFound)
		}

		if cmd.Flags().Changed("name") {
			m.Name = updateName
		}
		if cmd.Flags().Changed("stock") {
			m.Stock = types.ClampStock(updateStock)
		}
		if cmd.Flags().Changed("aisle") {
			m.Aisle = updateAisle
		}

		if err := coord.UpdateMedicine(cmd.Context(), m); err != nil {
			return fmt.Errorf("update: %w", err)
		}
		fmt.Printf("Updated %s\n", m.Name)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateName, "name", "", "new medicine name")
	updateCmd.Flags().IntVar(&updateStock, "stock", 0, "new absolute stock level")
	updateCmd.Flags().StringVar(&updateAisle, "aisle", "", "new aisle location")
}
