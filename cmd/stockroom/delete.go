// Delete command removes a medicine record.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apothekit/stockroom/pkg/types"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a medicine from the inventory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		coord, err := readyCoordinator(cmd.Context())
		if err != nil {
			return err
		}

		m, ok := coord.MedicineByID(args[0])
		if !ok {
			return fmt.Errorf("delete %s: %w", args[0], types.ErrNotFound)
		}

		if err := coord.DeleteMedicine(cmd.Context(), m.ID, m.Name); err != nil {
			return fmt.Errorf("delete: %w", err)
		}
		fmt.Printf("Deleted %s\n", m.Name)
		return nil
	},
}
