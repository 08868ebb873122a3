// Stock command applies a relative stock change.
package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var stockCmd = &cobra.Command{
	Use:   "stock <id> <delta>",
	Short: "Adjust a medicine's stock by a delta",
	Long: `Stock applies a relative change to a medicine's stock level and
writes one audit entry with the before and after values. A negative delta
larger than the current stock clamps the result at zero.

Example:
  stockroom stock 0198f0a2-... 12
  stockroom stock 0198f0a2-... -5`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		delta, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid delta %q (expected an integer)", args[1])
		}

		coord, err := readyCoordinator(cmd.Context())
		if err != nil {
			return err
		}

		if err := coord.UpdateStock(cmd.Context(), args[0], delta); err != nil {
			return fmt.Errorf("stock: %w", err)
		}
		fmt.Println("Stock updated")
		return nil
	},
}
