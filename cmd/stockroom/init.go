// Init command for the stockroom CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the stockroom storage",
	Long: `Init creates the configuration directory with a default config.yaml
and the data directory with an empty database. Both are created on first use
of any command; init exists to do it explicitly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The store is already attached by PersistentPreRunE.
		fmt.Println("Stockroom initialized")
		fmt.Println("  backend:  ", current.config.Backend)
		fmt.Println("  data dir: ", current.config.DataDir)
		return nil
	},
}
