// History command prints the audit log of one medicine.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show the recent audit history of a medicine",
	Long: `History shows the most recent audit entries for one medicine,
newest first. The window size comes from history_window in config.yaml.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.history.Load(args[0]); err != nil {
			return fmt.Errorf("history: %w", err)
		}
		entries := current.history.Entries()

		if flagJSON {
			return printJSON(entries)
		}
		if len(entries) == 0 {
			fmt.Println("No history")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %-20s  %s", e.Timestamp.Format("2006-01-02 15:04:05"), e.User, e.Action)
			if e.Details != "" {
				fmt.Printf("  (%s)", e.Details)
			}
			fmt.Println()
		}
		return nil
	},
}
