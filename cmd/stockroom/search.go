// Search command runs a name query against the store.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// searchLimit bounds how many matches a query returns.
const searchLimit = 50

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search medicines by name",
	Long: `Search returns medicines whose name contains the query,
case-insensitive, ordered by name and bounded to ` + fmt.Sprint(searchLimit) + ` matches.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := current.repo.Search(args[0], searchLimit)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}

		if flagJSON {
			return printJSON(records)
		}
		if len(records) == 0 {
			fmt.Println("No matches")
			return nil
		}
		for _, m := range records {
			fmt.Printf("%-36s  %-24s  aisle %-4s  stock %d\n", m.ID, m.Name, m.Aisle, m.Stock)
		}
		return nil
	},
}
