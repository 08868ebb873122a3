// List command shows the inventory grouped by aisle.
package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/apothekit/stockroom/pkg/types"
)

var (
	listAisle string
	listAll   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List medicines grouped by aisle",
	Long: `List shows the inventory ordered by name and grouped by aisle.
One page is shown at a time; --all pages through the whole inventory,
and --aisle restricts the output to a single aisle.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		coord, err := readyCoordinator(cmd.Context())
		if err != nil {
			return err
		}

		if listAisle != "" {
			records := coord.MedicinesForAisle(listAisle)
			if flagJSON {
				return printJSON(records)
			}
			printAisle(listAisle, records)
			return nil
		}

		if listAll {
			for coord.HasMoreToShow() {
				coord.ShowMore()
			}
		}
		snap := coord.Snapshot()

		if flagJSON {
			return printJSON(snap.Displayed)
		}

		for _, aisle := range groupAisles(snap.Displayed) {
			printAisle(aisle, medicinesIn(snap.Displayed, aisle))
		}
		if snap.HasMore {
			fmt.Printf("Showing %d of %d medicines (use --all to see the rest)\n",
				len(snap.Displayed), snap.CacheSize)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listAisle, "aisle", "", "show a single aisle")
	listCmd.Flags().BoolVar(&listAll, "all", false, "page through the whole inventory")
}

// groupAisles returns the sorted distinct aisles present in records.
func groupAisles(records []types.Medicine) []string {
	seen := make(map[string]bool, len(records))
	var out []string
	for _, m := range records {
		if !seen[m.Aisle] {
			seen[m.Aisle] = true
			out = append(out, m.Aisle)
		}
	}
	sort.Strings(out)
	return out
}

func medicinesIn(records []types.Medicine, aisle string) []types.Medicine {
	var out []types.Medicine
	for _, m := range records {
		if m.Aisle == aisle {
			out = append(out, m)
		}
	}
	return out
}

func printAisle(aisle string, records []types.Medicine) {
	label := aisle
	if label == "" {
		label = "(unassigned)"
	}
	fmt.Printf("Aisle %s\n", label)
	for _, m := range records {
		fmt.Printf("  %-36s  %-24s  stock %d\n", m.ID, m.Name, m.Stock)
	}
}
