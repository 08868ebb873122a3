// Aisles command lists the aisles in use.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var aislesCmd = &cobra.Command{
	Use:   "aisles",
	Short: "List the aisles in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		coord, err := readyCoordinator(cmd.Context())
		if err != nil {
			return err
		}

		aisles := coord.Aisles()
		if flagJSON {
			return printJSON(aisles)
		}
		for _, aisle := range aisles {
			count := len(coord.MedicinesForAisle(aisle))
			if aisle == "" {
				aisle = "(unassigned)"
			}
			fmt.Printf("%-8s  %d medicines\n", aisle, count)
		}
		return nil
	},
}
