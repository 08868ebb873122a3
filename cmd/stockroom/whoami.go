// Whoami command prints the signed-in user.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apothekit/stockroom/pkg/types"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		user := current.gateway.CurrentUser()
		if user == nil {
			return types.ErrNotAuthenticated
		}

		if flagJSON {
			return printJSON(user)
		}
		fmt.Printf("%s (%s)\n", user.Email, user.UID)
		return nil
	},
}
