// Login command opens a session for an existing account.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <email> <password>",
	Short: "Sign in to an existing account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := current.gateway.SignIn(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}

		if flagJSON {
			return printJSON(user)
		}
		fmt.Printf("Signed in as %s\n", user.Email)
		return nil
	},
}
