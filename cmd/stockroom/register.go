// Register command creates a local account and signs it in.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register <email> <password>",
	Short: "Create an account and sign in",
	Long: `Register creates a local account with the given email and password
and opens a session for it. Passwords must be 8 to 128 characters with at
least one letter and one digit.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := current.gateway.SignUp(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("register: %w", err)
		}

		if flagJSON {
			return printJSON(user)
		}
		fmt.Printf("Registered and signed in as %s\n", user.Email)
		return nil
	},
}
