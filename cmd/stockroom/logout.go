// Logout command closes the current session.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out of the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.gateway.SignOut(); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
		fmt.Println("Signed out")
		return nil
	},
}
