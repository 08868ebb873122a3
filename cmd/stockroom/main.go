// Package main provides the stockroom CLI, a pharmacy inventory manager
// over the stockroom storage backend.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/apothekit/stockroom/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

func main() {
	err := rootCmd.Execute()
	if err == nil {
		os.Exit(exitSuccess)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(exitCode(err))
}

// exitCode maps an error to the CLI exit code: mistakes a caller can fix
// exit 1, everything else exits 2.
func exitCode(err error) int {
	userErrors := []error{
		types.ErrNotAuthenticated,
		types.ErrSessionExpired,
		types.ErrInvalidCredentials,
		types.ErrEmailInUse,
		types.ErrWeakPassword,
		types.ErrUserNotFound,
		types.ErrNotFound,
		types.ErrInvalidID,
		types.ErrInvalidData,
		types.ErrInvalidName,
		types.ErrNegativeStock,
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	return exitSysError
}
