// Command socialauth logs a user in with a social provider from the
// terminal. The provider page opens in the system browser and returns to
// a loopback server started for the duration of the command.
package main

import (
	"context"
	"fmt"
	"os"

	apperrors "github.com/kbukum/socialauth/errors"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok {
			fmt.Fprintf(os.Stderr, "error [%s]: %s\n", appErr.Code, appErr.Message)
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
