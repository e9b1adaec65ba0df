package lib

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Exit prints the error and exits the program with Code(err).
func Exit(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(Code(err))
}

// Code is the exit status for err: 130 when the run was interrupted, 1
// otherwise.
func Code(err error) int {
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}
