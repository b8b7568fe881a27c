package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/pillbox/internal/logger"
)

var (
	// ErrLoadFailed is the single generic failure surfaced when a reconciliation
	// pass cannot read or write local data.
	ErrLoadFailed = stderrors.New("failed to load local data")
	// ErrInvalidInput marks user input rejected before any entity is built.
	ErrInvalidInput = stderrors.New("invalid input")
	// ErrNotFound is returned when a medication or dose event id is unknown.
	ErrNotFound = stderrors.New("not found")
)

// Format formats an error message with a consistent "Error: " prefix.
// Load failures are reduced to the generic message; the cause goes to the log.
func Format(err error) string {
	if err == nil {
		return ""
	}
	if stderrors.Is(err, ErrLoadFailed) {
		return fmt.Sprintf("Error: %v (see logs for details)", ErrLoadFailed)
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
