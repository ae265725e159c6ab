package errs

import "errors"

// Process exit codes for the command line tools.
const (
	ExitOK         = 0
	ExitUsage      = 1
	ExitValidation = 2
	ExitNetwork    = 3
)

// ExitCode maps an error to the exit status a command should terminate with.
// Unclassified errors are treated as usage errors.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrValidation):
		return ExitValidation
	case errors.Is(err, ErrHandshakeRejected), errors.Is(err, ErrTransport):
		return ExitNetwork
	default:
		return ExitUsage
	}
}
