// Package cli holds the pieces shared by the otp_enc_d, otp_enc and keygen commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gitlab.com/otp-enc.net/internal/static/errs"
)

// Execute runs cmd, reports a failure on stderr and exits with the code of its error class.
func Execute(ctx context.Context, cmd *cobra.Command) {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	if err := cmd.ExecuteContext(ctx); err != nil {
		PrintError(cmd.ErrOrStderr(), err)
		os.Exit(errs.ExitCode(err))
	}
}

// PrintError writes "error: <err>", the prefix in red unless colour output is disabled
func PrintError(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "%s %v\n", color.RedString("error:"), err)
}

// ParsePort validates a decimal TCP port in 1..65535
func ParsePort(arg string) (int, error) {
	port, err := strconv.Atoi(arg)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("%w: invalid port %q", errs.ErrUsage, arg)
	}
	return port, nil
}

// UsageFlagErrors makes flag parsing failures, such as an unknown flag or a negative
// number read as a shorthand flag, usage errors.
func UsageFlagErrors(cmd *cobra.Command) *cobra.Command {
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errs.ErrUsage, err)
	})
	return cmd
}

// ExactArgs is cobra.ExactArgs with the failure classified as a usage error
func ExactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("%w: accepts %d arg(s), received %d\nusage: %s",
				errs.ErrUsage, n, len(args), cmd.UseLine())
		}
		return nil
	}
}
