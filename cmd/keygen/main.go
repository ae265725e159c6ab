package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"gitlab.com/otp-enc.net/internal/cli"
	"gitlab.com/otp-enc.net/internal/core/services/keygen"
	"gitlab.com/otp-enc.net/internal/static/errs"
)

func main() {
	cli.Execute(context.Background(), newRootCmd(keygen.NewKeyGenerator(nil)))
}

func newRootCmd(generator keygen.IKeyGenerator) *cobra.Command {
	return cli.UsageFlagErrors(&cobra.Command{
		Use:   "keygen <length>",
		Short: "Print a random one-time-pad key of the given length",
		Args:  cli.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			length, err := strconv.Atoi(args[0])
			if err != nil || length < 0 {
				return fmt.Errorf("%w: length must be a non-negative integer, got %q", errs.ErrUsage, args[0])
			}

			key, err := generator.Generate(length)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", key)
			return err
		},
	})
}
