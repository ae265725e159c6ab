package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"gitlab.com/otp-enc.net/internal/adapter/textfile"
	"gitlab.com/otp-enc.net/internal/cli"
	"gitlab.com/otp-enc.net/internal/config"
	"gitlab.com/otp-enc.net/internal/core/ports/primary"
	logger2 "gitlab.com/otp-enc.net/internal/global/logger"
	"gitlab.com/otp-enc.net/internal/static/errs"
	"gitlab.com/otp-enc.net/internal/tcp/client"
)

func main() {
	cli.Execute(context.Background(), newRootCmd())
}

func newRootCmd() *cobra.Command {
	var host string

	cmd := &cobra.Command{
		Use:   "otp_enc <plaintext-file> <key-file> <port>",
		Short: "Encrypt a plaintext file with a one-time-pad key via otp_enc_d",
		Long: `otp_enc reads the first line of the plaintext and key files, sends both to the
otp_enc_d daemon on the given port and prints the ciphertext to stdout.`,
		Args: cli.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnvFile(""); err != nil {
				return fmt.Errorf("%w: cannot load env file: %w", errs.ErrUsage, err)
			}
			sysCfg := config.NewSystemConfig()

			port, err := cli.ParsePort(args[2])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				sysCfg.ClientConfig.Host = host
			}

			// stdout carries only the ciphertext
			level := "warn"
			if sysCfg.DebugMode {
				level = "debug"
			}
			logger := logger2.Init(level)
			defer func() { _ = logger.Sync() }()

			return run(cmd.Context(), sysCfg.ClientConfig, port, args[0], args[1], cmd.OutOrStdout(), logger)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "daemon host (default $OTP_HOST or 127.0.0.1)")

	return cli.UsageFlagErrors(cmd)
}

func run(
	ctx context.Context,
	cfg *config.ClientConfig,
	port int,
	plaintextPath, keyPath string,
	out io.Writer,
	logger primary.Logger,
) error {
	plaintext, err := textfile.Load(plaintextPath)
	if err != nil {
		return err
	}
	key, err := textfile.Load(keyPath)
	if err != nil {
		return err
	}
	if len(key) < len(plaintext) {
		return fmt.Errorf("%w: key '%s' is too short", errs.ErrKeyTooShort, keyPath)
	}

	c := client.NewClient(
		client.WithAddress(net.JoinHostPort(cfg.Host, strconv.Itoa(port))),
		client.WithIOTimeout(cfg.IOTimeout),
		client.WithMaxMessageSize(cfg.MaxMessageSize),
		client.WithLogger(logger),
	)

	ciphertext, err := c.Encrypt(ctx, plaintext, key)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "%s\n", ciphertext)
	return err
}
