package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gitlab.com/otp-enc.net/internal/cli"
	"gitlab.com/otp-enc.net/internal/config"
	logger2 "gitlab.com/otp-enc.net/internal/global/logger"
	"gitlab.com/otp-enc.net/internal/static/errs"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cli.Execute(context.Background(), newRootCmd())
}

func newRootCmd() *cobra.Command {
	var (
		host       string
		maxWorkers int
		envFile    string
	)

	cmd := &cobra.Command{
		Use:   "otp_enc_d <port>",
		Short: "One-time-pad encryption daemon",
		Long: `otp_enc_d listens on the given port and encrypts a plaintext with a key for every
otp_enc client that connects. At most --max-workers clients are serviced at once.`,
		Args: cli.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnvFile(envFile); err != nil {
				return fmt.Errorf("%w: cannot load env file: %w", errs.ErrUsage, err)
			}
			sysCfg := config.NewSystemConfig()

			port, err := cli.ParsePort(args[0])
			if err != nil {
				return err
			}
			sysCfg.DaemonConfig.Port = port
			if cmd.Flags().Changed("host") {
				sysCfg.DaemonConfig.Host = host
			}
			if cmd.Flags().Changed("max-workers") && maxWorkers > 0 {
				sysCfg.DaemonConfig.MaxWorkers = maxWorkers
			}

			logger := logger2.Init(sysCfg.LogLevel)
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			d, err := newDaemon(sysCfg, logger)
			if err != nil {
				return err
			}
			if err := d.Start(ctx); err != nil {
				d.Close()
				return err
			}

			<-ctx.Done()
			logger.Info("Shutting down server...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			d.Stop(shutdownCtx)

			logger.Info("successfully shutdown server")
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "interface to listen on (default $OTP_HOST or 127.0.0.1)")
	cmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "concurrent clients (default $OTP_MAX_WORKERS or 5)")
	cmd.Flags().StringVar(&envFile, "env", "", "env file to load (default .env if present)")
	cmd.SetErr(os.Stderr)

	return cli.UsageFlagErrors(cmd)
}
