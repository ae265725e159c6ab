package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.com/otp-enc.net/internal/adapter/logging"
	"gitlab.com/otp-enc.net/internal/adapter/memory/sessionstore"
	"gitlab.com/otp-enc.net/internal/adapter/redis/sessionport"
	"gitlab.com/otp-enc.net/internal/config"
	"gitlab.com/otp-enc.net/internal/core/ports/secondary"
	"gitlab.com/otp-enc.net/internal/core/services/cipher"
	http2 "gitlab.com/otp-enc.net/internal/http"
	"gitlab.com/otp-enc.net/internal/schedulerengine"
	"gitlab.com/otp-enc.net/internal/tcp"
	"gitlab.com/otp-enc.net/internal/tcp/handlers"
)

const redisPingTimeout = 3 * time.Second

// daemon wires the encryption server with its optional session ledger and status endpoint.
type daemon struct {
	logger      *logging.ZapLogger
	redisClient *redis.Client
	sessionRepo secondary.SessionRepository
	tcpServer   *tcp.TCPServer
	httpServer  *http2.Server
	reporter    *schedulerengine.ReportEngine
	stopReports context.CancelFunc
}

func newDaemon(sysCfg *config.AppConfig, logger *logging.ZapLogger) (*daemon, error) {
	d := &daemon{logger: logger}

	// SECONDARY PORTS
	if sysCfg.RedisConfig.Enabled() {
		d.redisClient = redis.NewClient(&redis.Options{
			Addr:     sysCfg.RedisConfig.Url,
			Password: sysCfg.RedisConfig.Password,
			DB:       sysCfg.RedisConfig.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		defer cancel()
		if err := d.redisClient.Ping(ctx).Err(); err != nil {
			_ = d.redisClient.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", sysCfg.RedisConfig.Url, err)
		}
		d.sessionRepo = sessionport.NewSessionRepository(d.redisClient, logger.With("component", "ledger"), sysCfg.RedisConfig.SessionTTL)
		logger.Info("Session ledger backed by redis", "addr", sysCfg.RedisConfig.Url)
	} else {
		d.sessionRepo = sessionstore.NewSessionStore(sessionstore.DefaultCapacity)
	}

	//services
	cipherSvc := cipher.NewCipherService()
	daemonCfg := sysCfg.DaemonConfig
	sessionHandler := handlers.NewSessionHandler(
		cipherSvc,
		d.sessionRepo,
		logger.With("component", "session"),
		daemonCfg.MaxMessageSize,
		daemonCfg.IOTimeout,
	)

	//server
	d.tcpServer = tcp.NewTCPServer(
		sessionHandler,
		logger.With("component", "admission"),
		tcp.WithAddress(daemonCfg.Address()),
		tcp.WithMaxWorkers(daemonCfg.MaxWorkers),
	)

	d.reporter = schedulerengine.NewReportEngine(daemonCfg.StatsInterval, d.tcpServer, logger.With("component", "stats"))

	if daemonCfg.StatusEnabled() {
		serviceProvider := http2.NewServiceProvider(d.tcpServer, d.sessionRepo)
		d.httpServer = http2.NewServer(daemonCfg.Host, daemonCfg.StatusPort, "otp_enc_d-status", *serviceProvider, logger.With("component", "status"))
		if err := d.httpServer.Init(); err != nil {
			d.Close()
			return nil, err
		}
	}

	return d, nil
}

func (d *daemon) Start(ctx context.Context) error {
	if err := d.tcpServer.Start(ctx); err != nil {
		return err
	}
	if d.httpServer != nil {
		if err := d.httpServer.Start(ctx); err != nil {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = d.tcpServer.Stop(stopCtx)
			return err
		}
	}

	reportCtx, cancel := context.WithCancel(ctx)
	d.stopReports = cancel
	d.reporter.StartReportEngine(reportCtx)
	return nil
}

// Stop drains the encryption server first so in-flight sessions still reach the ledger.
func (d *daemon) Stop(ctx context.Context) {
	if d.stopReports != nil {
		d.stopReports()
		d.reporter.Wait()
	}
	if err := d.tcpServer.Stop(ctx); err != nil {
		d.logger.Error("TCP server forced to shutdown", "error", err)
	}
	if d.httpServer != nil {
		if err := d.httpServer.Stop(ctx); err != nil {
			d.logger.Error("Server forced to shutdown", "error", err)
		}
	}
	d.Close()
}

func (d *daemon) Close() {
	if d.redisClient != nil {
		if err := d.redisClient.Close(); err != nil {
			d.logger.Warn("Failed to close redis client", "error", err)
		}
	}
}
