package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"gitlab.com/otp-enc.net/internal/adapter/logging"
	"gitlab.com/otp-enc.net/internal/config"
	"gitlab.com/otp-enc.net/internal/domain"
	"gitlab.com/otp-enc.net/internal/static/errs"
	"gitlab.com/otp-enc.net/internal/tcp/client"
	"gitlab.com/otp-enc.net/internal/tcp/defs"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func testConfig(statusPort int) *config.AppConfig {
	return &config.AppConfig{
		LogLevel: "info",
		DaemonConfig: &config.DaemonConfig{
			Host:           "127.0.0.1",
			Port:           0,
			MaxWorkers:     defs.DefaultMaxWorkers,
			MaxMessageSize: defs.DefaultMaxMessageSize,
			StatusPort:     statusPort,
		},
		RedisConfig: &config.RedisConfig{},
	}
}

func TestDaemonServesClients(t *testing.T) {
	d, err := newDaemon(testConfig(0), logging.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, d.Start(context.Background()))
	assert.Nil(t, d.httpServer)

	c := client.NewClient(client.WithAddress(d.tcpServer.Addr().String()))
	ciphertext, err := c.Encrypt(context.Background(), []byte("HELLO WORLD"), []byte("XMCKLFDTRH "))
	require.NoError(t, err)
	assert.Equal(t, "DQNVZEZGHSC", string(ciphertext))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	d.Stop(ctx)

	recent, err := d.sessionRepo.RecentSessions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, domain.SessionStatusCompleted, recent[0].Status)
	assert.Equal(t, 11, recent[0].PlaintextLen)
}

func TestDaemonTagsLogsByComponent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	d, err := newDaemon(testConfig(0), logging.NewFromZap(zap.New(core)))
	require.NoError(t, err)
	require.NoError(t, d.Start(context.Background()))

	c := client.NewClient(client.WithAddress(d.tcpServer.Addr().String()))
	_, err = c.Encrypt(context.Background(), []byte("ABC"), []byte("ABC"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	d.Stop(ctx)

	listening := logs.FilterMessage("TCP server listening").All()
	require.Len(t, listening, 1)
	assert.Equal(t, "admission", listening[0].ContextMap()["component"])

	completed := logs.FilterMessage("Session completed").All()
	require.Len(t, completed, 1)
	assert.Equal(t, "session", completed[0].ContextMap()["component"])
}

func TestDaemonPortInUse(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	cfg := testConfig(0)
	cfg.DaemonConfig.Port = taken.Addr().(*net.TCPAddr).Port
	d, err := newDaemon(cfg, logging.NewNopLogger())
	require.NoError(t, err)

	err = d.Start(context.Background())
	assert.ErrorIs(t, err, errs.ErrTransport)
	assert.Equal(t, errs.ExitNetwork, errs.ExitCode(err))
}

func TestDaemonStatusEndpoint(t *testing.T) {
	statusPort := freePort(t)
	d, err := newDaemon(testConfig(statusPort), logging.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, d.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		d.Stop(ctx)
	})

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/api/status", statusPort))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats domain.ServerStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, int64(defs.DefaultMaxWorkers), stats.Capacity)
	assert.Equal(t, d.tcpServer.Addr().String(), stats.Address)
}

func TestDaemonRedisUnreachable(t *testing.T) {
	cfg := testConfig(0)
	cfg.RedisConfig.Url = fmt.Sprintf("127.0.0.1:%d", freePort(t))

	_, err := newDaemon(cfg, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestRootCmdUsageErrors(t *testing.T) {
	for _, args := range [][]string{{"not-a-port"}, {"--bogus", "5000"}, {}} {
		cmd := newRootCmd()
		cmd.SetArgs(args)
		cmd.SetErr(io.Discard)
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true

		err := cmd.ExecuteContext(context.Background())
		assert.ErrorIs(t, err, errs.ErrUsage, "%v", args)
		assert.Equal(t, errs.ExitUsage, errs.ExitCode(err))
	}
}
