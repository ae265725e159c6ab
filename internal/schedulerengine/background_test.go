package schedulerengine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"gitlab.com/otp-enc.net/internal/adapter/logging"
	"gitlab.com/otp-enc.net/internal/domain"
)

type countingSource struct {
	calls atomic.Int64
}

func (c *countingSource) Stats() domain.ServerStats {
	c.calls.Add(1)
	return domain.ServerStats{Address: "127.0.0.1:5000", Capacity: 5, Accepted: 3, Completed: 2}
}

func TestReport(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	engine := NewReportEngine(time.Minute, &countingSource{}, logging.NewFromZap(zap.New(core)))

	engine.Report()

	entries := logs.FilterMessage("Server stats").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "127.0.0.1:5000", fields["address"])
	assert.EqualValues(t, 3, fields["accepted"])
	assert.EqualValues(t, 2, fields["completed"])
}

func TestStartReportEngineTicksUntilCancelled(t *testing.T) {
	source := &countingSource{}
	engine := NewReportEngine(5*time.Millisecond, source, logging.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	engine.StartReportEngine(ctx)

	require.Eventually(t, func() bool { return source.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	engine.Wait()

	after := source.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, source.calls.Load())
}

func TestStartReportEngineDisabled(t *testing.T) {
	source := &countingSource{}
	engine := NewReportEngine(0, source, logging.NewNopLogger())

	engine.StartReportEngine(context.Background())
	engine.Wait()
	assert.Zero(t, source.calls.Load())
}
