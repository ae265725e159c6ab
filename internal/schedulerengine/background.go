package schedulerengine

import (
	"context"
	"sync"
	"time"

	"gitlab.com/otp-enc.net/internal/core/ports/primary"
	"gitlab.com/otp-enc.net/internal/domain"
)

// StatsSource is satisfied by *tcp.TCPServer
type StatsSource interface {
	Stats() domain.ServerStats
}

// ReportEngine periodically logs the daemon's admission counters.
type ReportEngine struct {
	Interval time.Duration
	source   StatsSource
	logger   primary.Logger
	wg       sync.WaitGroup
}

func NewReportEngine(interval time.Duration, source StatsSource, logger primary.Logger) *ReportEngine {
	return &ReportEngine{
		Interval: interval,
		source:   source,
		logger:   logger,
	}
}

// StartReportEngine runs until ctx is done. A non-positive interval disables it.
func (s *ReportEngine) StartReportEngine(ctx context.Context) {
	if s.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.Interval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Report()
			}
		}
	}()
}

// Wait blocks until the engine goroutine has exited
func (s *ReportEngine) Wait() {
	s.wg.Wait()
}

func (s *ReportEngine) Report() {
	stats := s.source.Stats()
	s.logger.Info("Server stats",
		"address", stats.Address,
		"active", stats.ActiveWorkers,
		"capacity", stats.Capacity,
		"accepted", stats.Accepted,
		"completed", stats.Completed,
		"rejected", stats.Rejected,
		"failed", stats.Failed,
	)
}
