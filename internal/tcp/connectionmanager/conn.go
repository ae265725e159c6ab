package connectionmanager

import (
	"time"

	"github.com/google/uuid"
)

// WorkerHandle tracks one dispatched worker. The worker closes it by calling Finish;
// it never sees the registry itself.
type WorkerHandle struct {
	ID         uuid.UUID
	RemoteAddr string
	StartedAt  time.Time
	done       chan struct{}
}

// Finish marks the worker as completed. It must be called exactly once.
func (w *WorkerHandle) Finish() {
	close(w.done)
}

// Done is closed once the worker has finished.
func (w *WorkerHandle) Done() <-chan struct{} {
	return w.done
}

// WorkerRegistry holds the outstanding workers of the admission loop.
// It has a single owner and is not safe for concurrent use.
type WorkerRegistry struct {
	workers map[uuid.UUID]*WorkerHandle
}

// NewWorkerRegistry creates an empty registry
func NewWorkerRegistry() *WorkerRegistry {
	return &WorkerRegistry{
		workers: make(map[uuid.UUID]*WorkerHandle),
	}
}

// Track registers a new worker for a freshly accepted connection
func (r *WorkerRegistry) Track(remoteAddr string) *WorkerHandle {
	w := &WorkerHandle{
		ID:         uuid.New(),
		RemoteAddr: remoteAddr,
		StartedAt:  time.Now(),
		done:       make(chan struct{}),
	}
	r.workers[w.ID] = w
	return w
}

// ReapFinished removes every worker whose completion is observable without blocking
// and returns how many were removed.
func (r *WorkerRegistry) ReapFinished() int {
	reaped := 0
	for id, w := range r.workers {
		select {
		case <-w.done:
			delete(r.workers, id)
			reaped++
		default:
		}
	}
	return reaped
}

// Len returns the number of outstanding (not yet reaped) workers
func (r *WorkerRegistry) Len() int {
	return len(r.workers)
}

// Get returns the handle for a worker that has not been reaped yet
func (r *WorkerRegistry) Get(id uuid.UUID) (*WorkerHandle, bool) {
	w, ok := r.workers[id]
	return w, ok
}
