package domain

// ServerStats is a point-in-time view of the daemon's admission counters.
type ServerStats struct {
	Address       string `json:"address"`
	Capacity      int64  `json:"capacity"`
	ActiveWorkers int64  `json:"active_workers"`
	Accepted      uint64 `json:"accepted"`
	Completed     uint64 `json:"completed"`
	Rejected      uint64 `json:"rejected"`
	Failed        uint64 `json:"failed"`
}
