package server

import "sync/atomic"

// Stats tracks request throughput across all workers.
type Stats struct {
	requestsProcessed atomic.Uint64
	totalExecMicros   atomic.Uint64
}

// NewStats creates zeroed counters.
func NewStats() *Stats {
	return &Stats{}
}

// Record adds one processed request with its execution time.
func (s *Stats) Record(execMicros uint64) {
	s.requestsProcessed.Add(1)
	s.totalExecMicros.Add(execMicros)
}

// Snapshot returns the request count and average execution time in
// milliseconds.
func (s *Stats) Snapshot() (uint64, float64) {
	count := s.requestsProcessed.Load()
	total := s.totalExecMicros.Load()
	if count == 0 {
		return 0, 0
	}
	return count, float64(total) / float64(count) / 1000.0
}
