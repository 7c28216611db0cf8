// Package observability provides per-table operator statistics so that
// callers can inspect whether a transformation degraded instead of failing.
package observability

import (
	"sort"
	"sync"
	"time"
)

// OpStats tracks operator invocations and absorbed structural violations for
// one table.
type OpStats struct {
	mu       sync.RWMutex
	ops      map[string]*OpRecord
	degraded int64
}

// OpRecord holds counters for a single operator.
type OpRecord struct {
	Op        string
	Calls     int64
	Degraded  int64
	LastCall  time.Time
	LastCause string
}

// NewOpStats creates a new operator statistics tracker.
func NewOpStats() *OpStats {
	return &OpStats{ops: make(map[string]*OpRecord)}
}

// Record notes one invocation of an operator. O(1) and thread-safe.
func (s *OpStats) Record(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(op).Calls++
}

// RecordDegraded notes an operator invocation that degraded: the violation
// was absorbed and a neutral result returned.
func (s *OpStats) RecordDegraded(op, cause string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.record(op)
	r.Calls++
	r.Degraded++
	r.LastCause = cause
	s.degraded++
}

func (s *OpStats) record(op string) *OpRecord {
	r, ok := s.ops[op]
	if !ok {
		r = &OpRecord{Op: op}
		s.ops[op] = r
	}
	r.LastCall = time.Now()
	return r
}

// Degraded returns the total number of absorbed violations.
func (s *OpStats) Degraded() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

// OpDegraded returns the absorbed-violation count for one operator.
func (s *OpStats) OpDegraded(op string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.ops[op]; ok {
		return r.Degraded
	}
	return 0
}

// Top returns the n most-called operators, copied, by call count descending.
func (s *OpStats) Top(n int) []OpRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || len(s.ops) == 0 {
		return []OpRecord{}
	}

	out := make([]OpRecord, 0, len(s.ops))
	for _, r := range s.ops {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Calls > out[j].Calls
	})
	if n > len(out) {
		n = len(out)
	}
	return out[:n]
}
