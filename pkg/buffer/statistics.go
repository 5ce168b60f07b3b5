package buffer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Statistics counts buffer activity. Counter updates are lock-free so the
// hot path never contends with observers; the size watermark and start time
// sit behind a mutex.
type Statistics struct {
	writes    atomic.Int64
	reads     atomic.Int64
	peeks     atomic.Int64
	overflows atomic.Int64
	drops     atomic.Int64

	mu          sync.RWMutex
	startTime   time.Time
	currentSize int64
	maxSize     int64
}

// NewStatistics creates a tracker with the uptime clock started.
func NewStatistics() *Statistics {
	return &Statistics{
		startTime: time.Now(),
	}
}

// Write records one admitted item.
func (s *Statistics) Write() { s.writes.Add(1) }

// Read records one removed item.
func (s *Statistics) Read() { s.reads.Add(1) }

// Peek records one non-destructive read.
func (s *Statistics) Peek() { s.peeks.Add(1) }

// Overflow records one write that found the buffer full.
func (s *Statistics) Overflow() { s.overflows.Add(1) }

// Drop records one discarded item.
func (s *Statistics) Drop() { s.drops.Add(1) }

// UpdateSize records the current occupancy and advances the watermark.
func (s *Statistics) UpdateSize(size int64) {
	s.mu.Lock()
	s.currentSize = size
	if size > s.maxSize {
		s.maxSize = size
	}
	s.mu.Unlock()
}

// Writes returns the number of admitted items.
func (s *Statistics) Writes() int64 { return s.writes.Load() }

// Reads returns the number of removed items.
func (s *Statistics) Reads() int64 { return s.reads.Load() }

// Peeks returns the number of non-destructive reads.
func (s *Statistics) Peeks() int64 { return s.peeks.Load() }

// Overflows returns the number of writes that found the buffer full.
func (s *Statistics) Overflows() int64 { return s.overflows.Load() }

// Drops returns the number of discarded items.
func (s *Statistics) Drops() int64 { return s.drops.Load() }

// CurrentSize returns the occupancy at the last update.
func (s *Statistics) CurrentSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentSize
}

// MaxSize returns the occupancy high-water mark.
func (s *Statistics) MaxSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxSize
}

// Throughput returns admitted items per second since construction or the
// last Reset.
func (s *Statistics) Throughput() float64 {
	elapsed := s.Uptime()
	if elapsed == 0 {
		return 0.0
	}
	return float64(s.Writes()) / elapsed.Seconds()
}

// DropRate returns the fraction of writes that ended in a drop, 0.0 to 1.0.
func (s *Statistics) DropRate() float64 {
	writes := s.Writes()
	if writes == 0 {
		return 0.0
	}
	return float64(s.Drops()) / float64(writes)
}

// OverflowRate returns the fraction of writes that found the buffer full,
// 0.0 to 1.0.
func (s *Statistics) OverflowRate() float64 {
	writes := s.Writes()
	if writes == 0 {
		return 0.0
	}
	return float64(s.Overflows()) / float64(writes)
}

// Utilization returns occupancy over capacity, 0.0 to 1.0.
func (s *Statistics) Utilization(capacity int64) float64 {
	if capacity == 0 {
		return 0.0
	}
	return float64(s.CurrentSize()) / float64(capacity)
}

// Uptime returns the time since construction or the last Reset.
func (s *Statistics) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}

// Reset zeroes every counter and restarts the uptime clock.
func (s *Statistics) Reset() {
	s.writes.Store(0)
	s.reads.Store(0)
	s.peeks.Store(0)
	s.overflows.Store(0)
	s.drops.Store(0)

	s.mu.Lock()
	s.startTime = time.Now()
	s.currentSize = 0
	s.maxSize = 0
	s.mu.Unlock()
}

// StatsSummary is a point-in-time snapshot, JSON-ready for health payloads.
type StatsSummary struct {
	Writes       int64         `json:"writes"`
	Reads        int64         `json:"reads"`
	Peeks        int64         `json:"peeks"`
	Overflows    int64         `json:"overflows"`
	Drops        int64         `json:"drops"`
	CurrentSize  int64         `json:"current_size"`
	MaxSize      int64         `json:"max_size"`
	Throughput   float64       `json:"throughput"`
	DropRate     float64       `json:"drop_rate"`
	OverflowRate float64       `json:"overflow_rate"`
	Uptime       time.Duration `json:"uptime"`
}

// Summary captures every statistic at once. The counters are read
// individually, so a snapshot taken under load is approximate.
func (s *Statistics) Summary() StatsSummary {
	return StatsSummary{
		Writes:       s.Writes(),
		Reads:        s.Reads(),
		Peeks:        s.Peeks(),
		Overflows:    s.Overflows(),
		Drops:        s.Drops(),
		CurrentSize:  s.CurrentSize(),
		MaxSize:      s.MaxSize(),
		Throughput:   s.Throughput(),
		DropRate:     s.DropRate(),
		OverflowRate: s.OverflowRate(),
		Uptime:       s.Uptime(),
	}
}
