package resolve

import (
	"slices"
	"sync"
	"time"
)

type fetchSample struct {
	at       time.Time
	duration time.Duration
	ok       bool
}

// StatsSnapshot aggregates remote fetches seen within the window.
type StatsSnapshot struct {
	Count    int     `json:"count"`
	Failures int     `json:"failures"`
	MinMs    int64   `json:"min_ms"`
	MaxMs    int64   `json:"max_ms"`
	AvgMs    float64 `json:"avg_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
	P99Ms    float64 `json:"p99_ms"`
}

// FetchStats keeps a rolling window of remote fetch latencies.
type FetchStats struct {
	mu      sync.Mutex
	samples []fetchSample
	window  time.Duration
	now     func() time.Time
}

func NewFetchStats(window time.Duration) *FetchStats {
	if window <= 0 {
		window = time.Hour
	}
	return &FetchStats{
		samples: make([]fetchSample, 0, 64),
		window:  window,
		now:     time.Now,
	}
}

// Record adds one fetch. Negative durations count as zero.
func (s *FetchStats) Record(d time.Duration, ok bool) {
	d = max(d, 0)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictLocked(now)
	s.samples = append(s.samples, fetchSample{at: now, duration: d, ok: ok})
}

func (s *FetchStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked(s.now())
	if len(s.samples) == 0 {
		return StatsSnapshot{}
	}

	ms := make([]int64, len(s.samples))
	var total int64
	failures := 0
	for i, sm := range s.samples {
		ms[i] = sm.duration.Milliseconds()
		total += ms[i]
		if !sm.ok {
			failures++
		}
	}
	slices.Sort(ms)

	return StatsSnapshot{
		Count:    len(ms),
		Failures: failures,
		MinMs:    ms[0],
		MaxMs:    ms[len(ms)-1],
		AvgMs:    float64(total) / float64(len(ms)),
		P50Ms:    interpolate(ms, 50),
		P95Ms:    interpolate(ms, 95),
		P99Ms:    interpolate(ms, 99),
	}
}

func (s *FetchStats) evictLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	s.samples = slices.DeleteFunc(s.samples, func(sm fetchSample) bool {
		return sm.at.Before(cutoff)
	})
}

// interpolate returns the linearly interpolated pct-th percentile of a
// sorted slice.
func interpolate(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	pos := float64(len(sorted)-1) * pct / 100
	lo := int(pos)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := pos - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}
