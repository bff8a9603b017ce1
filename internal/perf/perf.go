// Package perf is lightweight, opt-in timing instrumentation for the hot
// paths (decode, apply, render). Disabled unless TERMHIVE_PERF is set;
// summaries go to the log at a fixed interval.
package perf

import (
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/termhive/termhive/internal/logging"
)

const (
	sampleWindow = 256
	logInterval  = 5 * time.Second
)

type stat struct {
	count   int64
	total   time.Duration
	max     time.Duration
	samples []time.Duration
	idx     int
	full    bool
}

var (
	mu      sync.Mutex
	stats   = map[string]*stat{}
	lastLog time.Time
	enabled atomic.Bool
)

func init() {
	enabled.Store(os.Getenv("TERMHIVE_PERF") != "")
}

// Enabled reports whether instrumentation is active.
func Enabled() bool { return enabled.Load() }

// SetEnabled toggles instrumentation, mainly for tests.
func SetEnabled(on bool) { enabled.Store(on) }

// Time records the duration of the enclosing call:
//
//	defer perf.Time("render")()
func Time(name string) func() {
	if !enabled.Load() {
		return func() {}
	}
	start := time.Now()
	return func() { Record(name, time.Since(start)) }
}

// Record adds one sample to the named stat.
func Record(name string, d time.Duration) {
	if !enabled.Load() {
		return
	}
	mu.Lock()
	s := stats[name]
	if s == nil {
		s = &stat{samples: make([]time.Duration, sampleWindow)}
		stats[name] = s
	}
	s.count++
	s.total += d
	if d > s.max {
		s.max = d
	}
	s.samples[s.idx] = d
	s.idx++
	if s.idx == sampleWindow {
		s.idx = 0
		s.full = true
	}
	due := time.Since(lastLog) >= logInterval
	if due {
		lastLog = time.Now()
	}
	mu.Unlock()
	if due {
		logSummary()
	}
}

// Snapshot returns the recorded count for one stat, for tests and debugging.
func Snapshot(name string) (count int64, avg time.Duration) {
	mu.Lock()
	defer mu.Unlock()
	s := stats[name]
	if s == nil || s.count == 0 {
		return 0, 0
	}
	return s.count, s.total / time.Duration(s.count)
}

func logSummary() {
	mu.Lock()
	defer mu.Unlock()
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := stats[name]
		if s.count == 0 {
			continue
		}
		logging.Info("perf %s: n=%d avg=%v p95=%v max=%v",
			name, s.count, s.total/time.Duration(s.count), s.p95(), s.max)
	}
}

func (s *stat) p95() time.Duration {
	n := s.idx
	if s.full {
		n = sampleWindow
	}
	if n == 0 {
		return 0
	}
	window := make([]time.Duration, n)
	copy(window, s.samples[:n])
	sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
	return window[(n*95)/100]
}
