package profiling

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Lightweight per-tick CPU profiler for scheduler-level insights.

var (
	mu         sync.Mutex
	tickTotals = make(map[string]time.Duration)
	tickCounts = make(map[string]int64)
)

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiling.Track("subsystem.Operation")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		tickTotals[name] += d
		tickCounts[name]++
		mu.Unlock()
	}
}

// ResetTick clears the current per-tick totals. Call at the start of each
// scheduling tick.
func ResetTick() {
	mu.Lock()
	for k := range tickTotals {
		delete(tickTotals, k)
	}
	for k := range tickCounts {
		delete(tickCounts, k)
	}
	mu.Unlock()
}

// Snapshot returns a copy of the current per-tick totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(tickTotals))
	for k, v := range tickTotals {
		out[k] = v
	}
	return out
}

// Count returns how many times an operation ran this tick.
func Count(name string) int64 {
	mu.Lock()
	defer mu.Unlock()
	return tickCounts[name]
}

// TopN formats the top N durations from the current tick totals.
// Example: "world.SchedulerTick:4.2ms, meshing.Build:2.1ms"
func TopN(n int) string {
	ss := Snapshot()
	type pair struct {
		name string
		dur  time.Duration
	}
	list := make([]pair, 0, len(ss))
	for k, v := range ss {
		list = append(list, pair{name: k, dur: v})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].dur > list[j].dur })
	if n > len(list) {
		n = len(list)
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ms := float64(list[i].dur.Microseconds()) / 1000.0
		parts = append(parts, list[i].name+":"+strconv.FormatFloat(ms, 'f', 1, 64)+"ms")
	}
	return strings.Join(parts, ", ")
}
