// Package metrics keeps in-process request latencies and normalization
// counters for the /metrics endpoint.
package metrics

import (
	"math"
	"sync/atomic"
	"time"
)

// Histogram is a fixed-bucket latency histogram. Bounds are inclusive upper
// limits in microseconds and the last one is math.MaxInt64.
type Histogram struct {
	bounds []int64
	counts []atomic.Int64
	total  atomic.Int64
}

// NewHistogram creates a Histogram over a copy of boundsMicros.
func NewHistogram(boundsMicros []int64) *Histogram {
	h := &Histogram{
		bounds: append([]int64(nil), boundsMicros...),
		counts: make([]atomic.Int64, len(boundsMicros)),
	}
	return h
}

// Observe records one measurement without locking or allocating.
func (h *Histogram) Observe(d time.Duration) {
	h.counts[h.bucket(d.Microseconds())].Add(1)
	h.total.Add(1)
}

// Since observes the time elapsed from start.
func (h *Histogram) Since(start time.Time) {
	h.Observe(time.Since(start))
}

func (h *Histogram) bucket(micros int64) int {
	for i, bound := range h.bounds {
		if micros <= bound {
			return i
		}
	}
	return len(h.bounds) - 1
}

// Snapshot holds percentile estimates taken at one instant.
type Snapshot struct {
	P50   time.Duration `json:"p50"`
	P95   time.Duration `json:"p95"`
	P99   time.Duration `json:"p99"`
	Total int64         `json:"total"`
}

// Snapshot returns the current percentiles. Each percentile is the upper bound
// of the bucket that holds it.
func (h *Histogram) Snapshot() Snapshot {
	total := h.total.Load()
	if total == 0 {
		return Snapshot{}
	}

	counts := make([]int64, len(h.counts))
	for i := range h.counts {
		counts[i] = h.counts[i].Load()
	}
	return Snapshot{
		P50:   h.percentile(counts, total, 50),
		P95:   h.percentile(counts, total, 95),
		P99:   h.percentile(counts, total, 99),
		Total: total,
	}
}

func (h *Histogram) percentile(counts []int64, total int64, p int) time.Duration {
	target := int64(math.Ceil(float64(total) * float64(p) / 100.0))
	var cumulative int64
	for i, c := range counts {
		cumulative += c
		if cumulative < target {
			continue
		}
		bound := h.bounds[i]
		if bound == math.MaxInt64 {
			// overflow bucket: report the last finite bound
			bound = 0
			if i > 0 {
				bound = h.bounds[i-1]
			}
		}
		return time.Duration(bound) * time.Microsecond
	}
	return 0
}

// Bucket sets, upper bounds in microseconds.
var (
	// BucketsLookup suits Pebble point reads.
	BucketsLookup = []int64{50, 100, 250, 500, 750, 1000, 1500, 2000, 5000, 10000, math.MaxInt64}

	// BucketsSearch suits Bleve queries plus the Pebble reads for each hit.
	BucketsSearch = []int64{500, 1000, 2500, 5000, 10000, 15000, 20000, 30000, 50000, 100000, math.MaxInt64}

	// BucketsNormalize suits decoding and normalizing one posted record.
	BucketsNormalize = []int64{10, 25, 50, 100, 250, 500, 1000, 2500, math.MaxInt64}
)
