package metrics

import (
	"sync"
	"sync/atomic"
)

// Counter counts events by label, e.g. normalization outcomes.
type Counter struct {
	mu     sync.RWMutex
	values map[string]*atomic.Int64
}

func newCounter() *Counter {
	return &Counter{values: make(map[string]*atomic.Int64)}
}

// Inc adds one to label.
func (c *Counter) Inc(label string) {
	c.mu.RLock()
	v, ok := c.values[label]
	c.mu.RUnlock()
	if !ok {
		c.mu.Lock()
		if v, ok = c.values[label]; !ok {
			v = new(atomic.Int64)
			c.values[label] = v
		}
		c.mu.Unlock()
	}
	v.Add(1)
}

// Values copies the current counts.
func (c *Counter) Values() map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]int64, len(c.values))
	for label, v := range c.values {
		out[label] = v.Load()
	}
	return out
}

// Registry is a named set of histograms and counters.
type Registry struct {
	mu       sync.RWMutex
	hists    map[string]*Histogram
	counters map[string]*Counter
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		hists:    make(map[string]*Histogram),
		counters: make(map[string]*Counter),
	}
}

// Register returns the histogram called name, creating it with bounds on
// first use.
func (r *Registry) Register(name string, bounds []int64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.hists[name]; ok {
		return h
	}
	h := NewHistogram(bounds)
	r.hists[name] = h
	return h
}

// Counter returns the counter called name, creating it on first use.
func (r *Registry) Counter(name string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[name]; ok {
		return c
	}
	c := newCounter()
	r.counters[name] = c
	return c
}

// Report is the JSON body served at /metrics.
type Report struct {
	Latency  map[string]Snapshot         `json:"latency"`
	Counters map[string]map[string]int64 `json:"counters"`
}

// Snapshot returns every histogram and counter.
func (r *Registry) Snapshot() Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rep := Report{
		Latency:  make(map[string]Snapshot, len(r.hists)),
		Counters: make(map[string]map[string]int64, len(r.counters)),
	}
	for name, h := range r.hists {
		rep.Latency[name] = h.Snapshot()
	}
	for name, c := range r.counters {
		rep.Counters[name] = c.Values()
	}
	return rep
}
