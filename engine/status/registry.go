package status

import "sync/atomic"

// Registry is the central metrics facade shared by the loop and its observers
// The loop writes through cached pointers; HUD and reporters read concurrently
type Registry struct {
	Bools  *MetricMap[atomic.Bool]
	Ints   *MetricMap[atomic.Int64]
	Floats *MetricMap[AtomicFloat]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:  NewMetricMap[atomic.Bool](),
		Ints:   NewMetricMap[atomic.Int64](),
		Floats: NewMetricMap[AtomicFloat](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count()
}

// Snapshot is a point-in-time copy of every registered metric
type Snapshot struct {
	Bools  map[string]bool
	Ints   map[string]int64
	Floats map[string]float64
}

// Snapshot copies current values; individual reads are atomic, the set is not
func (r *Registry) Snapshot() Snapshot {
	s := Snapshot{
		Bools:  make(map[string]bool, r.Bools.Count()),
		Ints:   make(map[string]int64, r.Ints.Count()),
		Floats: make(map[string]float64, r.Floats.Count()),
	}
	r.Bools.Range(func(key string, ptr *atomic.Bool) {
		s.Bools[key] = ptr.Load()
	})
	r.Ints.Range(func(key string, ptr *atomic.Int64) {
		s.Ints[key] = ptr.Load()
	})
	r.Floats.Range(func(key string, ptr *AtomicFloat) {
		s.Floats[key] = ptr.Get()
	})
	return s
}

// Fields flattens the snapshot into one map keyed by metric name
func (s Snapshot) Fields() map[string]any {
	out := make(map[string]any, len(s.Bools)+len(s.Ints)+len(s.Floats))
	for k, v := range s.Bools {
		out[k] = v
	}
	for k, v := range s.Ints {
		out[k] = v
	}
	for k, v := range s.Floats {
		out[k] = v
	}
	return out
}
