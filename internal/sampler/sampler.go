// Package sampler provides the hardware sampling layer: named metric
// functions registered in a fixed order, collected once per tick.
package sampler

import (
	"github.com/rafaelqm/telewire/internal/wire"
)

// Func reads one metric. Implementations absorb failures and return 0
// rather than an error; a broken sampler must never abort a tick.
type Func func() float64

// Registry holds (name, Func) pairs in registration order. Adding a
// metric is a data change: register another pair, the protocol and the
// producer loop are untouched.
type Registry struct {
	names []string
	funcs map[string]Func
}

func NewRegistry() *Registry {
	return &Registry{
		funcs: make(map[string]Func),
	}
}

// Register adds a metric under the given name. Re-registering a name
// replaces its function but keeps its original position.
func (r *Registry) Register(name string, fn Func) {
	if _, exists := r.funcs[name]; !exists {
		r.names = append(r.names, name)
	}
	r.funcs[name] = fn
}

// Names returns the metric names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of registered metrics.
func (r *Registry) Len() int {
	return len(r.names)
}

// Collect invokes every registered function in registration order and
// returns a fresh sample. One sampler read per metric per call.
func (r *Registry) Collect() wire.Sample {
	s := make(wire.Sample, len(r.names))
	for _, name := range r.names {
		s[name] = r.funcs[name]()
	}
	return s
}
