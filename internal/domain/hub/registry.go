package hub

import (
	"fmt"
	"sort"
)

// Registry is an instance-scoped table of steps. It is safe to share a
// fully built registry between hubs; registration itself is not
// synchronized.
type Registry struct {
	specs     []StepSpec
	producers map[string]Producer
	index     map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		producers: make(map[string]Producer),
		index:     make(map[string]int),
	}
}

// Register adds a step with the given name, rank and producer.
func (r *Registry) Register(name string, rank int, producer Producer, opts ...StepOption) error {
	spec := StepSpec{Name: name, Rank: rank, Join: JoinNone}
	for _, opt := range opts {
		opt(&spec)
	}
	return r.RegisterSpec(spec, producer)
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, rank int, producer Producer, opts ...StepOption) *Registry {
	if err := r.Register(name, rank, producer, opts...); err != nil {
		panic(err)
	}
	return r
}

// RegisterSpec adds a step described as data. A nil producer is accepted
// for registries that are only inspected, never executed.
func (r *Registry) RegisterSpec(spec StepSpec, producer Producer) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	if _, exists := r.index[spec.Name]; exists {
		return NewError(KindConfiguration, ErrCodeConfigInvalid,
			fmt.Sprintf("step %q is already registered", spec.Name)).
			WithStep(spec.Name)
	}

	r.index[spec.Name] = len(r.specs)
	r.specs = append(r.specs, spec.clone())
	if producer != nil {
		r.producers[spec.Name] = producer
	}
	return nil
}

// Len returns the number of registered steps.
func (r *Registry) Len() int {
	return len(r.specs)
}

// Specs returns the steps in registration order.
func (r *Registry) Specs() []StepSpec {
	out := make([]StepSpec, len(r.specs))
	for i, s := range r.specs {
		out[i] = s.clone()
	}
	return out
}

// Steps returns the steps in execution order: ascending rank, ties broken
// by registration order.
func (r *Registry) Steps() []StepSpec {
	out := r.Specs()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rank < out[j].Rank
	})
	return out
}

// Lookup returns the step registered under name.
func (r *Registry) Lookup(name string) (StepSpec, bool) {
	i, ok := r.index[name]
	if !ok {
		return StepSpec{}, false
	}
	return r.specs[i].clone(), true
}

func (r *Registry) producer(name string) Producer {
	return r.producers[name]
}
