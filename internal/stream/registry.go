package stream

import (
	"fmt"
	"sync"
	"time"
)

// Factory builds a fresh Task.
type Factory func(opts Options) Task

// Registry maps stream kinds to their factories.
type Registry struct {
	mu        sync.Mutex
	delay     time.Duration
	factories map[Kind]Factory
}

// NewRegistry creates a Registry pre-registered with the four built-in
// streams. delay is passed to every stream it spawns.
func NewRegistry(delay time.Duration) *Registry {
	r := &Registry{
		delay:     delay,
		factories: make(map[Kind]Factory),
	}
	r.factories[KindMethodical] = func(o Options) Task { return NewMethodical(o) }
	r.factories[KindDivergent] = func(o Options) Task { return NewDivergent(o) }
	r.factories[KindSkeptical] = func(o Options) Task { return NewSkeptical(o) }
	r.factories[KindIntegrative] = func(o Options) Task { return NewIntegrative(o) }
	return r
}

// Register replaces the factory for kind.
func (r *Registry) Register(kind Kind, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = f
}

// Spawn creates a single task by kind.
func (r *Registry) Spawn(kind Kind) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("no factory registered for stream kind %q", kind)
	}
	return f(Options{Delay: r.delay}), nil
}

// SpawnAll creates one task per kind, in AllKinds order.
func (r *Registry) SpawnAll() ([]Task, error) {
	tasks := make([]Task, 0, len(AllKinds()))
	for _, k := range AllKinds() {
		t, err := r.Spawn(k)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
