// Package registry holds the catalogue of operations the completion service
// may request and binds validated arguments to each operation.
package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/newthinker/tickertalk/internal/collector"
	"github.com/newthinker/tickertalk/internal/core"
	"github.com/newthinker/tickertalk/internal/news"
)

// ChartRenderer draws a price series into a session-scoped artifact.
type ChartRenderer interface {
	Render(ctx context.Context, scope string, series core.PriceSeries) (core.ChartRef, error)
}

// Env carries the collaborators an operation may use. Scope identifies the
// session so side-effecting operations never share destinations.
type Env struct {
	Series    collector.SeriesProvider
	Holders   collector.HolderProvider
	News      news.Provider
	Charts    ChartRenderer
	Lookback  time.Duration
	NewsLimit int
	Scope     string
}

func (e Env) lookback() time.Duration {
	if e.Lookback <= 0 {
		return collector.DefaultLookback
	}
	return e.Lookback
}

// Args are validated, coerced arguments: strings are string, integers are
// int, numbers are float64, booleans are bool. Defaults are already applied.
type Args map[string]any

// String returns the string argument name or "".
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Int returns the integer argument name or 0.
func (a Args) Int(name string) int {
	n, _ := a[name].(int)
	return n
}

// Entry is one catalogue operation.
type Entry struct {
	Spec   core.FunctionSpec
	invoke func(ctx context.Context, env Env, args Args) (core.Result, error)
}

// Name returns the wire name of the operation.
func (e Entry) Name() string {
	return e.Spec.Name
}

// Invoke runs the operation with already-validated arguments.
func (e Entry) Invoke(ctx context.Context, env Env, args Args) (core.Result, error) {
	return e.invoke(ctx, env, args)
}

// op binds a typed argument struct to a run function.
func op[A any](spec core.FunctionSpec, bind func(Args) A, run func(context.Context, Env, A) (core.Result, error)) Entry {
	return Entry{
		Spec: spec,
		invoke: func(ctx context.Context, env Env, args Args) (core.Result, error) {
			return run(ctx, env, bind(args))
		},
	}
}

// Registry is an ordered, read-only set of entries.
type Registry struct {
	entries []Entry
	byName  map[string]int
}

// New builds a registry, rejecting duplicate or unnamed entries.
func New(entries ...Entry) (*Registry, error) {
	r := &Registry{
		entries: make([]Entry, 0, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if e.Spec.Name == "" || e.invoke == nil {
			return nil, fmt.Errorf("registry entry %q is incomplete", e.Spec.Name)
		}
		if _, exists := r.byName[e.Spec.Name]; exists {
			return nil, fmt.Errorf("function %s already registered", e.Spec.Name)
		}
		r.byName[e.Spec.Name] = len(r.entries)
		r.entries = append(r.entries, e)
	}
	return r, nil
}

// Lookup returns the entry named name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Specs returns the catalogue in registration order.
func (r *Registry) Specs() []core.FunctionSpec {
	specs := make([]core.FunctionSpec, len(r.entries))
	for i, e := range r.entries {
		specs[i] = e.Spec
	}
	return specs
}

// Names returns entry names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Spec.Name
	}
	return names
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}
