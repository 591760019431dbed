// Package resource provides the generic resource lookup used by the
// ownership gate: a registry mapping a resource-kind tag to a typed fetch
// function, decided at startup. One gate serves every assignable entity
// without per-entity duplication or reflection.
package resource

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"fieldops.org/internal/auth"
)

// Assignable resource kinds.
const (
	KindVehicle = "vehicle"
	KindTask    = "task"
	KindPayment = "payment"
)

// Resource is the minimal view the gate and the read endpoints need.
type Resource struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	AssignedTo string    `json:"assigned_to,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// Fetcher loads one resource of a fixed kind, or auth.ErrResourceNotFound.
type Fetcher func(ctx context.Context, id string) (Resource, error)

// Registry maps kind tags to fetchers. It is populated once at startup and
// read-only afterwards, so lookups need no locking.
type Registry struct {
	fetchers map[string]Fetcher
}

func NewRegistry() *Registry {
	return &Registry{fetchers: make(map[string]Fetcher)}
}

// Register binds a fetcher to a kind tag. Registering a kind twice is a
// wiring bug.
func (r *Registry) Register(kind string, fn Fetcher) error {
	kind = strings.TrimSpace(kind)
	if kind == "" || fn == nil {
		return errors.New("resource: kind and fetcher are required")
	}
	if _, ok := r.fetchers[kind]; ok {
		return fmt.Errorf("resource: kind %q already registered", kind)
	}
	r.fetchers[kind] = fn
	return nil
}

// Kinds returns the registered kind tags in stable order.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(r.fetchers))
	for k := range r.fetchers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Get loads a resource by kind and id. An unregistered kind fails closed as
// not found.
func (r *Registry) Get(ctx context.Context, kind, id string) (Resource, error) {
	fn, ok := r.fetchers[kind]
	if !ok {
		return Resource{}, auth.ErrResourceNotFound
	}
	return fn(ctx, id)
}

// FindAssignee implements auth.ResourceFinder.
func (r *Registry) FindAssignee(ctx context.Context, kind, id string) (string, error) {
	res, err := r.Get(ctx, kind, id)
	if err != nil {
		return "", err
	}
	return res.AssignedTo, nil
}
