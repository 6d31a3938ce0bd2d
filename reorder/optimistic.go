// Package reorder implements drag-and-drop ordering: the local list changes at
// once and is restored when the backend refuses the new order.
package reorder

import (
	"slices"
	"sync"

	"github.com/yeremiapane/restaurant-backoffice/models"
)

// Item is a catalog entity that can be ranked.
type Item[T any] interface {
	EntityID() int64
	WithPosicion(p int) T
}

// Move returns a copy of items with the element at from placed at to.
func Move[T any](items []T, from, to int) []T {
	out := slices.Clone(items)
	if from == to || from < 0 || to < 0 || from >= len(out) || to >= len(out) {
		return out
	}
	v := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, v)
}

// Positions ranks items 1..n in their current order.
func Positions[T Item[T]](items []T) []models.Position {
	out := make([]models.Position, len(items))
	for i, it := range items {
		out[i] = models.Position{ID: it.EntityID(), Posicion: i + 1}
	}
	return out
}

// Renumber stamps each item with its 1-based rank.
func Renumber[T Item[T]](items []T) []T {
	out := make([]T, len(items))
	for i, it := range items {
		out[i] = it.WithPosicion(i + 1)
	}
	return out
}

// Optimistic holds a list that is mutated before the change is confirmed.
type Optimistic[T any] struct {
	mu    sync.RWMutex
	items []T
}

func NewOptimistic[T any](items []T) *Optimistic[T] {
	return &Optimistic[T]{items: slices.Clone(items)}
}

func (o *Optimistic[T]) Items() []T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return slices.Clone(o.items)
}

func (o *Optimistic[T]) Set(items []T) {
	o.mu.Lock()
	o.items = slices.Clone(items)
	o.mu.Unlock()
}

// Apply snapshots the list, runs mutate and keeps its result.
func (o *Optimistic[T]) Apply(mutate func([]T) []T) *Pending[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	snapshot := slices.Clone(o.items)
	o.items = mutate(slices.Clone(o.items))
	return &Pending[T]{owner: o, snapshot: snapshot}
}

// Pending is an applied but unconfirmed change. Only the first Commit or
// Rollback has an effect.
type Pending[T any] struct {
	owner    *Optimistic[T]
	snapshot []T
	once     sync.Once
}

func (p *Pending[T]) Commit() {
	p.once.Do(func() {})
}

// Rollback restores the list captured before Apply, discarding anything that
// happened since.
func (p *Pending[T]) Rollback() {
	p.once.Do(func() {
		p.owner.Set(p.snapshot)
	})
}
