package reorder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yeremiapane/restaurant-backoffice/client"
	"github.com/yeremiapane/restaurant-backoffice/models"
	"github.com/yeremiapane/restaurant-backoffice/utils"
)

var (
	ErrUnknownItem = errors.New("item not in list")
	ErrCrossGroup  = errors.New("items belong to different groups")
)

const (
	msgCrossGroup = "Solo puedes reordenar modificadores del mismo tipo"
	msgPersist    = "Error al actualizar el orden en el servidor"
)

type (
	ListFunc[T any] func(ctx context.Context, creds client.Credentials) ([]T, error)
	PersistFunc     func(ctx context.Context, creds client.Credentials, positions []models.Position) error
)

// Store keeps one resource's list in display order.
type Store[T Item[T]] struct {
	Name string
	List ListFunc[T]
	// Persist saves positions. Nil keeps the order local.
	Persist PersistFunc
	// GroupOf restricts moves to items of the same group.
	GroupOf func(T) int64
	// Success builds the toast for a saved move; active is the dragged item.
	Success func(active T) string

	moveMu sync.Mutex
	list   *Optimistic[T]
}

func NewStore[T Item[T]](name string, list ListFunc[T], persist PersistFunc) *Store[T] {
	return &Store[T]{Name: name, List: list, Persist: persist, list: NewOptimistic[T](nil)}
}

func (s *Store[T]) Items() []T { return s.list.Items() }

// Replace sets the local list without touching the backend.
func (s *Store[T]) Replace(items []T) { s.list.Set(items) }

func (s *Store[T]) Load(ctx context.Context, creds client.Credentials) ([]T, error) {
	items, err := s.List(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.Name, err)
	}
	s.list.Set(items)
	return items, nil
}

// Move drops activeID onto overID. The local list changes first; a failed save
// restores it and returns an error notice.
func (s *Store[T]) Move(ctx context.Context, creds client.Credentials, activeID, overID int64) (*models.Notice, error) {
	if activeID == overID {
		return nil, nil
	}

	s.moveMu.Lock()
	defer s.moveMu.Unlock()

	items := s.list.Items()
	from, to := indexOf(items, activeID), indexOf(items, overID)
	if from < 0 || to < 0 {
		return nil, fmt.Errorf("%s %d -> %d: %w", s.Name, activeID, overID, ErrUnknownItem)
	}
	active := items[from]

	var changed []T
	mutate := func(cur []T) []T {
		moved := Move(cur, from, to)
		changed = moved
		return moved
	}
	if s.GroupOf != nil {
		group := s.GroupOf(active)
		if group != s.GroupOf(items[to]) {
			n := models.ErrorNotice(msgCrossGroup)
			return &n, ErrCrossGroup
		}
		mutate = func(cur []T) []T {
			var members, others []T
			for _, it := range cur {
				if s.GroupOf(it) == group {
					members = append(members, it)
				} else {
					others = append(others, it)
				}
			}
			members = Move(members, indexOf(members, activeID), indexOf(members, overID))
			members = Renumber(members)
			changed = members
			return append(others, members...)
		}
	} else {
		base := mutate
		mutate = func(cur []T) []T { return Renumber(base(cur)) }
	}

	pending := s.list.Apply(mutate)
	if s.Persist != nil {
		if err := s.Persist(ctx, creds, Positions(changed)); err != nil {
			pending.Rollback()
			utils.Error().WithError(err).WithField("resource", s.Name).Error("reorder rolled back")
			n := models.ErrorNotice(msgPersist)
			return &n, err
		}
	}
	pending.Commit()

	n := models.SuccessNotice(s.successMessage(active))
	return &n, nil
}

func (s *Store[T]) successMessage(active T) string {
	if s.Success != nil {
		return s.Success(active)
	}
	return "Orden de " + s.Name + " actualizado correctamente"
}

func indexOf[T Item[T]](items []T, id int64) int {
	for i, it := range items {
		if it.EntityID() == id {
			return i
		}
	}
	return -1
}

// Sync replaces the list with fresh while keeping the local order: known items
// stay where they were, new ones go last, missing ones are dropped.
func (s *Store[T]) Sync(fresh []T) []T {
	s.moveMu.Lock()
	defer s.moveMu.Unlock()

	byID := make(map[int64]T, len(fresh))
	for _, it := range fresh {
		byID[it.EntityID()] = it
	}

	out := make([]T, 0, len(fresh))
	for _, it := range s.list.Items() {
		if f, ok := byID[it.EntityID()]; ok {
			out = append(out, f)
			delete(byID, it.EntityID())
		}
	}
	for _, it := range fresh {
		if _, ok := byID[it.EntityID()]; ok {
			out = append(out, it)
		}
	}
	out = Renumber(out)
	s.list.Set(out)
	return out
}
