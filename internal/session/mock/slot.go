package sessionmock

import (
	"context"
	"sync"

	"github.com/openkcm/blog-client/internal/session"
)

type SlotOption func(*Slot)

// Slot is an in-memory session.Slot with injectable failures.
type Slot struct {
	mu     sync.Mutex
	values map[string]string

	getErr, setErr, deleteErr error

	gets, sets, deletes int
}

var _ = session.Slot(&Slot{})

func WithValue(key, value string) SlotOption {
	return func(s *Slot) { s.values[key] = value }
}
func WithGetError(err error) SlotOption {
	return func(s *Slot) { s.getErr = err }
}
func WithSetError(err error) SlotOption {
	return func(s *Slot) { s.setErr = err }
}
func WithDeleteError(err error) SlotOption {
	return func(s *Slot) { s.deleteErr = err }
}

func NewInMemSlot(opts ...SlotOption) *Slot {
	s := &Slot{
		values: make(map[string]string),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Slot) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gets++
	if s.getErr != nil {
		return "", s.getErr
	}
	v, ok := s.values[key]
	if !ok {
		return "", session.ErrSlotEmpty
	}
	return v, nil
}

func (s *Slot) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	return nil
}

func (s *Slot) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deletes++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.values, key)
	return nil
}

// TGet returns the stored value for tests, bypassing injected errors.
func (s *Slot) TGet(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	return v, ok
}

// Calls returns how often Get, Set and Delete were called.
func (s *Slot) Calls() (gets, sets, deletes int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.gets, s.sets, s.deletes
}
