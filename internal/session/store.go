package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/DaviiSA/JA-app/internal/form"
	"github.com/DaviiSA/JA-app/internal/metrics"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultCapacity = 1024

var ErrNotFound = errors.New("form session not found")

// Factory builds the controller for a new session.
type Factory func() *form.Controller

// Store keeps one form controller per page session in memory. When the
// capacity is reached the least recently used session is dropped.
type Store struct {
	cache   *lru.Cache[string, *form.Controller]
	factory Factory
}

func NewStore(capacity int, factory Factory) (*Store, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if factory == nil {
		return nil, errors.New("session factory is required")
	}

	cache, err := lru.New[string, *form.Controller](capacity)
	if err != nil {
		return nil, fmt.Errorf("init session cache: %w", err)
	}
	return &Store{cache: cache, factory: factory}, nil
}

func (s *Store) Create() (string, *form.Controller) {
	id := uuid.NewString()
	controller := s.factory()
	s.cache.Add(id, controller)
	metrics.SetActiveSessions(s.cache.Len())
	return id, controller
}

func (s *Store) Get(id string) (*form.Controller, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	controller, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return controller, nil
}

func (s *Store) Delete(id string) bool {
	removed := s.cache.Remove(id)
	metrics.SetActiveSessions(s.cache.Len())
	return removed
}

func (s *Store) Len() int {
	return s.cache.Len()
}
