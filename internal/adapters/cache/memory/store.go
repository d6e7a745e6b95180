package memory

import (
	"sync"
	"time"

	"github.com/bnema/daily-fortune/internal/ports"
)

const (
	// ResponseTTL bounds records served to API callers.
	ResponseTTL = 12 * time.Hour
	// TransportTTL bounds raw upstream responses.
	TransportTTL = time.Hour
)

type entry[T any] struct {
	value     T
	createdAt time.Time
}

// Store is an in-memory TTL cache. Expired entries are evicted lazily by Get;
// there is no size bound and no background sweep. Each process owns its own
// Store, nothing is shared across instances.
type Store[T any] struct {
	ttl   time.Duration
	clock ports.Clock

	mu      sync.Mutex
	entries map[string]entry[T]
}

var _ ports.Cache[int] = (*Store[int])(nil)

func NewStore[T any](ttl time.Duration, clock ports.Clock) *Store[T] {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if ttl <= 0 {
		ttl = ResponseTTL
	}

	return &Store[T]{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]entry[T]),
	}
}

// Get returns the value for key while now - createdAt < ttl. An expired entry
// is deleted and reported as absent.
func (s *Store[T]) Get(key string) (T, bool) {
	var zero T

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return zero, false
	}

	if s.clock.Now().Sub(e.createdAt) >= s.ttl {
		delete(s.entries, key)
		return zero, false
	}

	return e.value, true
}

// Set stores value under key, overwriting any previous entry.
func (s *Store[T]) Set(key string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry[T]{value: value, createdAt: s.clock.Now()}
}

func (s *Store[T]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

// Len counts stored entries, including expired ones not yet looked up.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

func (s *Store[T]) TTL() time.Duration {
	return s.ttl
}
