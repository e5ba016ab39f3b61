package convo

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNegativeCapacity is returned when a caller asks for a capacity below zero.
var ErrNegativeCapacity = errors.New("context capacity must be 0 or greater")

// channelContext is one channel's bounded conversation window. Instances are
// owned exclusively by the Store and never escape it.
type channelContext struct {
	capacity int
	turns    []Turn
}

// trim evicts the oldest turns until len(turns) <= capacity.
func (c *channelContext) trim() {
	if over := len(c.turns) - c.capacity; over > 0 {
		c.turns = append(c.turns[:0], c.turns[over:]...)
	}
}

// Store maps channel IDs to bounded conversation windows. Channel contexts
// are created lazily on first access with the store's default capacity and
// live for the process lifetime. All operations are safe for concurrent use.
type Store struct {
	mu              sync.Mutex
	defaultCapacity int
	channels        map[string]*channelContext
}

// NewStore creates a Store whose lazily-created channels hold at most
// defaultCapacity turns.
func NewStore(defaultCapacity int) (*Store, error) {
	if defaultCapacity < 0 {
		return nil, fmt.Errorf("default capacity %d: %w", defaultCapacity, ErrNegativeCapacity)
	}
	return &Store{
		defaultCapacity: defaultCapacity,
		channels:        make(map[string]*channelContext),
	}, nil
}

// channel returns the context for channelID, creating it if absent.
// Callers must hold s.mu.
func (s *Store) channel(channelID string) *channelContext {
	c, ok := s.channels[channelID]
	if !ok {
		c = &channelContext{capacity: s.defaultCapacity}
		s.channels[channelID] = c
	}
	return c
}

// Snapshot is a point-in-time copy of one channel's window.
type Snapshot struct {
	Turns    []Turn
	Capacity int
}

// Get returns a snapshot of the channel's window, creating the channel with
// the default capacity on first access. It never fails.
func (s *Store) Get(channelID string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.channel(channelID)
	turns := make([]Turn, len(c.turns))
	copy(turns, c.turns)
	return Snapshot{Turns: turns, Capacity: c.capacity}
}

// AppendTurn appends a turn to the channel's window, evicting the oldest
// turns when the window exceeds its capacity. With capacity 0 the appended
// turn is evicted immediately.
func (s *Store) AppendTurn(channelID string, role Role, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.channel(channelID)
	c.turns = append(c.turns, Turn{Role: role, Text: text})
	c.trim()
}

// SetCapacity sets the channel's capacity and truncates its window to the
// newest capacity turns. A negative capacity is rejected without mutating
// any state.
func (s *Store) SetCapacity(channelID string, capacity int) error {
	if capacity < 0 {
		return fmt.Errorf("capacity %d: %w", capacity, ErrNegativeCapacity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.channel(channelID)
	c.capacity = capacity
	c.trim()
	return nil
}

// Clear empties the channel's window. Capacity is unchanged.
func (s *Store) Clear(channelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.channel(channelID).turns = nil
}
