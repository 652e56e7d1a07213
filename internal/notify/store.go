package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store holds one user's notifications in memory, newest first. Nothing is
// persisted: a server restart discards the list, matching the dashboard's
// reload semantics. All methods are safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	list []Notification
	now  func() time.Time
}

// NewStore creates an empty store using the wall clock.
func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock creates an empty store with an injected clock.
func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{now: now}
}

// Add assigns a fresh id and timestamp, marks the record unread, and
// prepends it to the list. The returned severity drives the client toast.
func (s *Store) Add(d Draft) (Notification, ToastSeverity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := Notification{
		ID:        uuid.New().String(),
		Category:  d.Category,
		Title:     d.Title,
		Message:   d.Message,
		Priority:  d.Priority,
		Link:      d.Link,
		CreatedAt: s.now().UTC(),
	}
	s.list = append([]Notification{n}, s.list...)

	return n, ToastFor(d.Priority)
}

// MarkRead sets the read flag on the given notification. Absent ids are a no-op.
func (s *Store) MarkRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.list {
		if s.list[i].ID == id {
			s.list[i].Read = true
			return
		}
	}
}

// MarkAllRead sets the read flag on every notification.
func (s *Store) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.list {
		s.list[i].Read = true
	}
}

// Remove deletes the given notification. Absent ids are a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.list {
		if s.list[i].ID == id {
			s.list = append(s.list[:i], s.list[i+1:]...)
			return
		}
	}
}

// Clear empties the list.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = nil
}

// UnreadCount is derived on every call rather than cached.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for i := range s.list {
		if !s.list[i].Read {
			count++
		}
	}
	return count
}

// List returns a copy of the notifications, newest first.
func (s *Store) List() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Notification, len(s.list))
	copy(out, s.list)
	return out
}

// Len returns the number of notifications.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.list)
}

// Manager hands out one Store per user, created on first use. Stores are
// owned here and passed into the components that need them rather than
// living as package globals.
type Manager struct {
	mu     sync.Mutex
	stores map[string]*Store
	now    func() time.Time
}

// NewManager creates a Manager using the wall clock.
func NewManager() *Manager {
	return NewManagerWithClock(time.Now)
}

// NewManagerWithClock creates a Manager whose stores share an injected clock.
func NewManagerWithClock(now func() time.Time) *Manager {
	return &Manager{stores: make(map[string]*Store), now: now}
}

// ForUser returns the store for the given user, creating it if needed.
func (m *Manager) ForUser(userID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stores[userID]
	if !ok {
		s = NewStoreWithClock(m.now)
		m.stores[userID] = s
	}
	return s
}

// Each calls fn for every existing store.
func (m *Manager) Each(fn func(userID string, s *Store)) {
	m.mu.Lock()
	ids := make([]string, 0, len(m.stores))
	stores := make([]*Store, 0, len(m.stores))
	for id, s := range m.stores {
		ids = append(ids, id)
		stores = append(stores, s)
	}
	m.mu.Unlock()

	for i := range ids {
		fn(ids[i], stores[i])
	}
}
