package cart

import (
	"sync"
	"time"
)

type session struct {
	cart     *Cart
	lastSeen time.Time
}

// Store maps session tokens to carts. Carts are in-memory only and expire
// after ttl of inactivity.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the cart for the given session token, creating it on first use.
func (s *Store) Get(token string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		sess = &session{cart: New()}
		s.sessions[token] = sess
	}
	sess.lastSeen = s.now()
	return sess.cart
}

func (s *Store) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// Prune drops sessions idle for longer than the store ttl and returns how
// many were removed.
func (s *Store) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for token, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// StartSweeper prunes expired sessions every interval until stop is closed.
func (s *Store) StartSweeper(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Prune()
			case <-stop:
				return
			}
		}
	}()
}
