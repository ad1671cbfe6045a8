package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formwizard/pkg/model"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 2 * time.Hour

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL overrides DefaultTTL. Non-positive values keep sessions forever.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithStoreClock replaces time.Now for expiry bookkeeping.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSessionOptions applies opts to every session the store creates.
func WithSessionOptions(opts ...Option) StoreOption {
	return func(s *Store) {
		s.sessionOpts = append(s.sessionOpts, opts...)
	}
}

type entry struct {
	session *Session
	seen    time.Time
}

// Store keeps sessions in memory.
type Store struct {
	ttl         time.Duration
	now         func() time.Time
	sessionOpts []Option

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewStore builds an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		ttl:      DefaultTTL,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Create starts a session for form under a fresh id.
func (s *Store) Create(form *model.Form, opts ...Option) *Session {
	all := make([]Option, 0, len(s.sessionOpts)+len(opts))
	all = append(all, s.sessionOpts...)
	all = append(all, opts...)
	sess := New(uuid.NewString(), form, all...)

	s.mu.Lock()
	s.sessions[sess.ID()] = &entry{session: sess, seen: s.now()}
	s.mu.Unlock()
	return sess
}

// Get returns the session when it exists, belongs to formID, and has not
// expired. A hit refreshes the idle timer.
func (s *Store) Get(formID, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok || e.session.Form().ID != formID {
		return nil, ErrSessionNotFound
	}
	now := s.now()
	if s.expired(e, now) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	e.seen = now
	return e.session, nil
}

// Delete drops a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len reports the number of stored sessions, expired ones included until
// the next sweep.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.sessions {
		if s.expired(e, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.ttl <= 0 {
		return
	}
	logger := zerolog.Ctx(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				logger.Debug().Int("removed", n).Msg("expired sessions swept")
			}
		}
	}
}

func (s *Store) expired(e *entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.seen) > s.ttl
}
