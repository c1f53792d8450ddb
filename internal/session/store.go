// Package session tracks signed-in identities and tells subscribers when one changes.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/anonto42/circle/backend/internal/models"
)

// ChangeKind describes why an identity changed
type ChangeKind string

const (
	ChangeUpdated   ChangeKind = "updated"
	ChangeSignedOut ChangeKind = "signed_out"
)

type Change struct {
	UserID uint
	Kind   ChangeKind
}

// Loader fetches the authoritative identity record
type Loader interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// DefaultTTL bounds how long a cached identity can lag behind writes made elsewhere
// (another instance, the operator CLI, counter updates)
const DefaultTTL = 30 * time.Second

type Option func(*Store)

// WithTTL sets how long an identity stays cached; zero or negative keeps DefaultTTL
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

type entry struct {
	user      models.User
	expiresAt time.Time
}

// Store caches identity records for authenticated requests.
// Entries are dropped on Invalidate/End or once their TTL passes, and reloaded on the next Load.
type Store struct {
	loader Loader
	ttl    time.Duration
	now    func() time.Time

	mu          sync.RWMutex
	identities  map[uint]entry
	subscribers map[uint64]func(Change)
	nextSubID   uint64
}

func NewStore(loader Loader, opts ...Option) *Store {
	s := &Store{
		loader:      loader,
		ttl:         DefaultTTL,
		now:         time.Now,
		identities:  make(map[uint]entry),
		subscribers: make(map[uint64]func(Change)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns a copy of the identity, going to the loader on a miss or an expired entry
func (s *Store) Load(ctx context.Context, id uint) (*models.User, error) {
	now := s.now()

	s.mu.RLock()
	cached, ok := s.identities[id]
	s.mu.RUnlock()
	if ok && now.Before(cached.expiresAt) {
		user := cached.user
		return &user, nil
	}

	user, err := s.loader.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.identities[id] = entry{user: *user, expiresAt: now.Add(s.ttl)}
	s.mu.Unlock()

	copied := *user
	return &copied, nil
}

// Invalidate drops the cached identity and notifies subscribers that it changed
func (s *Store) Invalidate(id uint) {
	s.drop(Change{UserID: id, Kind: ChangeUpdated})
}

// End tears down the identity's session state on sign-out
func (s *Store) End(id uint) {
	s.drop(Change{UserID: id, Kind: ChangeSignedOut})
}

func (s *Store) drop(change Change) {
	s.mu.Lock()
	delete(s.identities, change.UserID)
	subs := make([]func(Change), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(change)
	}
}

// Subscribe registers fn for identity changes. The returned func unsubscribes and is safe to call twice.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Len reports how many identities are cached
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.identities)
}
