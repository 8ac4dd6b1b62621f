package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	domainerrors "github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service/domain/errors"
	"github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service/ports"
)

// Store is the in-memory repository used by tests and local bootstrap.
type Store struct {
	mu           sync.RWMutex
	users        map[string]ports.User
	usersByEmail map[string]string
}

func NewStore() *Store {
	return &Store{
		users:        make(map[string]ports.User),
		usersByEmail: make(map[string]string),
	}
}

func (s *Store) CreateUser(ctx context.Context, user ports.User) (ports.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usersByEmail[user.Email]; taken {
		return ports.User{}, domainerrors.ErrEmailTaken
	}
	s.users[user.ID] = user
	s.usersByEmail[user.Email] = user.ID
	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (ports.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return ports.User{}, domainerrors.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (ports.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[email]
	if !ok {
		return ports.User{}, false, nil
	}
	return s.users[id], true, nil
}

func (s *Store) Now() time.Time { return time.Now().UTC() }

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

type cacheEntry struct {
	user      ports.User
	expiresAt time.Time
}

// UserCache is an in-process look-aside cache with absolute expiry, used
// where a Redis deployment is not wired.
type UserCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	TTL     time.Duration
}

func NewUserCache(ttl time.Duration) *UserCache {
	return &UserCache{entries: make(map[string]cacheEntry), TTL: ttl}
}

func (c *UserCache) GetOrLoadUser(ctx context.Context, id string, loader func(context.Context) (ports.User, error)) (ports.User, error) {
	c.mu.Lock()
	entry, ok := c.entries[id]
	c.mu.Unlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.user, nil
	}

	user, err := loader(ctx)
	if err != nil {
		return ports.User{}, err
	}
	_ = c.PutUser(ctx, user)
	return user, nil
}

func (c *UserCache) PutUser(_ context.Context, user ports.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[user.ID] = cacheEntry{user: user, expiresAt: time.Now().Add(c.TTL)}
	return nil
}
