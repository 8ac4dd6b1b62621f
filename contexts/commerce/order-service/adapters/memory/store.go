package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domainerrors "github.com/sajithdilhan/ECommerceBackend/contexts/commerce/order-service/domain/errors"
	"github.com/sajithdilhan/ECommerceBackend/contexts/commerce/order-service/ports"
)

// Store is the in-memory repository used by tests and local bootstrap. It
// backs both orders and the known-user replica.
type Store struct {
	mu         sync.RWMutex
	orders     map[string]ports.Order
	knownUsers map[string]ports.KnownUser
}

func NewStore() *Store {
	return &Store{
		orders:     make(map[string]ports.Order),
		knownUsers: make(map[string]ports.KnownUser),
	}
}

func (s *Store) CreateOrder(ctx context.Context, order ports.Order) (ports.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID] = order
	return order, nil
}

func (s *Store) GetOrderByID(ctx context.Context, id string) (ports.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return ports.Order{}, domainerrors.ErrOrderNotFound
	}
	return order, nil
}

func (s *Store) GetOrdersByUser(ctx context.Context, userID string) ([]ports.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]ports.Order, 0)
	for _, order := range s.orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (s *Store) GetKnownUserByID(ctx context.Context, userID string) (ports.KnownUser, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	knownUser, ok := s.knownUsers[userID]
	return knownUser, ok, nil
}

func (s *Store) CreateKnownUser(ctx context.Context, knownUser ports.KnownUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// First write wins, mirroring the storage-level conflict policy.
	if _, exists := s.knownUsers[knownUser.UserID]; exists {
		return nil
	}
	s.knownUsers[knownUser.UserID] = knownUser
	return nil
}

// KnownUserCount reports replica size, for tests.
func (s *Store) KnownUserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.knownUsers)
}

func (s *Store) Now() time.Time { return time.Now().UTC() }

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

type cacheEntry struct {
	order     ports.Order
	expiresAt time.Time
}

// OrderCache is an in-process look-aside cache with absolute expiry, used
// where a Redis deployment is not wired.
type OrderCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	TTL     time.Duration
}

func NewOrderCache(ttl time.Duration) *OrderCache {
	return &OrderCache{entries: make(map[string]cacheEntry), TTL: ttl}
}

func (c *OrderCache) GetOrLoadOrder(ctx context.Context, id string, loader func(context.Context) (ports.Order, error)) (ports.Order, error) {
	c.mu.Lock()
	entry, ok := c.entries[id]
	c.mu.Unlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.order, nil
	}

	order, err := loader(ctx)
	if err != nil {
		return ports.Order{}, err
	}
	_ = c.PutOrder(ctx, order)
	return order, nil
}

func (c *OrderCache) PutOrder(_ context.Context, order ports.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[order.ID] = cacheEntry{order: order, expiresAt: time.Now().Add(c.TTL)}
	return nil
}
