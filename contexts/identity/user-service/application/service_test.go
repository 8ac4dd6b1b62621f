package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	domainerrors "github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service/domain/errors"
	"github.com/sajithdilhan/ECommerceBackend/contexts/identity/user-service/ports"
	"github.com/sajithdilhan/ECommerceBackend/internal/shared/events"
)

type fakeRepo struct {
	users       map[string]ports.User
	createErr   error
	createCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[string]ports.User)}
}

func (r *fakeRepo) CreateUser(ctx context.Context, user ports.User) (ports.User, error) {
	r.createCalls++
	if r.createErr != nil {
		return ports.User{}, r.createErr
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeRepo) GetUserByID(ctx context.Context, id string) (ports.User, error) {
	user, ok := r.users[id]
	if !ok {
		return ports.User{}, domainerrors.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeRepo) GetUserByEmail(ctx context.Context, email string) (ports.User, bool, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, true, nil
		}
	}
	return ports.User{}, false, nil
}

type fakePublisher struct {
	published []events.UserCreatedEvent
	keys      []string
	err       error
}

func (p *fakePublisher) Publish(ctx context.Context, key string, payload any) error {
	if p.err != nil {
		return p.err
	}
	if event, ok := payload.(events.UserCreatedEvent); ok {
		p.published = append(p.published, event)
	}
	p.keys = append(p.keys, key)
	return nil
}

type fakeCache struct {
	entries  map[string]ports.User
	putErr   error
	putCalls int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]ports.User)}
}

func (c *fakeCache) GetOrLoadUser(ctx context.Context, id string, loader func(context.Context) (ports.User, error)) (ports.User, error) {
	if user, ok := c.entries[id]; ok {
		return user, nil
	}
	user, err := loader(ctx)
	if err != nil {
		return ports.User{}, err
	}
	c.entries[id] = user
	return user, nil
}

func (c *fakeCache) PutUser(ctx context.Context, user ports.User) error {
	c.putCalls++
	if c.putErr != nil {
		return c.putErr
	}
	c.entries[user.ID] = user
	return nil
}

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

type stubIDGen struct{ id string }

func (g stubIDGen) NewID(_ context.Context) (string, error) { return g.id, nil }

func newTestService(repo *fakeRepo, publisher *fakePublisher, cache *fakeCache) Service {
	return Service{
		Repo:      repo,
		Publisher: publisher,
		Cache:     cache,
		Clock:     fixedClock{at: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)},
		IDGen:     stubIDGen{id: "user-1"},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestCreateUserPersistsPublishesAndWarmsCache(t *testing.T) {
	repo := newFakeRepo()
	publisher := &fakePublisher{}
	cache := newFakeCache()
	service := newTestService(repo, publisher, cache)

	created, err := service.CreateUser(context.Background(), ports.CreateUserInput{
		Name:  "  Ada Lovelace  ",
		Email: "ada@example.com",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if created.ID != "user-1" || created.Name != "Ada Lovelace" {
		t.Fatalf("unexpected user %+v", created)
	}
	if _, ok := repo.users["user-1"]; !ok {
		t.Fatal("user was not persisted")
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected one published event, got %d", len(publisher.published))
	}
	event := publisher.published[0]
	if event.UserID != "user-1" || event.Email != "ada@example.com" {
		t.Fatalf("unexpected event %+v", event)
	}
	if publisher.keys[0] != "user-1" {
		t.Fatalf("expected event keyed by user id, got %q", publisher.keys[0])
	}
	if _, ok := cache.entries["user-1"]; !ok {
		t.Fatal("cache was not warmed after create")
	}
}

func TestCreateUserRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name  string
		input ports.CreateUserInput
	}{
		{"blank name", ports.CreateUserInput{Name: "   ", Email: "ada@example.com"}},
		{"blank email", ports.CreateUserInput{Name: "Ada", Email: ""}},
		{"malformed email", ports.CreateUserInput{Name: "Ada", Email: "not-an-email"}},
		{"email with display name", ports.CreateUserInput{Name: "Ada", Email: "Ada <ada@example.com>"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeRepo()
			service := newTestService(repo, &fakePublisher{}, newFakeCache())
			if _, err := service.CreateUser(context.Background(), tc.input); !errors.Is(err, domainerrors.ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
			if repo.createCalls != 0 {
				t.Fatal("invalid input must not reach the repository")
			}
		})
	}
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	repo := newFakeRepo()
	repo.users["existing"] = ports.User{ID: "existing", Email: "ada@example.com"}
	publisher := &fakePublisher{}
	service := newTestService(repo, publisher, newFakeCache())

	_, err := service.CreateUser(context.Background(), ports.CreateUserInput{Name: "Ada", Email: "ada@example.com"})
	if !errors.Is(err, domainerrors.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if len(publisher.published) != 0 {
		t.Fatal("no event may be published for a rejected create")
	}
}

func TestCreateUserFailsWhenPublishFails(t *testing.T) {
	repo := newFakeRepo()
	publisher := &fakePublisher{err: errors.New("broker unavailable")}
	cache := newFakeCache()
	service := newTestService(repo, publisher, cache)

	_, err := service.CreateUser(context.Background(), ports.CreateUserInput{Name: "Ada", Email: "ada@example.com"})
	if err == nil {
		t.Fatal("expected the operation to fail when the publish fails")
	}
	// The row stays committed; only the operation outcome reports failure.
	if _, ok := repo.users["user-1"]; !ok {
		t.Fatal("persisted row must survive a failed publish")
	}
	if cache.putCalls != 0 {
		t.Fatal("cache must not be warmed after a failed publish")
	}
}

func TestCreateUserSucceedsWhenCacheWarmFails(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	cache.putErr = errors.New("connection refused")
	service := newTestService(repo, &fakePublisher{}, cache)

	if _, err := service.CreateUser(context.Background(), ports.CreateUserInput{Name: "Ada", Email: "ada@example.com"}); err != nil {
		t.Fatalf("cache warm failure must not fail the create: %v", err)
	}
}

func TestGetUserByIDReadsThroughCache(t *testing.T) {
	repo := newFakeRepo()
	repo.users["user-1"] = ports.User{ID: "user-1", Name: "Ada", Email: "ada@example.com"}
	cache := newFakeCache()
	service := newTestService(repo, &fakePublisher{}, cache)

	got, err := service.GetUserByID(context.Background(), "user-1")
	if err != nil || got.ID != "user-1" {
		t.Fatalf("unexpected result %+v err=%v", got, err)
	}

	// A second read is served from the cache even if the row disappears.
	delete(repo.users, "user-1")
	got, err = service.GetUserByID(context.Background(), "user-1")
	if err != nil || got.ID != "user-1" {
		t.Fatalf("expected cached read, got %+v err=%v", got, err)
	}
}

func TestGetUserByIDNotFound(t *testing.T) {
	service := newTestService(newFakeRepo(), &fakePublisher{}, newFakeCache())
	if _, err := service.GetUserByID(context.Background(), "missing"); !errors.Is(err, domainerrors.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := service.GetUserByID(context.Background(), "  "); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for blank id, got %v", err)
	}
}
