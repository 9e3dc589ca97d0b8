package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) AccessSessionKey(accessID string) string {
	return fmt.Sprintf("sess:%s", accessID)
}

func newTestManager() (*Manager, *mockStore) {
	store := newMockStore()
	return &Manager{store: store, keyer: store, ttl: time.Hour}, store
}

func TestManagerGenerateAndRotate(t *testing.T) {
	manager, store := newTestManager()
	ctx := context.Background()
	userID := uuid.New()

	token, err := manager.Generate(ctx, "access-123", userID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if ok, _ := manager.HasSession(ctx, "access-123"); !ok {
		t.Fatal("expected session after generate")
	}

	if _, _, err := manager.Rotate(ctx, "access-123", userID, "wrong"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token error, got %v", err)
	}
	if _, _, err := manager.Rotate(ctx, "access-123", uuid.New(), token); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected user mismatch to be rejected, got %v", err)
	}

	newAccessID, newToken, err := manager.Rotate(ctx, "access-123", userID, token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if _, exists := store.data[store.AccessSessionKey("access-123")]; exists {
		t.Fatal("old access key left behind")
	}
	if newToken == token {
		t.Fatal("expected a fresh refresh token")
	}
	if ok, _ := manager.HasSession(ctx, newAccessID); !ok {
		t.Fatal("expected new session")
	}

	if _, _, err := manager.Rotate(ctx, "access-123", userID, token); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected replayed token to fail, got %v", err)
	}
}

func TestManagerRevoke(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()

	if _, err := manager.Generate(ctx, "access-9", uuid.New()); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := manager.Revoke(ctx, "access-9"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err := manager.HasSession(ctx, "access-9")
	if err != nil || ok {
		t.Fatalf("expected no session after revoke, ok=%v err=%v", ok, err)
	}
}

func TestManagerGenerateValidatesInput(t *testing.T) {
	manager, _ := newTestManager()
	if _, err := manager.Generate(context.Background(), " ", uuid.New()); err == nil {
		t.Fatal("expected access id error")
	}
	if _, err := manager.Generate(context.Background(), "a", uuid.Nil); err == nil {
		t.Fatal("expected user id error")
	}
}
