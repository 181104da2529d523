package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// DeviceStore persists minted device tokens so a returning client keeps
// its voting identity.
type DeviceStore interface {
	Exists(ctx context.Context, token string) (bool, error)
	Save(ctx context.Context, token string) error
}

type IdentityService struct {
	store DeviceStore
}

func NewIdentityService(store DeviceStore) *IdentityService {
	return &IdentityService{store: store}
}

// GetOrCreate returns the caller's token unchanged when it is already
// known, otherwise mints and stores a fresh one. Collisions are not
// checked beyond the 128 bits of randomness.
func (s *IdentityService) GetOrCreate(ctx context.Context, existing string) (string, error) {
	if existing != "" {
		known, err := s.store.Exists(ctx, existing)
		if err != nil {
			return "", err
		}
		if known {
			return existing, nil
		}
	}

	token, err := generateDeviceToken()
	if err != nil {
		return "", err
	}
	if err := s.store.Save(ctx, token); err != nil {
		return "", err
	}
	return token, nil
}

func generateDeviceToken() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate device token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// RedisDeviceStore keeps tokens under device:<token> keys with no expiry,
// matching the browser-local storage the widget used to rely on.
type RedisDeviceStore struct {
	client *redis.Client
}

func NewRedisDeviceStore(client *redis.Client) *RedisDeviceStore {
	return &RedisDeviceStore{client: client}
}

func (s *RedisDeviceStore) Exists(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, "device:"+token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisDeviceStore) Save(ctx context.Context, token string) error {
	return s.client.Set(ctx, "device:"+token, "1", 0).Err()
}

// MemoryDeviceStore backs tests and single-process runs.
type MemoryDeviceStore struct {
	mu     sync.Mutex
	tokens map[string]bool
}

func NewMemoryDeviceStore() *MemoryDeviceStore {
	return &MemoryDeviceStore{tokens: make(map[string]bool)}
}

func (s *MemoryDeviceStore) Exists(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[token], nil
}

func (s *MemoryDeviceStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = true
	return nil
}
