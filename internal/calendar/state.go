package calendar

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

type RedisStateStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{client: client, prefix: "calendar:oauth_state:"}
}

func (s *RedisStateStore) Save(ctx context.Context, state string, userID uint, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+state, strconv.FormatUint(uint64(userID), 10), ttl).Err()
}

func (s *RedisStateStore) Consume(ctx context.Context, state string) (uint, error) {
	v, err := s.client.GetDel(ctx, s.prefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrStateNotFound
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// MemoryStateStore is used when no redis is configured. States are lost on restart.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]memoryState
	now    func() time.Time
}

type memoryState struct {
	userID    uint
	expiresAt time.Time
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: map[string]memoryState{}, now: time.Now}
}

func (s *MemoryStateStore) Save(ctx context.Context, state string, userID uint, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, v := range s.states {
		if now.After(v.expiresAt) {
			delete(s.states, k)
		}
	}
	s.states[state] = memoryState{userID: userID, expiresAt: now.Add(ttl)}
	return nil
}

func (s *MemoryStateStore) Consume(ctx context.Context, state string) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.states[state]
	delete(s.states, state)
	if !ok || s.now().After(v.expiresAt) {
		return 0, ErrStateNotFound
	}
	return v.userID, nil
}
