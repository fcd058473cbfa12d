package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore guarda el estado de sesión del lado del servidor.
type SessionStore interface {
	Load(ctx context.Context, id string) (map[string]string, error)
	Save(ctx context.Context, id string, values map[string]string, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type memorySessionEntry struct {
	values    map[string]string
	expiresAt time.Time
}

type memorySessionStore struct {
	mu    sync.Mutex
	items map[string]memorySessionEntry
}

func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		items: make(map[string]memorySessionEntry),
	}
}

func (s *memorySessionStore) Load(_ context.Context, id string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[id]
	if !ok {
		return map[string]string{}, nil
	}
	if time.Now().UTC().After(entry.expiresAt) {
		delete(s.items, id)
		return map[string]string{}, nil
	}
	return copyValues(entry.values), nil
}

func (s *memorySessionStore) Save(_ context.Context, id string, values map[string]string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(id) == "" {
		return nil
	}
	if len(values) == 0 {
		delete(s.items, id)
		return nil
	}
	s.items[id] = memorySessionEntry{
		values:    copyValues(values),
		expiresAt: time.Now().UTC().Add(ttl),
	}
	return nil
}

func (s *memorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

// Reemplaza el hash completo y renueva su TTL en una sola operación.
const redisSessionSaveScript = `
redis.call("DEL", KEYS[1])
if #ARGV > 1 then
  redis.call("HSET", KEYS[1], unpack(ARGV, 2))
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return 1
`

type redisSessionClient interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisSessionStore struct {
	client redisSessionClient
	prefix string
}

func NewRedisSessionStore(client *redis.Client) SessionStore {
	if client == nil {
		return nil
	}
	return &redisSessionStore{
		client: client,
		prefix: "rango:session:",
	}
}

func (s *redisSessionStore) Load(ctx context.Context, id string) (map[string]string, error) {
	if strings.TrimSpace(id) == "" {
		return map[string]string{}, nil
	}
	values, err := s.client.HGetAll(ctx, s.prefix+id).Result()
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = map[string]string{}
	}
	return values, nil
}

func (s *redisSessionStore) Save(ctx context.Context, id string, values map[string]string, ttl time.Duration) error {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	seconds := int(ttl.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	args := make([]interface{}, 0, 1+2*len(values))
	args = append(args, seconds)
	for k, v := range values {
		args = append(args, k, v)
	}
	return s.client.Eval(ctx, redisSessionSaveScript, []string{s.prefix + id}, args...).Err()
}

func (s *redisSessionStore) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+id).Err()
}

func copyValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
