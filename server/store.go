package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"jarzd/game"
)

// Store 房间记录的键值存储；每次操作读写整个房间，不做跨键事务，也没有 CAS
type Store interface {
	// Load 不存在时返回 errNoRoom
	Load(ctx context.Context, code string) (*Room, error)
	Save(ctx context.Context, room *Room) error
}

func encodeRoom(r *Room) ([]byte, error) { return json.Marshal(r) }

func decodeRoom(b []byte) (*Room, error) {
	var r Room
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decode room: %w", err)
	}
	if r.Players == nil {
		r.Players = make(map[PlayerID]game.PlayerSnapshot)
	}
	return &r, nil
}

// MemoryStore 进程内 KV，保存序列化后的值，读写互不共享对象
type MemoryStore struct {
	mu     sync.RWMutex
	prefix string
	data   map[string][]byte
}

func NewMemoryStore(prefix string) *MemoryStore {
	return &MemoryStore{prefix: prefix, data: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, code string) (*Room, error) {
	m.mu.RLock()
	b, ok := m.data[m.prefix+code]
	m.mu.RUnlock()
	if !ok {
		return nil, errNoRoom
	}
	return decodeRoom(b)
}

func (m *MemoryStore) Save(_ context.Context, r *Room) error {
	b, err := encodeRoom(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[m.prefix+r.Code] = b
	m.mu.Unlock()
	return nil
}

// RedisStore 以 Redis 字符串保存房间 JSON，不设过期
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewRedisStore(rdb redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) Load(ctx context.Context, code string) (*Room, error) {
	b, err := s.rdb.Get(ctx, s.prefix+code).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errNoRoom
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", code, err)
	}
	return decodeRoom(b)
}

func (s *RedisStore) Save(ctx context.Context, r *Room) error {
	b, err := encodeRoom(r)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.prefix+r.Code, b, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.Code, err)
	}
	return nil
}
