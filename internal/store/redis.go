package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/go-redis/redis/v8"
)

const (
	keyPrefix     = "playboard:"
	changeChannel = keyPrefix + "changes"
)

// RedisStore keeps each kind in a hash and announces writes on a pub/sub
// channel so every instance sharing the server sees them.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func hashKey(kind Kind) string {
	return keyPrefix + string(kind)
}

func (s *RedisStore) Put(ctx context.Context, kind Kind, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("store: put %s: empty key", kind)
	}
	if err := s.rdb.HSet(ctx, hashKey(kind), key, data).Err(); err != nil {
		return fmt.Errorf("store: put %s/%s: %w", kind, key, err)
	}
	s.publish(ctx, Change{Kind: kind, Key: key})
	return nil
}

func (s *RedisStore) Get(ctx context.Context, kind Kind, key string) ([]byte, error) {
	data, err := s.rdb.HGet(ctx, hashKey(kind), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s/%s: %w", kind, key, err)
	}
	return data, nil
}

func (s *RedisStore) Keys(ctx context.Context, kind Kind) ([]string, error) {
	keys, err := s.rdb.HKeys(ctx, hashKey(kind)).Result()
	if err != nil {
		return nil, fmt.Errorf("store: list %s: %w", kind, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *RedisStore) Delete(ctx context.Context, kind Kind, key string) error {
	n, err := s.rdb.HDel(ctx, hashKey(kind), key).Result()
	if err != nil {
		return fmt.Errorf("store: delete %s/%s: %w", kind, key, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	s.publish(ctx, Change{Kind: kind, Key: key, Deleted: true})
	return nil
}

func (s *RedisStore) publish(ctx context.Context, c Change) {
	payload, err := json.Marshal(c)
	if err != nil {
		log.Printf("[STORE] Error marshaling change: %v", err)
		return
	}
	if err := s.rdb.Publish(ctx, changeChannel, payload).Err(); err != nil {
		log.Printf("[STORE] Error publishing change for %s/%s: %v", c.Kind, c.Key, err)
	}
}

// Watch subscribes to the change channel. The subscription is confirmed before
// Watch returns, so writes made afterwards are never missed.
func (s *RedisStore) Watch(ctx context.Context) (<-chan Change, error) {
	sub := s.rdb.Subscribe(ctx, changeChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("store: subscribe: %w", err)
	}

	out := make(chan Change, 16)
	go func() {
		defer close(out)
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var c Change
				if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
					log.Printf("[STORE] Ignoring malformed change: %v", err)
					continue
				}
				select {
				case out <- c:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
