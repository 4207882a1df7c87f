package store

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// Options selects and configures the backend.
type Options struct {
	Dir string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// PingTimeout bounds the Redis reachability check. Zero means two seconds.
	PingTimeout time.Duration
}

// Open returns a Redis-backed store when RedisAddr is set and the server
// answers PING, and a file store under Dir otherwise.
func Open(ctx context.Context, opts Options) (Store, error) {
	if opts.RedisAddr != "" {
		timeout := opts.PingTimeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		rdb := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			log.Printf("[STORE] Using Redis at %s", opts.RedisAddr)
			return NewRedisStore(rdb), nil
		}
		_ = rdb.Close()
		log.Printf("[STORE] Redis at %s unreachable (%v), falling back to %s", opts.RedisAddr, err, opts.Dir)
	}

	fs, err := NewFileStore(opts.Dir)
	if err != nil {
		return nil, err
	}
	log.Printf("[STORE] Using files under %s", opts.Dir)
	return fs, nil
}
