package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "fare:session:"

// RedisStore keeps session state in Redis: one hash per session for tokens and
// OAuth state, plus a list for flash messages. The hash expires ttl after the
// last token read or any write; the flash list ttl after its last write.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) (*RedisStore, error) {
	if rdb == nil {
		return nil, errors.New("redis session: client is nil")
	}
	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

// NewRedisClient parses a redis:// URL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis session: parse url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis session: ping: %w", err)
	}
	return rdb, nil
}

func hashKey(sessionID string) string  { return keyPrefix + sessionID }
func flashKey(sessionID string) string { return keyPrefix + sessionID + ":flash" }

func (s *RedisStore) setField(ctx context.Context, sessionID, field, value string) error {
	if sessionID == "" {
		return errors.New("redis session: session id is empty")
	}

	key := hashKey(sessionID)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, field, value)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis session: set %s: %w", field, err)
	}
	return nil
}

func (s *RedisStore) Token(ctx context.Context, sessionID, provider string) (string, bool, error) {
	key := hashKey(sessionID)

	var get *redis.StringCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.HGet(ctx, key, tokenKey(provider))
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", false, fmt.Errorf("redis session: get token: %w", err)
	}

	v, err := get.Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis session: get token: %w", err)
	}
	return v, true, nil
}

func (s *RedisStore) SetToken(ctx context.Context, sessionID, provider, token string) error {
	return s.setField(ctx, sessionID, tokenKey(provider), token)
}

func (s *RedisStore) DeleteToken(ctx context.Context, sessionID, provider string) error {
	if err := s.rdb.HDel(ctx, hashKey(sessionID), tokenKey(provider)).Err(); err != nil {
		return fmt.Errorf("redis session: delete token: %w", err)
	}
	return nil
}

func (s *RedisStore) SetState(ctx context.Context, sessionID, state string) error {
	return s.setField(ctx, sessionID, stateKey, state)
}

func (s *RedisStore) TakeState(ctx context.Context, sessionID string) (string, bool, error) {
	key := hashKey(sessionID)

	var get *redis.StringCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.HGet(ctx, key, stateKey)
		pipe.HDel(ctx, key, stateKey)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", false, fmt.Errorf("redis session: take state: %w", err)
	}

	v, err := get.Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis session: take state: %w", err)
	}
	return v, true, nil
}

func (s *RedisStore) AddFlash(ctx context.Context, sessionID, message string) error {
	if sessionID == "" {
		return errors.New("redis session: session id is empty")
	}

	key := flashKey(sessionID)
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, key, message)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis session: add flash: %w", err)
	}
	return nil
}

func (s *RedisStore) Flashes(ctx context.Context, sessionID string) ([]string, error) {
	key := flashKey(sessionID)

	var list *redis.StringSliceCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		list = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis session: flashes: %w", err)
	}

	out, err := list.Result()
	if err != nil {
		return nil, fmt.Errorf("redis session: flashes: %w", err)
	}
	return out, nil
}
