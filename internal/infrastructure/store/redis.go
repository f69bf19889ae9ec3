package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amirhosseinghanipour/lockgate/internal/application/ports"
	"github.com/amirhosseinghanipour/lockgate/internal/domain"
	domerrors "github.com/amirhosseinghanipour/lockgate/internal/domain/errors"
)

const accountsKey = "lockgate:accounts"

// RedisStore persists accounts in one hash, field per identifier, JSON record
// values. Suitable when several instances must share lockout state. Calls are
// bounded by a timeout per the same rule as the Postgres store.
type RedisStore struct {
	client  *redis.Client
	timeout time.Duration
}

func NewRedisStore(ctx context.Context, url string, timeout time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client, timeout: timeout}, nil
}

func (s *RedisStore) Load(ctx context.Context) (map[string]*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	fields, err := s.client.HGetAll(ctx, accountsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	accounts := make(map[string]*domain.Account, len(fields))
	for identifier, raw := range fields {
		var r record
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			// One corrupt field is dropped; the rest of the store survives.
			continue
		}
		accounts[identifier] = decodeRecord(identifier, r)
	}
	return accounts, nil
}

// Save rewrites the hash inside a transactional pipeline so concurrent
// readers observe either the old mapping or the new one.
func (s *RedisStore) Save(ctx context.Context, accounts map[string]*domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	values := make(map[string]string, len(accounts))
	for identifier, a := range accounts {
		raw, err := json.Marshal(encodeRecord(a))
		if err != nil {
			return fmt.Errorf("%w: encode %s: %v", domerrors.ErrPersistence, identifier, err)
		}
		values[identifier] = string(raw)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, accountsKey)
	if len(values) > 0 {
		pipe.HSet(ctx, accountsKey, values)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: write accounts: %v", domerrors.ErrPersistence, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ ports.CredentialStore = (*RedisStore)(nil)
