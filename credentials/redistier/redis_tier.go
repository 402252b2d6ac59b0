// Package redistier stores credentials in a Redis hash, for clients that share
// a remembered session across hosts.
package redistier

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v7"
	"github.com/jrsteele09/viteviteapp/credentials"
	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
)

var _ credentials.Tier = (*RedisTier)(nil)

const keyPrefix = "vitevite:credentials:"

type RedisTier struct {
	client *redis.Client
	key    string
}

// New wraps an existing client; the profile selects the hash key
func New(client *redis.Client, profile string) *RedisTier {
	return &RedisTier{client: client, key: keyPrefix + profile}
}

// Dial connects and pings the server before returning the tier
func Dial(addr, password string, db int, profile string) (*RedisTier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping().Err(); err != nil {
		_ = client.Close()
		return nil, unavailable(err)
	}
	return New(client, profile), nil
}

func (r *RedisTier) Name() string {
	return "redis"
}

func (r *RedisTier) Durable() bool {
	return true
}

func (r *RedisTier) Close() error {
	return r.client.Close()
}

func (r *RedisTier) Load(ctx context.Context) (map[string]string, error) {
	values, err := r.client.WithContext(ctx).HGetAll(r.key).Result()
	if err != nil {
		return nil, unavailable(err)
	}
	return values, nil
}

// Replace deletes and rewrites the hash in one MULTI/EXEC so no merge with older fields happens
func (r *RedisTier) Replace(ctx context.Context, values map[string]string) error {
	fields := make(map[string]interface{}, len(values))
	for k, v := range values {
		fields[k] = v
	}
	pipe := r.client.WithContext(ctx).TxPipeline()
	pipe.Del(r.key)
	if len(fields) > 0 {
		pipe.HSet(r.key, fields)
	}
	if _, err := pipe.Exec(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (r *RedisTier) Clear(ctx context.Context) error {
	if err := r.client.WithContext(ctx).Del(r.key).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func unavailable(err error) error {
	return fmt.Errorf("redis tier: %w: %w", apperrors.ErrStorageUnavailable, err)
}
