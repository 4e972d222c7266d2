package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"mercadoluz.com/storefront/internal/cart"
)

const cartKeyPrefix = "cart:"

// Redis persists serialized carts in Redis, one key per session. Values are
// written wholesale with no expiry; a cart outlives the process the way the
// original browser storage outlived the page.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Load fetches the raw serialized cart for the key.
func (r *Redis) Load(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.client.Get(ctx, cartKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cart.ErrCartNotStored
		}
		return nil, err
	}
	return raw, nil
}

// Save overwrites the stored value wholesale.
func (r *Redis) Save(ctx context.Context, key string, raw []byte) error {
	return r.client.Set(ctx, cartKeyPrefix+key, raw, 0).Err()
}
