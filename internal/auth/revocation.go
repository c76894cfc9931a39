package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "auth:revoked:"

// TokenRevoker tracks signed-out token IDs until their natural expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type redisTokenRevoker struct {
	client *redis.Client
}

// NewRedisTokenRevoker returns a Redis-backed revocation list. Entries carry
// a TTL matching the token expiry so the list cleans itself up.
func NewRedisTokenRevoker(client *redis.Client) TokenRevoker {
	return &redisTokenRevoker{client: client}
}

func (r *redisTokenRevoker) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

func (r *redisTokenRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
