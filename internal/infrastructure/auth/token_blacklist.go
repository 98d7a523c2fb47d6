package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// TokenBlacklist invalidates tokens before they expire
type TokenBlacklist interface {
	// AddToBlacklist revokes one token by JTI; ttl is the token's remaining lifetime.
	AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)

	// InvalidateUser revokes every token of a user issued up to now.
	// ttl should cover the longest token lifetime.
	InvalidateUser(ctx context.Context, userID string, ttl time.Duration) error
	IsUserInvalidated(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}

const blacklistPrefix = "token:blacklist:"

func jtiKey(jti string) string { return blacklistPrefix + "jti:" + jti }
func userKey(userID string) string { return blacklistPrefix + "user:" + userID }

func revokedBefore(issuedAt time.Time, invalidatedAt int64) bool {
	// iat has second precision, so a token from the same second counts as revoked
	return issuedAt.Unix() <= invalidatedAt
}

// RedisTokenBlacklist shares revocations across instances through Redis
type RedisTokenBlacklist struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRedisTokenBlacklist wraps an existing Redis client
func NewRedisTokenBlacklist(client redis.UniversalClient) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client, now: time.Now}
}

// AddToBlacklist implements TokenBlacklist
func (b *RedisTokenBlacklist) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if err := b.client.Set(ctx, jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}
	return nil
}

// IsBlacklisted implements TokenBlacklist
func (b *RedisTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return n > 0, nil
}

// InvalidateUser implements TokenBlacklist
func (b *RedisTokenBlacklist) InvalidateUser(ctx context.Context, userID string, ttl time.Duration) error {
	if err := b.client.Set(ctx, userKey(userID), b.now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to invalidate user tokens: %w", err)
	}
	return nil
}

// IsUserInvalidated implements TokenBlacklist
func (b *RedisTokenBlacklist) IsUserInvalidated(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	raw, err := b.client.Get(ctx, userKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user token invalidation: %w", err)
	}
	invalidatedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse invalidation timestamp: %w", err)
	}
	return revokedBefore(issuedAt, invalidatedAt), nil
}

// MemoryTokenBlacklist keeps revocations in process memory; single-instance deployments only
type MemoryTokenBlacklist struct {
	store *gocache.Cache
	now   func() time.Time
}

// NewMemoryTokenBlacklist creates an in-process blacklist that purges expired entries every cleanup interval
func NewMemoryTokenBlacklist(cleanup time.Duration) *MemoryTokenBlacklist {
	return &MemoryTokenBlacklist{
		store: gocache.New(gocache.NoExpiration, cleanup),
		now:   time.Now,
	}
}

// AddToBlacklist implements TokenBlacklist
func (b *MemoryTokenBlacklist) AddToBlacklist(_ context.Context, jti string, ttl time.Duration) error {
	b.store.Set(jtiKey(jti), struct{}{}, ttl)
	return nil
}

// IsBlacklisted implements TokenBlacklist
func (b *MemoryTokenBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, found := b.store.Get(jtiKey(jti))
	return found, nil
}

// InvalidateUser implements TokenBlacklist
func (b *MemoryTokenBlacklist) InvalidateUser(_ context.Context, userID string, ttl time.Duration) error {
	b.store.Set(userKey(userID), b.now().Unix(), ttl)
	return nil
}

// IsUserInvalidated implements TokenBlacklist
func (b *MemoryTokenBlacklist) IsUserInvalidated(_ context.Context, userID string, issuedAt time.Time) (bool, error) {
	v, found := b.store.Get(userKey(userID))
	if !found {
		return false, nil
	}
	return revokedBefore(issuedAt, v.(int64)), nil
}

// Ensure both blacklists implement TokenBlacklist
var (
	_ TokenBlacklist = (*RedisTokenBlacklist)(nil)
	_ TokenBlacklist = (*MemoryTokenBlacklist)(nil)
)
