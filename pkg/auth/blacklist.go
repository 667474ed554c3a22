package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/nhfg/crm-backend/pkg/cache"
)

const revokedKeyPrefix = "auth:revoked:"

// TokenBlacklist tracks logged-out session tokens in redis so they stop
// validating before their JWT expiry. Entries carry a TTL matching the
// token lifetime, so the set stays bounded.
type TokenBlacklist struct {
	cache *cache.Client
}

func NewTokenBlacklist(cache *cache.Client) *TokenBlacklist {
	return &TokenBlacklist{cache: cache}
}

// Add revokes a token for the given duration. Only a SHA256 digest of the
// token is stored.
func (b *TokenBlacklist) Add(ctx context.Context, token string, expiration time.Duration) error {
	return b.cache.Set(ctx, revokedKey(token), "1", expiration)
}

// IsBlacklisted reports whether the token has been revoked.
func (b *TokenBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	return b.cache.Exists(ctx, revokedKey(token))
}

func revokedKey(token string) string {
	digest := sha256.Sum256([]byte(token))
	return revokedKeyPrefix + hex.EncodeToString(digest[:])
}
