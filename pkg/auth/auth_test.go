package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhfg/crm-backend/pkg/cache"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong-pass"))
}

func TestGenerateAndValidateJWT(t *testing.T) {
	token, err := GenerateJWT("user-1", "ann@nhfg.io", "Advisor", "test-secret", 24)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ann@nhfg.io", claims.Email)
	assert.Equal(t, "Advisor", claims.Role)
}

func TestValidateJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT("user-1", "ann@nhfg.io", "Advisor", "test-secret", 24)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateJWTGarbage(t *testing.T) {
	_, err := ValidateJWT("not-a-token", "test-secret")
	assert.Error(t, err)
}

func TestTokenBlacklist(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient, err := cache.NewClient("redis://" + mr.Addr())
	require.NoError(t, err)
	defer redisClient.Close()

	blacklist := NewTokenBlacklist(redisClient)
	ctx := context.Background()

	token, err := GenerateJWT("user-1", "ann@nhfg.io", "Advisor", "test-secret", 24)
	require.NoError(t, err)

	// Valid before revocation.
	_, err = ValidateJWTWithBlacklist(ctx, token, "test-secret", blacklist)
	require.NoError(t, err)

	require.NoError(t, blacklist.Add(ctx, token, time.Hour))

	blacklisted, err := blacklist.IsBlacklisted(ctx, token)
	require.NoError(t, err)
	assert.True(t, blacklisted)

	_, err = ValidateJWTWithBlacklist(ctx, token, "test-secret", blacklist)
	assert.Error(t, err)
}
