package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryList_RevokeAndCheck(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryList()

	revoked, err := l.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, l.Revoke(ctx, "jti-1", time.Hour))

	revoked, err = l.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = l.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryList_Expiry(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryList()
	now := time.Now()
	l.now = func() time.Time { return now }

	require.NoError(t, l.Revoke(ctx, "jti-1", time.Minute))

	now = now.Add(2 * time.Minute)
	revoked, err := l.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, l.Revoke(ctx, "jti-2", time.Minute))
	assert.NotContains(t, l.revoked, "jti-1")
}

func TestMemoryList_IgnoresEmptyAndExpired(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryList()

	require.NoError(t, l.Revoke(ctx, "", time.Hour))
	require.NoError(t, l.Revoke(ctx, "jti-1", 0))
	require.NoError(t, l.Revoke(ctx, "jti-2", -time.Second))

	assert.Empty(t, l.revoked)
}
