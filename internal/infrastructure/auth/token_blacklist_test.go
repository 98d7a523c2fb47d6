package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenBlacklist_JTI(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryTokenBlacklist(time.Minute)

	require.NoError(t, b.AddToBlacklist(ctx, "jti-1", time.Hour))

	revoked, err := b.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = b.IsBlacklisted(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryTokenBlacklist_Expiry(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryTokenBlacklist(time.Minute)

	require.NoError(t, b.AddToBlacklist(ctx, "short", time.Millisecond))
	time.Sleep(10 * time.Millisecond)

	revoked, err := b.IsBlacklisted(ctx, "short")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryTokenBlacklist_InvalidateUser(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryTokenBlacklist(time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	invalidated, err := b.IsUserInvalidated(ctx, "user-1", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, invalidated, "nothing revoked yet")

	require.NoError(t, b.InvalidateUser(ctx, "user-1", time.Hour))

	tests := []struct {
		name     string
		issuedAt time.Time
		want     bool
	}{
		{"issued before", now.Add(-time.Minute), true},
		{"issued in the same second", now.Add(500 * time.Millisecond), true},
		{"issued after", now.Add(2 * time.Second), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.IsUserInvalidated(ctx, "user-1", tt.issuedAt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	other, err := b.IsUserInvalidated(ctx, "user-2", now.Add(-time.Minute))
	require.NoError(t, err)
	assert.False(t, other)
}
