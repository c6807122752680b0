package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.True(t, CheckPassword(hash, "password123"))
	assert.False(t, CheckPassword(hash, "password124"))
	assert.False(t, CheckPassword("", "password123"))
}

func TestNewResetToken(t *testing.T) {
	raw, hash, err := NewResetToken()
	require.NoError(t, err)

	// 32 random bytes, hex-encoded.
	assert.Len(t, raw, 64)
	assert.Equal(t, HashResetToken(raw), hash)
	assert.NotEqual(t, raw, hash)

	raw2, _, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, raw2)
}
