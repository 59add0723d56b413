package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	ti := NewTokenIssuer("secret", time.Hour)

	token, expiresAt, err := ti.GenerateToken("op-1", "Ana", "ana@ose.test")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := ti.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "op-1", claims.Subject)
	assert.Equal(t, "Ana", claims.Name)
	assert.Equal(t, "ana@ose.test", claims.Email)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	ti := NewTokenIssuer("secret", time.Hour)
	token, _, err := ti.GenerateToken("op-1", "Ana", "ana@ose.test")
	require.NoError(t, err)

	_, err = NewTokenIssuer("other", time.Hour).ValidateToken(token)
	assert.Error(t, err, "wrong secret")

	_, err = ti.ValidateToken(token + "x")
	assert.Error(t, err, "tampered signature")

	expired := &TokenIssuer{secret: []byte("secret"), ttl: -time.Minute}
	old, _, err := expired.GenerateToken("op-1", "Ana", "ana@ose.test")
	require.NoError(t, err)
	_, err = ti.ValidateToken(old)
	assert.Error(t, err, "expired")
}

func TestHashToken(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Len(t, HashToken("abc"), 64)
}

func TestHealthStatus_Healthy(t *testing.T) {
	assert.True(t, HealthStatus{Mongo: true, Redis: []bool{true, true}}.Healthy())
	assert.False(t, HealthStatus{Mongo: true, Redis: []bool{true, false}}.Healthy())
	assert.False(t, HealthStatus{Mongo: false}.Healthy())
}
