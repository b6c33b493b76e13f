package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "semapa/pkg/errors"
)

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService("segredo-de-teste", time.Minute, time.Hour, zap.NewNop())

	access, refresh, err := svc.GenerateTokens(42, 3)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, 3, claims.Nivel)
	assert.False(t, claims.IsRefreshToken)

	claims, err = svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.True(t, claims.IsRefreshToken)
}

func TestJWTService_RejectsForeignAndExpiredTokens(t *testing.T) {
	svc := NewJWTService("segredo-a", time.Minute, time.Hour, zap.NewNop())
	other := NewJWTService("segredo-b", time.Minute, time.Hour, zap.NewNop())

	token, _, err := other.GenerateTokens(1, 1)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	expired := NewJWTService("segredo-a", -time.Minute, time.Hour, zap.NewNop())
	token, _, err = expired.GenerateTokens(1, 1)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)

	_, err = svc.ValidateToken("lixo")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
