package utils

import (
	"context"

	"semapa/pkg/contextkeys"
	apperrors "semapa/pkg/errors"
)

func GetUserIDFromCtx(ctx context.Context) (uint64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok || userID == 0 {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return userID, nil
}

func GetUserNivelFromCtx(ctx context.Context) (int, error) {
	nivel, ok := ctx.Value(contextkeys.UserNivelKey).(int)
	if !ok {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return nivel, nil
}

// WithUser returns ctx carrying the authenticated user's id and level.
func WithUser(ctx context.Context, userID uint64, nivel int) context.Context {
	ctx = context.WithValue(ctx, contextkeys.UserIDKey, userID)
	return context.WithValue(ctx, contextkeys.UserNivelKey, nivel)
}
