package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"semapa/internal/authz"
	apperrors "semapa/pkg/errors"
	"semapa/pkg/service"
	"semapa/pkg/utils"
)

type AuthMiddleware struct {
	jwtService service.JWTService
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		logger:     logger,
	}
}

// Auth validates the bearer access token and stores the user id and level in the request context.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.logger.Warn("AuthMiddleware: formato inválido do cabeçalho Authorization")
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader)
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("AuthMiddleware: token rejeitado", zap.Error(err))
			return utils.ErrorResponse(c, err)
		}
		if claims.IsRefreshToken {
			m.logger.Warn("AuthMiddleware: tentativa de acesso com refresh token", zap.Uint64("userID", claims.UserID))
			return utils.ErrorResponse(c, apperrors.ErrTokenIsNotAccess)
		}

		ctx := utils.WithUser(c.Request().Context(), claims.UserID, claims.Nivel)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// Require rejects the request before the handler runs when the token's level
// cannot satisfy the operation's declared rule.
func (m *AuthMiddleware) Require(op authz.Operation) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var actor *authz.Actor
			ctx := c.Request().Context()
			if userID, err := utils.GetUserIDFromCtx(ctx); err == nil {
				nivel, _ := utils.GetUserNivelFromCtx(ctx)
				actor = &authz.Actor{ID: userID, Nivel: authz.Level(nivel)}
			}

			if err := authz.Precheck(actor, op); err != nil {
				m.logger.Warn("Acesso negado",
					zap.String("operation", string(op)),
					zap.String("uri", c.Request().RequestURI),
					zap.Error(err),
				)
				return utils.ErrorResponse(c, err)
			}
			return next(c)
		}
	}
}
