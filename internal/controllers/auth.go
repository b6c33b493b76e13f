package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"semapa/internal/dto"
	"semapa/internal/entities"
	"semapa/internal/services"
	apperrors "semapa/pkg/errors"
	"semapa/pkg/service"
	"semapa/pkg/utils"
)

const refreshCookieName = "refreshToken"

type AuthController struct {
	authService services.AuthServiceInterface
	jwtSvc      service.JWTService
	logger      *zap.Logger
}

func NewAuthController(authService services.AuthServiceInterface, jwtSvc service.JWTService, logger *zap.Logger) *AuthController {
	return &AuthController{authService: authService, jwtSvc: jwtSvc, logger: logger}
}

func (ctrl *AuthController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

func (ctrl *AuthController) Login(c echo.Context) error {
	var payload dto.LoginDTO
	if err := bindAndValidate(c, &payload, ctrl.logger); err != nil {
		return ctrl.errorResponse(c, err)
	}

	user, err := ctrl.authService.Login(c.Request().Context(), payload)
	if err != nil {
		ctrl.logger.Warn("Login: falha na autenticação", zap.String("email", payload.Email), zap.Error(err))
		return ctrl.errorResponse(c, err)
	}

	return ctrl.generateTokensAndRespond(c, user, "Login realizado com sucesso")
}

func (ctrl *AuthController) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	return utils.SuccessResponse(c, nil, "Sessão encerrada", http.StatusOK)
}

// RefreshToken issues a new pair from the refresh cookie. The level in the new
// access token is read from the stored user, not from the old token.
func (ctrl *AuthController) RefreshToken(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil {
		return ctrl.errorResponse(c, apperrors.ErrUnauthorized)
	}

	claims, err := ctrl.jwtSvc.ValidateToken(cookie.Value)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	if !claims.IsRefreshToken {
		return ctrl.errorResponse(c, apperrors.ErrTokenIsNotRefresh)
	}

	user, err := ctrl.authService.GetActiveUser(c.Request().Context(), claims.UserID)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return ctrl.generateTokensAndRespond(c, user, "Tokens renovados")
}

func (ctrl *AuthController) Me(c echo.Context) error {
	userID, err := utils.GetUserIDFromCtx(c.Request().Context())
	if err != nil {
		ctrl.logger.Error("Me: usuário ausente no contexto de rota protegida")
		return ctrl.errorResponse(c, apperrors.ErrUnauthorized)
	}
	user, err := ctrl.authService.GetActiveUser(c.Request().Context(), userID)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, user, "Perfil do usuário", http.StatusOK)
}

func (ctrl *AuthController) ChangePassword(c echo.Context) error {
	var payload dto.ChangePasswordDTO
	if err := bindAndValidate(c, &payload, ctrl.logger); err != nil {
		return ctrl.errorResponse(c, err)
	}
	if err := ctrl.authService.ChangePassword(c.Request().Context(), payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Senha alterada com sucesso", http.StatusOK)
}

func (ctrl *AuthController) generateTokensAndRespond(c echo.Context, user *entities.User, message string) error {
	accessToken, refreshToken, err := ctrl.jwtSvc.GenerateTokens(user.ID, user.Nivel)
	if err != nil {
		ctrl.logger.Error("Não foi possível gerar os tokens", zap.Uint64("userID", user.ID), zap.Error(err))
		return ctrl.errorResponse(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    refreshToken,
		Path:     "/",
		Expires:  time.Now().Add(ctrl.jwtSvc.GetRefreshTokenTTL()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})

	return utils.SuccessResponse(c, dto.LoginResponseDTO{AccessToken: accessToken, User: user}, message, http.StatusOK)
}
