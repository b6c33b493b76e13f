package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"semapa/internal/dto"
	"semapa/internal/entities"
	"semapa/internal/repositories"
	"semapa/pkg/config"
	"semapa/pkg/constants"
	apperrors "semapa/pkg/errors"
	"semapa/pkg/utils"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*entities.User, error)
	// GetActiveUser is used by refresh and /me; inactive users are rejected.
	GetActiveUser(ctx context.Context, userID uint64) (*entities.User, error)
	ChangePassword(ctx context.Context, payload dto.ChangePasswordDTO) error
}

type AuthService struct {
	*BaseService
	userRepo  repositories.UserRepositoryInterface
	cacheRepo repositories.CacheRepositoryInterface
	cfg       config.AuthConfig
}

func NewAuthService(
	base *BaseService,
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	cfg config.AuthConfig,
) AuthServiceInterface {
	return &AuthService{
		BaseService: base,
		userRepo:    userRepo,
		cacheRepo:   cacheRepo,
		cfg:         cfg,
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*entities.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.checkLockout(ctx, user.ID); err != nil {
		return nil, err
	}
	if !utils.CheckPassword(payload.Password, user.Password) {
		s.handleFailedLoginAttempt(ctx, user.ID)
		s.logger.Warn("Login: senha incorreta", zap.Uint64("userID", user.ID))
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.Ativo {
		return nil, apperrors.ErrUserInactive
	}
	s.resetLoginAttempts(ctx, user.ID)

	now := s.now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Error("Login: não foi possível registrar o último acesso", zap.Uint64("userID", user.ID), zap.Error(err))
	} else {
		user.UltimoLogin = &now
	}
	return user, nil
}

func (s *AuthService) GetActiveUser(ctx context.Context, userID uint64) (*entities.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewUnauthorizedError("usuário não encontrado")
		}
		return nil, err
	}
	if !user.Ativo {
		return nil, apperrors.NewUnauthorizedError(apperrors.ErrUserInactive.Error())
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, payload dto.ChangePasswordDTO) error {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return apperrors.NewUnauthorizedError("")
	}
	user, err := s.GetActiveUser(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(payload.SenhaAtual, user.Password) {
		return apperrors.NewValidationError("senha_atual", "senha atual incorreta")
	}
	hash, err := utils.HashPassword(payload.NovaSenha)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		s.logger.Error("Erro ao atualizar a senha", zap.Uint64("userID", userID), zap.Error(err))
		return err
	}
	s.logger.Info("Senha alterada", zap.Uint64("userID", userID))
	return nil
}

func (s *AuthService) checkLockout(ctx context.Context, userID uint64) error {
	if _, err := s.cacheRepo.Get(ctx, fmt.Sprintf(constants.CacheKeyLockout, userID)); err == nil {
		return apperrors.ErrAccountLocked
	}
	return nil
}

func (s *AuthService) handleFailedLoginAttempt(ctx context.Context, userID uint64) {
	attemptsKey := fmt.Sprintf(constants.CacheKeyLoginAttempts, userID)
	attempts, err := s.cacheRepo.Incr(ctx, attemptsKey)
	if err != nil {
		s.logger.Error("Não foi possível contar a tentativa de login", zap.Error(err))
		return
	}
	if attempts == 1 {
		_ = s.cacheRepo.Expire(ctx, attemptsKey, s.cfg.LockoutDuration)
	}
	if attempts >= int64(s.cfg.MaxLoginAttempts) {
		_ = s.cacheRepo.Set(ctx, fmt.Sprintf(constants.CacheKeyLockout, userID), "locked", s.cfg.LockoutDuration)
		_ = s.cacheRepo.Del(ctx, attemptsKey)
		s.logger.Warn("Conta bloqueada por excesso de tentativas", zap.Uint64("userID", userID))
	}
}

func (s *AuthService) resetLoginAttempts(ctx context.Context, userID uint64) {
	_ = s.cacheRepo.Del(ctx,
		fmt.Sprintf(constants.CacheKeyLoginAttempts, userID),
		fmt.Sprintf(constants.CacheKeyLockout, userID),
	)
}
