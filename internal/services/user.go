package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"semapa/internal/authz"
	"semapa/internal/dto"
	"semapa/internal/entities"
	"semapa/internal/repositories"
	apperrors "semapa/pkg/errors"
	"semapa/pkg/types"
	"semapa/pkg/utils"
)

type UserServiceInterface interface {
	GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error)
	FindUser(ctx context.Context, id uint64) (*entities.User, error)
	CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*entities.User, error)
	UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) (*entities.User, error)
	SetActive(ctx context.Context, id uint64, ativo bool) (*entities.User, error)
}

type UserService struct {
	*BaseService
	userRepo repositories.UserRepositoryInterface
}

func NewUserService(base *BaseService, userRepo repositories.UserRepositoryInterface) UserServiceInterface {
	return &UserService{BaseService: base, userRepo: userRepo}
}

func (s *UserService) GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error) {
	if _, err := s.authorize(ctx, authz.UserView, nil); err != nil {
		return nil, 0, err
	}
	return s.userRepo.List(ctx, filter)
}

func (s *UserService) FindUser(ctx context.Context, id uint64) (*entities.User, error) {
	if _, err := s.authorize(ctx, authz.UserView, nil); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(ctx, id)
}

// checkGrant stops an admin from handing out a level above their own.
func checkGrant(actor *authz.Actor, nivel int) error {
	level := authz.Level(nivel)
	if !level.Valid() {
		return apperrors.NewValidationError("nivel", "deve estar entre 1 e 4")
	}
	if level > actor.Nivel {
		return &apperrors.ForbiddenError{Operation: string(authz.UserCreate), Required: nivel, Actual: int(actor.Nivel)}
	}
	return nil
}

func (s *UserService) CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*entities.User, error) {
	actor, err := s.authorize(ctx, authz.UserCreate, nil)
	if err != nil {
		return nil, err
	}
	if err := checkGrant(actor, payload.Nivel); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(payload.Password)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Nome:     strings.TrimSpace(payload.Nome),
		Email:    strings.ToLower(strings.TrimSpace(payload.Email)),
		Telefone: payload.Telefone,
		Password: hash,
		Nivel:    payload.Nivel,
		Ativo:    true,
	}
	user.CriadoPor = &actor.ID
	user.DataCriacao = s.now()

	id, err := s.userRepo.Create(ctx, user)
	if err != nil {
		s.logger.Error("Erro ao criar usuário", zap.String("email", user.Email), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Usuário criado", zap.Uint64("id", id), zap.Uint64("por", actor.ID))
	return s.userRepo.FindByID(ctx, id)
}

func (s *UserService) UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) (*entities.User, error) {
	actor, err := s.authorize(ctx, authz.UserUpdate, nil)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if authz.Level(user.Nivel) > actor.Nivel {
		return nil, &apperrors.ForbiddenError{Operation: string(authz.UserUpdate), Required: user.Nivel, Actual: int(actor.Nivel)}
	}

	if payload.Nome.Valid {
		user.Nome = strings.TrimSpace(payload.Nome.String)
	}
	if payload.Email.Valid {
		user.Email = strings.ToLower(strings.TrimSpace(payload.Email.String))
	}
	if payload.Telefone.Valid {
		user.Telefone = utils.NilIfEmpty(payload.Telefone.String)
	}
	if payload.Nivel.Valid {
		if err := checkGrant(actor, payload.Nivel.Int); err != nil {
			return nil, err
		}
		user.Nivel = payload.Nivel.Int
	}
	user.Touch(actor.ID, s.now())

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if payload.Password.Valid {
		hash, err := utils.HashPassword(payload.Password.String)
		if err != nil {
			return nil, err
		}
		if err := s.userRepo.UpdatePassword(ctx, id, hash); err != nil {
			return nil, err
		}
	}
	return s.userRepo.FindByID(ctx, id)
}

func (s *UserService) SetActive(ctx context.Context, id uint64, ativo bool) (*entities.User, error) {
	actor, err := s.authorize(ctx, authz.UserActivation, nil)
	if err != nil {
		return nil, err
	}
	if id == actor.ID && !ativo {
		return nil, apperrors.NewConflictError("não é possível desativar o próprio usuário")
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if authz.Level(user.Nivel) > actor.Nivel {
		return nil, &apperrors.ForbiddenError{Operation: string(authz.UserActivation), Required: user.Nivel, Actual: int(actor.Nivel)}
	}
	user.Ativo = ativo
	user.Touch(actor.ID, s.now())
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("Situação do usuário alterada", zap.Uint64("id", id), zap.Bool("ativo", ativo))
	return user, nil
}
