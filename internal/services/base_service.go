package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"semapa/internal/authz"
	"semapa/internal/entities"
	"semapa/internal/events"
	"semapa/internal/repositories"
	"semapa/pkg/eventbus"
	apperrors "semapa/pkg/errors"
	"semapa/pkg/utils"
)

// EventPublisher is satisfied by *eventbus.Bus.
type EventPublisher interface {
	Publish(ctx context.Context, event eventbus.Event)
}

// BaseService holds what every domain service shares: the acting user lookup,
// the authorization check, status history and the clock.
type BaseService struct {
	userRepo    repositories.UserRepositoryInterface
	historyRepo repositories.StatusHistoryRepositoryInterface
	bus         EventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

func NewBaseService(
	userRepo repositories.UserRepositoryInterface,
	historyRepo repositories.StatusHistoryRepositoryInterface,
	bus EventPublisher,
	logger *zap.Logger,
) *BaseService {
	return &BaseService{
		userRepo:    userRepo,
		historyRepo: historyRepo,
		bus:         bus,
		logger:      logger,
		now:         time.Now,
	}
}

// SetClock replaces the time source used to stamp records.
func (s *BaseService) SetClock(now func() time.Time) {
	s.now = now
}

// actor loads the authenticated user with its current level. Tokens outlive
// level changes and deactivation, so the stored row is authoritative.
func (s *BaseService) actor(ctx context.Context) (*authz.Actor, error) {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("")
	}
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
	return &authz.Actor{ID: user.ID, Nivel: authz.Level(user.Nivel)}, nil
}

// authorize resolves the actor and checks op against it. ownerID is the
// target's criado_por and only matters for rules with OwnerMayAct.
func (s *BaseService) authorize(ctx context.Context, op authz.Operation, ownerID *uint64) (*authz.Actor, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, op, ownerID); err != nil {
		s.logger.Warn("Operação negada",
			zap.String("operation", string(op)),
			zap.Uint64("userID", actor.ID),
			zap.Int("nivel", int(actor.Nivel)),
		)
		return nil, err
	}
	return actor, nil
}

func (s *BaseService) recordTransition(
	ctx context.Context,
	tx pgx.Tx,
	entidade string,
	entidadeID uint64,
	acao, anterior, novo string,
	comentario *string,
	actorID uint64,
	at time.Time,
) (*entities.StatusHistory, error) {
	h := &entities.StatusHistory{
		Entidade:       entidade,
		EntidadeID:     entidadeID,
		Acao:           acao,
		StatusAnterior: anterior,
		StatusNovo:     novo,
		Comentario:     comentario,
		UsuarioID:      actorID,
		CriadoEm:       at,
	}
	if err := s.historyRepo.CreateInTx(ctx, tx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// publishTransitions must only be called after the transaction committed.
func (s *BaseService) publishTransitions(ctx context.Context, history ...*entities.StatusHistory) {
	if s.bus == nil {
		return
	}
	for _, h := range history {
		if h != nil {
			s.bus.Publish(ctx, events.StatusChangedEvent{History: *h})
		}
	}
}

func (s *BaseService) publishRecordChange(ctx context.Context, entidade string, id uint64, acao string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.RecordChangedEvent{Entidade: entidade, ID: id, Acao: acao})
}

// History returns the transitions of one record, oldest first.
func (s *BaseService) history(ctx context.Context, op authz.Operation, entidade string, id uint64) ([]entities.StatusHistory, error) {
	if _, err := s.authorize(ctx, op, nil); err != nil {
		return nil, err
	}
	return s.historyRepo.FindByEntity(ctx, entidade, id)
}

// validateTechnician requires an active user of level tecnico or above.
func (s *BaseService) validateTechnician(ctx context.Context, field string, userID uint64) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationError(field, "usuário %d não encontrado", userID)
		}
		return err
	}
	if !user.Ativo || authz.Level(user.Nivel) < authz.LevelTecnico {
		return apperrors.NewValidationError(field, "o usuário %d não é um técnico ativo", userID)
	}
	return nil
}
