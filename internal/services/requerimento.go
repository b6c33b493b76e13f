package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"semapa/internal/authz"
	"semapa/internal/dto"
	"semapa/internal/entities"
	"semapa/internal/repositories"
	"semapa/pkg/constants"
	apperrors "semapa/pkg/errors"
	"semapa/pkg/types"
	"semapa/pkg/utils"
)

type RequerimentoServiceInterface interface {
	GetRequerimentos(ctx context.Context, filter types.Filter) ([]entities.Requerimento, uint64, error)
	FindRequerimento(ctx context.Context, id uint64) (*entities.Requerimento, error)
	CreateRequerimento(ctx context.Context, payload dto.CreateRequerimentoDTO) (*entities.Requerimento, error)
	UpdateRequerimento(ctx context.Context, id uint64, payload dto.UpdateRequerimentoDTO) (*entities.Requerimento, error)
	Approve(ctx context.Context, id uint64) (*entities.Requerimento, error)
	Reject(ctx context.Context, id uint64, reason string) (*entities.Requerimento, error)
	Complete(ctx context.Context, id uint64) (*entities.Requerimento, error)
	Cancel(ctx context.Context, id uint64, reason *string) (*entities.Requerimento, error)
	DeleteRequerimento(ctx context.Context, id uint64) error
	History(ctx context.Context, id uint64) ([]entities.StatusHistory, error)
}

type RequerimentoService struct {
	*BaseService
	txManager        repositories.TxManagerInterface
	requerimentoRepo repositories.RequerimentoRepositoryInterface
	requerenteRepo   repositories.RequerenteRepositoryInterface
	arvoreRepo       repositories.ArvoreRepositoryInterface
	ordemServicoRepo repositories.OrdemServicoRepositoryInterface
	vistoriaRepo     repositories.VistoriaRepositoryInterface
	numeracaoRepo    repositories.NumeracaoRepositoryInterface
}

func NewRequerimentoService(base *BaseService, reg *repositories.Registry) RequerimentoServiceInterface {
	return &RequerimentoService{
		BaseService:      base,
		txManager:        reg.TxManager,
		requerimentoRepo: reg.Requerimentos,
		requerenteRepo:   reg.Requerentes,
		arvoreRepo:       reg.Arvores,
		ordemServicoRepo: reg.OrdensServico,
		vistoriaRepo:     reg.Vistorias,
		numeracaoRepo:    reg.Numeracao,
	}
}

func (s *RequerimentoService) GetRequerimentos(ctx context.Context, filter types.Filter) ([]entities.Requerimento, uint64, error) {
	if _, err := s.authorize(ctx, authz.RequerimentoView, nil); err != nil {
		return nil, 0, err
	}
	return s.requerimentoRepo.List(ctx, filter)
}

func (s *RequerimentoService) FindRequerimento(ctx context.Context, id uint64) (*entities.Requerimento, error) {
	if _, err := s.authorize(ctx, authz.RequerimentoView, nil); err != nil {
		return nil, err
	}
	return s.requerimentoRepo.FindByID(ctx, id)
}

func (s *RequerimentoService) History(ctx context.Context, id uint64) ([]entities.StatusHistory, error) {
	return s.history(ctx, authz.RequerimentoView, constants.EntidadeRequerimento, id)
}

// checkReferences requires the requester and the tree to exist.
func (s *RequerimentoService) checkReferences(ctx context.Context, requerenteID, arvoreID uint64) error {
	if _, err := s.requerenteRepo.FindByID(ctx, requerenteID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationError("requerente_id", "requerente %d não encontrado", requerenteID)
		}
		return err
	}
	if _, err := s.arvoreRepo.FindByID(ctx, arvoreID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationError("arvore_id", "árvore %d não encontrada", arvoreID)
		}
		return err
	}
	return nil
}

func (s *RequerimentoService) CreateRequerimento(ctx context.Context, p dto.CreateRequerimentoDTO) (*entities.Requerimento, error) {
	actor, err := s.authorize(ctx, authz.RequerimentoCreate, nil)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, p.RequerenteID, p.ArvoreID); err != nil {
		return nil, err
	}

	now := s.now()
	r := &entities.Requerimento{
		DataAbertura: now,
		Tipo:         p.Tipo,
		Motivo:       p.Motivo,
		Status:       constants.RequerimentoPendente,
		Prioridade:   p.Prioridade,
		RequerenteID: p.RequerenteID,
		ArvoreID:     p.ArvoreID,
		Observacao:   p.Observacao,
	}
	if r.Prioridade == "" {
		r.Prioridade = constants.PrioridadeMedia
	}
	if p.DataAbertura != nil && *p.DataAbertura != "" {
		d, err := utils.ParseDate(*p.DataAbertura)
		if err != nil {
			return nil, apperrors.NewValidationError("data_abertura", "%v", err)
		}
		r.DataAbertura = d
	}
	r.CriadoPor = &actor.ID
	r.DataCriacao = now

	var created *entities.StatusHistory
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		seq, err := s.numeracaoRepo.NextInTx(ctx, tx, constants.PrefixRequerimento, r.DataAbertura.Year())
		if err != nil {
			return err
		}
		r.Numero = repositories.FormatNumero(constants.PrefixRequerimento, r.DataAbertura.Year(), seq)

		id, err := s.requerimentoRepo.CreateInTx(ctx, tx, r)
		if err != nil {
			return err
		}
		r.ID = id
		created, err = s.recordTransition(ctx, tx, constants.EntidadeRequerimento, id, "criar", "", r.Status, nil, actor.ID, now)
		return err
	})
	if err != nil {
		s.logger.Error("Erro ao criar requerimento", zap.Error(err))
		return nil, err
	}
	s.logger.Info("Requerimento criado", zap.Uint64("id", r.ID), zap.String("numero", r.Numero))
	s.publishTransitions(ctx, created)
	return r, nil
}

func (s *RequerimentoService) UpdateRequerimento(ctx context.Context, id uint64, p dto.UpdateRequerimentoDTO) (*entities.Requerimento, error) {
	current, err := s.requerimentoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	actor, err := s.authorize(ctx, authz.RequerimentoUpdate, current.CriadoPor)
	if err != nil {
		return nil, err
	}

	var updated *entities.Requerimento
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		r, err := s.requerimentoRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if !r.CanEdit() {
			return apperrors.NewStateError(constants.EntidadeRequerimento, "editar", r.Status)
		}
		if p.Tipo.Valid {
			r.Tipo = p.Tipo.String
		}
		if p.Motivo.Valid {
			r.Motivo = utils.NilIfEmpty(p.Motivo.String)
		}
		if p.Prioridade.Valid {
			r.Prioridade = p.Prioridade.String
		}
		if p.RequerenteID.Valid {
			r.RequerenteID = p.RequerenteID.Uint64
		}
		if p.ArvoreID.Valid {
			r.ArvoreID = p.ArvoreID.Uint64
		}
		if p.Observacao.Valid {
			r.Observacao = utils.NilIfEmpty(p.Observacao.String)
		}
		if p.RequerenteID.Valid || p.ArvoreID.Valid {
			if err := s.checkReferences(ctx, r.RequerenteID, r.ArvoreID); err != nil {
				return err
			}
		}
		r.Touch(actor.ID, s.now())
		if err := s.requerimentoRepo.UpdateInTx(ctx, tx, r); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// transition runs one lifecycle change under a row lock and records it.
// guard runs after the lock and before apply.
func (s *RequerimentoService) transition(
	ctx context.Context,
	id uint64,
	op authz.Operation,
	acao string,
	comentario *string,
	guard func(tx pgx.Tx, r *entities.Requerimento) error,
	apply func(r *entities.Requerimento, actorID uint64, now time.Time) error,
) (*entities.Requerimento, error) {
	current, err := s.requerimentoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	actor, err := s.authorize(ctx, op, current.CriadoPor)
	if err != nil {
		return nil, err
	}

	var result *entities.Requerimento
	var history *entities.StatusHistory
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		r, err := s.requerimentoRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(tx, r); err != nil {
				return err
			}
		}
		anterior := r.Status
		now := s.now()
		if err := apply(r, actor.ID, now); err != nil {
			return err
		}
		if err := s.requerimentoRepo.UpdateStatusInTx(ctx, tx, r); err != nil {
			return err
		}
		history, err = s.recordTransition(ctx, tx, constants.EntidadeRequerimento, r.ID, acao, anterior, r.Status, comentario, actor.ID, now)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		s.logger.Warn("Transição de requerimento recusada",
			zap.Uint64("id", id),
			zap.String("acao", acao),
			zap.Error(err),
		)
		return nil, err
	}
	s.publishTransitions(ctx, history)
	return result, nil
}

// noActiveOrdem blocks closing a request still referenced by a pending or running work order.
func (s *RequerimentoService) noActiveOrdem(ctx context.Context) func(tx pgx.Tx, r *entities.Requerimento) error {
	return func(tx pgx.Tx, r *entities.Requerimento) error {
		n, err := s.ordemServicoRepo.CountActiveByRequerimento(ctx, tx, r.ID, 0)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperrors.NewConflictError("o requerimento %s possui ordem de serviço ativa", r.Numero)
		}
		return nil
	}
}

func (s *RequerimentoService) Approve(ctx context.Context, id uint64) (*entities.Requerimento, error) {
	return s.transition(ctx, id, authz.RequerimentoApprove, "aprovar", nil, nil,
		func(r *entities.Requerimento, actorID uint64, now time.Time) error {
			return r.Approve(actorID, now)
		})
}

func (s *RequerimentoService) Reject(ctx context.Context, id uint64, reason string) (*entities.Requerimento, error) {
	return s.transition(ctx, id, authz.RequerimentoReject, "negar", utils.NilIfEmpty(reason), nil,
		func(r *entities.Requerimento, actorID uint64, now time.Time) error {
			return r.Reject(actorID, reason, now)
		})
}

func (s *RequerimentoService) Complete(ctx context.Context, id uint64) (*entities.Requerimento, error) {
	return s.transition(ctx, id, authz.RequerimentoComplete, "concluir", nil, s.noActiveOrdem(ctx),
		func(r *entities.Requerimento, actorID uint64, now time.Time) error {
			return r.Complete(actorID, now)
		})
}

func (s *RequerimentoService) Cancel(ctx context.Context, id uint64, reason *string) (*entities.Requerimento, error) {
	return s.transition(ctx, id, authz.RequerimentoCancel, "cancelar", reason, s.noActiveOrdem(ctx),
		func(r *entities.Requerimento, actorID uint64, now time.Time) error {
			return r.Cancel(actorID, reason, now)
		})
}

// DeleteRequerimento removes a pending request that no work order or inspection references.
func (s *RequerimentoService) DeleteRequerimento(ctx context.Context, id uint64) error {
	if _, err := s.authorize(ctx, authz.RequerimentoDelete, nil); err != nil {
		return err
	}
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		r, err := s.requerimentoRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if r.Status != constants.RequerimentoPendente {
			return apperrors.NewStateError(constants.EntidadeRequerimento, "excluir", r.Status)
		}
		ordens, err := s.ordemServicoRepo.CountByRequerimento(ctx, id)
		if err != nil {
			return err
		}
		vistorias, err := s.vistoriaRepo.CountByRequerimento(ctx, id)
		if err != nil {
			return err
		}
		if ordens > 0 || vistorias > 0 {
			return apperrors.NewConflictError("o requerimento %s possui %d ordem(ns) de serviço e %d vistoria(s) vinculadas", r.Numero, ordens, vistorias)
		}
		return s.requerimentoRepo.DeleteInTx(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Requerimento excluído", zap.Uint64("id", id))
	s.publishRecordChange(ctx, constants.EntidadeRequerimento, id, "excluir")
	return nil
}
