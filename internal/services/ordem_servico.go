package services

import (
	"context"
	"fmt"
	"sort"
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

type OrdemServicoServiceInterface interface {
	GetOrdensServico(ctx context.Context, filter types.Filter) ([]dto.OrdemServicoDTO, uint64, error)
	FindOrdemServico(ctx context.Context, id uint64) (*dto.OrdemServicoDTO, error)
	// CreateOrdemServico bundles approved requests that have no active work order.
	CreateOrdemServico(ctx context.Context, payload dto.CreateOrdemServicoDTO) (*dto.OrdemServicoDTO, error)
	UpdateOrdemServico(ctx context.Context, id uint64, payload dto.UpdateOrdemServicoDTO) (*dto.OrdemServicoDTO, error)
	Start(ctx context.Context, id uint64) (*dto.OrdemServicoDTO, error)
	Pause(ctx context.Context, id uint64, reason *string) (*dto.OrdemServicoDTO, error)
	// Complete also completes every linked approved request left without an active order.
	Complete(ctx context.Context, id uint64, payload dto.CompleteOrdemServicoDTO) (*dto.OrdemServicoDTO, error)
	Cancel(ctx context.Context, id uint64, reason string) (*dto.OrdemServicoDTO, error)
	AssignTechnician(ctx context.Context, id uint64, tecnicoID uint64) (*dto.OrdemServicoDTO, error)
	GetVistorias(ctx context.Context, id uint64) ([]entities.Vistoria, error)
	History(ctx context.Context, id uint64) ([]entities.StatusHistory, error)
}

type OrdemServicoService struct {
	*BaseService
	txManager        repositories.TxManagerInterface
	ordemServicoRepo repositories.OrdemServicoRepositoryInterface
	requerimentoRepo repositories.RequerimentoRepositoryInterface
	vistoriaRepo     repositories.VistoriaRepositoryInterface
	numeracaoRepo    repositories.NumeracaoRepositoryInterface
}

func NewOrdemServicoService(base *BaseService, reg *repositories.Registry) OrdemServicoServiceInterface {
	return &OrdemServicoService{
		BaseService:      base,
		txManager:        reg.TxManager,
		ordemServicoRepo: reg.OrdensServico,
		requerimentoRepo: reg.Requerimentos,
		vistoriaRepo:     reg.Vistorias,
		numeracaoRepo:    reg.Numeracao,
	}
}

func (s *OrdemServicoService) toDTO(o *entities.OrdemServico) *dto.OrdemServicoDTO {
	return &dto.OrdemServicoDTO{OrdemServico: *o, DiasAtraso: o.DiasAtraso(s.now())}
}

func (s *OrdemServicoService) GetOrdensServico(ctx context.Context, filter types.Filter) ([]dto.OrdemServicoDTO, uint64, error) {
	if _, err := s.authorize(ctx, authz.OrdemServicoView, nil); err != nil {
		return nil, 0, err
	}
	ordens, total, err := s.ordemServicoRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.OrdemServicoDTO, 0, len(ordens))
	for i := range ordens {
		result = append(result, *s.toDTO(&ordens[i]))
	}
	return result, total, nil
}

func (s *OrdemServicoService) FindOrdemServico(ctx context.Context, id uint64) (*dto.OrdemServicoDTO, error) {
	if _, err := s.authorize(ctx, authz.OrdemServicoView, nil); err != nil {
		return nil, err
	}
	o, err := s.ordemServicoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toDTO(o), nil
}

func (s *OrdemServicoService) GetVistorias(ctx context.Context, id uint64) ([]entities.Vistoria, error) {
	if _, err := s.authorize(ctx, authz.VistoriaView, nil); err != nil {
		return nil, err
	}
	if _, err := s.ordemServicoRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.vistoriaRepo.ListByOrdemServico(ctx, id)
}

func (s *OrdemServicoService) History(ctx context.Context, id uint64) ([]entities.StatusHistory, error) {
	return s.history(ctx, authz.OrdemServicoView, constants.EntidadeOrdemServico, id)
}

func uniqueSorted(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	// requests are locked in id order
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *OrdemServicoService) CreateOrdemServico(ctx context.Context, p dto.CreateOrdemServicoDTO) (*dto.OrdemServicoDTO, error) {
	actor, err := s.authorize(ctx, authz.OrdemServicoCreate, nil)
	if err != nil {
		return nil, err
	}
	reqIDs := uniqueSorted(p.RequerimentoIDs)
	if len(reqIDs) == 0 {
		return nil, apperrors.NewValidationError("requerimento_ids", "informe ao menos um requerimento")
	}
	if p.ResponsavelID != nil {
		if err := s.validateTechnician(ctx, "responsavel_id", *p.ResponsavelID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	o := &entities.OrdemServico{
		Status:          constants.OrdemServicoPendente,
		Prioridade:      p.Prioridade,
		ResponsavelID:   p.ResponsavelID,
		DataEmissao:     now,
		Observacao:      p.Observacao,
		CustoEstimado:   p.CustoEstimado,
		RequerimentoIDs: reqIDs,
	}
	if o.Prioridade == "" {
		o.Prioridade = constants.PrioridadeMedia
	}
	if p.DataProgramada != nil && *p.DataProgramada != "" {
		d, err := utils.ParseDate(*p.DataProgramada)
		if err != nil {
			return nil, apperrors.NewValidationError("data_programada", "%v", err)
		}
		o.DataProgramada = &d
	}
	o.CriadoPor = &actor.ID
	o.DataCriacao = now

	var created *entities.StatusHistory
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		for _, reqID := range reqIDs {
			r, err := s.requerimentoRepo.FindByIDForUpdate(ctx, tx, reqID)
			if err != nil {
				return err
			}
			if r.Status != constants.RequerimentoAprovado {
				return apperrors.NewConflictError("o requerimento %s está %q; só requerimentos aprovados geram ordem de serviço", r.Numero, r.Status)
			}
			active, err := s.ordemServicoRepo.CountActiveByRequerimento(ctx, tx, reqID, 0)
			if err != nil {
				return err
			}
			if active > 0 {
				return apperrors.NewConflictError("o requerimento %s já possui ordem de serviço ativa", r.Numero)
			}
		}

		seq, err := s.numeracaoRepo.NextInTx(ctx, tx, constants.PrefixOrdemServico, now.Year())
		if err != nil {
			return err
		}
		o.Numero = repositories.FormatNumero(constants.PrefixOrdemServico, now.Year(), seq)

		id, err := s.ordemServicoRepo.CreateInTx(ctx, tx, o)
		if err != nil {
			return err
		}
		o.ID = id
		created, err = s.recordTransition(ctx, tx, constants.EntidadeOrdemServico, id, "criar", "", o.Status, nil, actor.ID, now)
		return err
	})
	if err != nil {
		s.logger.Warn("Ordem de serviço não criada", zap.Uint64s("requerimentos", reqIDs), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Ordem de serviço criada", zap.Uint64("id", o.ID), zap.String("numero", o.Numero))
	s.publishTransitions(ctx, created)
	return s.toDTO(o), nil
}

func (s *OrdemServicoService) UpdateOrdemServico(ctx context.Context, id uint64, p dto.UpdateOrdemServicoDTO) (*dto.OrdemServicoDTO, error) {
	actor, err := s.authorize(ctx, authz.OrdemServicoUpdate, nil)
	if err != nil {
		return nil, err
	}
	var updated *entities.OrdemServico
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		o, err := s.ordemServicoRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if !o.CanEdit() {
			return apperrors.NewStateError(constants.EntidadeOrdemServico, "editar", o.Status)
		}
		if p.Prioridade.Valid {
			o.Prioridade = p.Prioridade.String
		}
		if p.DataProgramada.Valid {
			if p.DataProgramada.String == "" {
				o.DataProgramada = nil
			} else {
				d, err := utils.ParseDate(p.DataProgramada.String)
				if err != nil {
					return apperrors.NewValidationError("data_programada", "%v", err)
				}
				o.DataProgramada = &d
			}
		}
		if p.Observacao.Valid {
			o.Observacao = utils.NilIfEmpty(p.Observacao.String)
		}
		if p.CustoEstimado.Valid {
			o.CustoEstimado = &p.CustoEstimado.Float64
		}
		o.Touch(actor.ID, s.now())
		if err := s.ordemServicoRepo.UpdateInTx(ctx, tx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.toDTO(updated), nil
}

// transition runs one lifecycle change under a row lock. after runs inside
// the same transaction once the order row is written and may add history.
func (s *OrdemServicoService) transition(
	ctx context.Context,
	id uint64,
	op authz.Operation,
	acao string,
	comentario *string,
	apply func(o *entities.OrdemServico, actorID uint64, now time.Time) error,
	after func(ctx context.Context, tx pgx.Tx, o *entities.OrdemServico, actorID uint64, now time.Time) ([]*entities.StatusHistory, error),
) (*dto.OrdemServicoDTO, error) {
	actor, err := s.authorize(ctx, op, nil)
	if err != nil {
		return nil, err
	}

	var result *entities.OrdemServico
	var history []*entities.StatusHistory
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		history = nil
		o, err := s.ordemServicoRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		anterior := o.Status
		now := s.now()
		if err := apply(o, actor.ID, now); err != nil {
			return err
		}
		if err := s.ordemServicoRepo.UpdateStatusInTx(ctx, tx, o); err != nil {
			return err
		}
		h, err := s.recordTransition(ctx, tx, constants.EntidadeOrdemServico, o.ID, acao, anterior, o.Status, comentario, actor.ID, now)
		if err != nil {
			return err
		}
		history = append(history, h)
		if after != nil {
			more, err := after(ctx, tx, o, actor.ID, now)
			if err != nil {
				return err
			}
			history = append(history, more...)
		}
		result = o
		return nil
	})
	if err != nil {
		s.logger.Warn("Transição de ordem de serviço recusada",
			zap.Uint64("id", id),
			zap.String("acao", acao),
			zap.Error(err),
		)
		return nil, err
	}
	s.publishTransitions(ctx, history...)
	return s.toDTO(result), nil
}

func (s *OrdemServicoService) Start(ctx context.Context, id uint64) (*dto.OrdemServicoDTO, error) {
	return s.transition(ctx, id, authz.OrdemServicoStart, "iniciar", nil,
		func(o *entities.OrdemServico, actorID uint64, now time.Time) error {
			return o.Start(actorID, now)
		}, nil)
}

func (s *OrdemServicoService) Pause(ctx context.Context, id uint64, reason *string) (*dto.OrdemServicoDTO, error) {
	return s.transition(ctx, id, authz.OrdemServicoPause, "pausar", reason,
		func(o *entities.OrdemServico, actorID uint64, now time.Time) error {
			return o.Pause(actorID, reason, now)
		}, nil)
}

func (s *OrdemServicoService) Complete(ctx context.Context, id uint64, p dto.CompleteOrdemServicoDTO) (*dto.OrdemServicoDTO, error) {
	return s.transition(ctx, id, authz.OrdemServicoComplete, "concluir", nil,
		func(o *entities.OrdemServico, actorID uint64, now time.Time) error {
			return o.Complete(actorID, p.Relatorio, p.CustoReal, now)
		},
		s.completeLinkedRequerimentos)
}

// completeLinkedRequerimentos closes approved requests whose last active order just finished.
func (s *OrdemServicoService) completeLinkedRequerimentos(ctx context.Context, tx pgx.Tx, o *entities.OrdemServico, actorID uint64, now time.Time) ([]*entities.StatusHistory, error) {
	var history []*entities.StatusHistory
	for _, reqID := range o.RequerimentoIDs {
		r, err := s.requerimentoRepo.FindByIDForUpdate(ctx, tx, reqID)
		if err != nil {
			return nil, err
		}
		if r.Status != constants.RequerimentoAprovado {
			continue
		}
		others, err := s.ordemServicoRepo.CountActiveByRequerimento(ctx, tx, reqID, o.ID)
		if err != nil {
			return nil, err
		}
		if others > 0 {
			continue
		}
		anterior := r.Status
		if err := r.Complete(actorID, now); err != nil {
			return nil, err
		}
		if err := s.requerimentoRepo.UpdateStatusInTx(ctx, tx, r); err != nil {
			return nil, err
		}
		comentario := fmt.Sprintf("concluído pela ordem de serviço %s", o.Numero)
		h, err := s.recordTransition(ctx, tx, constants.EntidadeRequerimento, r.ID, "concluir", anterior, r.Status, &comentario, actorID, now)
		if err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, nil
}

func (s *OrdemServicoService) Cancel(ctx context.Context, id uint64, reason string) (*dto.OrdemServicoDTO, error) {
	return s.transition(ctx, id, authz.OrdemServicoCancel, "cancelar", utils.NilIfEmpty(reason),
		func(o *entities.OrdemServico, actorID uint64, now time.Time) error {
			return o.Cancel(actorID, reason, now)
		}, nil)
}

func (s *OrdemServicoService) AssignTechnician(ctx context.Context, id uint64, tecnicoID uint64) (*dto.OrdemServicoDTO, error) {
	if _, err := s.authorize(ctx, authz.OrdemServicoAssign, nil); err != nil {
		return nil, err
	}
	if err := s.validateTechnician(ctx, "responsavel_id", tecnicoID); err != nil {
		return nil, err
	}
	comentario := fmt.Sprintf("responsável: usuário %d", tecnicoID)
	return s.transition(ctx, id, authz.OrdemServicoAssign, "atribuir", &comentario,
		func(o *entities.OrdemServico, actorID uint64, now time.Time) error {
			return o.AssignTechnician(actorID, tecnicoID, now)
		}, nil)
}
