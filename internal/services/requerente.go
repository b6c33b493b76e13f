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

const entidadeRequerente = "requerente"

type RequerenteServiceInterface interface {
	GetRequerentes(ctx context.Context, filter types.Filter) ([]entities.Requerente, uint64, error)
	FindRequerente(ctx context.Context, id uint64) (*entities.Requerente, error)
	CreateRequerente(ctx context.Context, payload dto.CreateRequerenteDTO) (*entities.Requerente, error)
	UpdateRequerente(ctx context.Context, id uint64, payload dto.UpdateRequerenteDTO) (*entities.Requerente, error)
	DeleteRequerente(ctx context.Context, id uint64) error
}

type RequerenteService struct {
	*BaseService
	requerenteRepo repositories.RequerenteRepositoryInterface
}

func NewRequerenteService(base *BaseService, requerenteRepo repositories.RequerenteRepositoryInterface) RequerenteServiceInterface {
	return &RequerenteService{BaseService: base, requerenteRepo: requerenteRepo}
}

func (s *RequerenteService) GetRequerentes(ctx context.Context, filter types.Filter) ([]entities.Requerente, uint64, error) {
	if _, err := s.authorize(ctx, authz.RequerenteView, nil); err != nil {
		return nil, 0, err
	}
	return s.requerenteRepo.List(ctx, filter)
}

func (s *RequerenteService) FindRequerente(ctx context.Context, id uint64) (*entities.Requerente, error) {
	if _, err := s.authorize(ctx, authz.RequerenteView, nil); err != nil {
		return nil, err
	}
	return s.requerenteRepo.FindByID(ctx, id)
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normalizedDocument(value *string) *string {
	if value == nil {
		return nil
	}
	return utils.NilIfEmpty(onlyDigits(*value))
}

func (s *RequerenteService) CreateRequerente(ctx context.Context, payload dto.CreateRequerenteDTO) (*entities.Requerente, error) {
	actor, err := s.authorize(ctx, authz.RequerenteCreate, nil)
	if err != nil {
		return nil, err
	}
	r := &entities.Requerente{
		Nome:       strings.TrimSpace(payload.Nome),
		Telefone:   payload.Telefone,
		Email:      payload.Email,
		CpfCnpj:    normalizedDocument(payload.CpfCnpj),
		Tipo:       payload.Tipo,
		Endereco:   payload.Endereco,
		Observacao: payload.Observacao,
	}
	r.CriadoPor = &actor.ID
	r.DataCriacao = s.now()

	id, err := s.requerenteRepo.Create(ctx, r)
	if err != nil {
		s.logger.Error("Erro ao criar requerente", zap.Error(err))
		return nil, err
	}
	s.publishRecordChange(ctx, entidadeRequerente, id, "criar")
	return s.requerenteRepo.FindByID(ctx, id)
}

func (s *RequerenteService) UpdateRequerente(ctx context.Context, id uint64, p dto.UpdateRequerenteDTO) (*entities.Requerente, error) {
	actor, err := s.authorize(ctx, authz.RequerenteUpdate, nil)
	if err != nil {
		return nil, err
	}
	r, err := s.requerenteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Nome.Valid {
		r.Nome = strings.TrimSpace(p.Nome.String)
	}
	if p.Telefone.Valid {
		r.Telefone = utils.NilIfEmpty(p.Telefone.String)
	}
	if p.Email.Valid {
		r.Email = utils.NilIfEmpty(p.Email.String)
	}
	if p.CpfCnpj.Valid {
		r.CpfCnpj = normalizedDocument(&p.CpfCnpj.String)
	}
	if p.Tipo.Valid {
		r.Tipo = utils.NilIfEmpty(p.Tipo.String)
	}
	if p.Endereco.Valid {
		r.Endereco = utils.NilIfEmpty(p.Endereco.String)
	}
	if p.Observacao.Valid {
		r.Observacao = utils.NilIfEmpty(p.Observacao.String)
	}
	r.Touch(actor.ID, s.now())

	if err := s.requerenteRepo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// DeleteRequerente refuses while any request references the requester.
func (s *RequerenteService) DeleteRequerente(ctx context.Context, id uint64) error {
	if _, err := s.authorize(ctx, authz.RequerenteDelete, nil); err != nil {
		return err
	}
	if _, err := s.requerenteRepo.FindByID(ctx, id); err != nil {
		return err
	}
	n, err := s.requerenteRepo.CountRequerimentos(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperrors.NewConflictError("o requerente %d possui %d requerimento(s) vinculado(s)", id, n)
	}
	if err := s.requerenteRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.publishRecordChange(ctx, entidadeRequerente, id, "excluir")
	return nil
}
