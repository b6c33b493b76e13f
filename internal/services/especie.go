package services

import (
	"context"
	"io"
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

const entidadeEspecie = "especie"

type EspecieServiceInterface interface {
	GetEspecies(ctx context.Context, filter types.Filter) ([]dto.EspecieDTO, uint64, error)
	FindEspecie(ctx context.Context, id uint64) (*dto.EspecieDTO, error)
	CreateEspecie(ctx context.Context, payload dto.CreateEspecieDTO) (*dto.EspecieDTO, error)
	UpdateEspecie(ctx context.Context, id uint64, payload dto.UpdateEspecieDTO) (*dto.EspecieDTO, error)
	DeleteEspecie(ctx context.Context, id uint64) error
	ImportEspecies(ctx context.Context, file io.Reader) (*dto.EspecieImportResultDTO, error)
}

type EspecieService struct {
	*BaseService
	especieRepo repositories.EspecieRepositoryInterface
}

func NewEspecieService(base *BaseService, especieRepo repositories.EspecieRepositoryInterface) EspecieServiceInterface {
	return &EspecieService{BaseService: base, especieRepo: especieRepo}
}

func (s *EspecieService) toDTO(e entities.Especie, counts map[uint64]int64) dto.EspecieDTO {
	return dto.EspecieDTO{Especie: e, TotalArvores: counts[e.ID], AlturaMedia: e.AlturaMedia()}
}

func (s *EspecieService) GetEspecies(ctx context.Context, filter types.Filter) ([]dto.EspecieDTO, uint64, error) {
	if _, err := s.authorize(ctx, authz.EspecieView, nil); err != nil {
		return nil, 0, err
	}
	especies, total, err := s.especieRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	counts, err := s.especieRepo.ArvoresPorEspecie(ctx)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.EspecieDTO, 0, len(especies))
	for _, e := range especies {
		result = append(result, s.toDTO(e, counts))
	}
	return result, total, nil
}

func (s *EspecieService) FindEspecie(ctx context.Context, id uint64) (*dto.EspecieDTO, error) {
	if _, err := s.authorize(ctx, authz.EspecieView, nil); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

func (s *EspecieService) find(ctx context.Context, id uint64) (*dto.EspecieDTO, error) {
	e, err := s.especieRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	total, err := s.especieRepo.CountArvores(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.EspecieDTO{Especie: *e, TotalArvores: total, AlturaMedia: e.AlturaMedia()}, nil
}

func (s *EspecieService) CreateEspecie(ctx context.Context, payload dto.CreateEspecieDTO) (*dto.EspecieDTO, error) {
	actor, err := s.authorize(ctx, authz.EspecieCreate, nil)
	if err != nil {
		return nil, err
	}
	e := especieFromDTO(payload)
	if err := e.ValidateRanges(); err != nil {
		return nil, err
	}
	e.CriadoPor = &actor.ID
	e.DataCriacao = s.now()

	id, err := s.especieRepo.Create(ctx, e)
	if err != nil {
		s.logger.Error("Erro ao criar espécie", zap.String("nome_popular", e.NomePopular), zap.Error(err))
		return nil, err
	}
	s.publishRecordChange(ctx, entidadeEspecie, id, "criar")
	return s.find(ctx, id)
}

func especieFromDTO(p dto.CreateEspecieDTO) *entities.Especie {
	return &entities.Especie{
		NomePopular:       strings.TrimSpace(p.NomePopular),
		NomeCientifico:    strings.TrimSpace(p.NomeCientifico),
		Porte:             p.Porte,
		AlturaMin:         p.AlturaMin,
		AlturaMax:         p.AlturaMax,
		LongevidadeMin:    p.LongevidadeMin,
		LongevidadeMax:    p.LongevidadeMax,
		Deciduidade:       p.Deciduidade,
		CorFlor:           p.CorFlor,
		EpocaFloracao:     p.EpocaFloracao,
		FrutoComestivel:   p.FrutoComestivel,
		EpocaFrutificacao: p.EpocaFrutificacao,
		NecessidadeRega:   p.NecessidadeRega,
		AtraiFauna:        p.AtraiFauna,
		Observacoes:       p.Observacoes,
		LinkFoto:          p.LinkFoto,
	}
}

func (s *EspecieService) UpdateEspecie(ctx context.Context, id uint64, p dto.UpdateEspecieDTO) (*dto.EspecieDTO, error) {
	actor, err := s.authorize(ctx, authz.EspecieUpdate, nil)
	if err != nil {
		return nil, err
	}
	e, err := s.especieRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.NomePopular.Valid {
		e.NomePopular = strings.TrimSpace(p.NomePopular.String)
	}
	if p.NomeCientifico.Valid {
		e.NomeCientifico = strings.TrimSpace(p.NomeCientifico.String)
	}
	if p.Porte.Valid {
		e.Porte = p.Porte.String
	}
	if p.AlturaMin.Valid {
		e.AlturaMin = &p.AlturaMin.Float64
	}
	if p.AlturaMax.Valid {
		e.AlturaMax = &p.AlturaMax.Float64
	}
	if p.LongevidadeMin.Valid {
		e.LongevidadeMin = &p.LongevidadeMin.Int
	}
	if p.LongevidadeMax.Valid {
		e.LongevidadeMax = &p.LongevidadeMax.Int
	}
	if p.Deciduidade.Valid {
		e.Deciduidade = utils.NilIfEmpty(p.Deciduidade.String)
	}
	if p.CorFlor.Valid {
		e.CorFlor = utils.NilIfEmpty(p.CorFlor.String)
	}
	if p.EpocaFloracao.Valid {
		e.EpocaFloracao = utils.NilIfEmpty(p.EpocaFloracao.String)
	}
	if p.FrutoComestivel.Valid {
		e.FrutoComestivel = &p.FrutoComestivel.Bool
	}
	if p.EpocaFrutificacao.Valid {
		e.EpocaFrutificacao = utils.NilIfEmpty(p.EpocaFrutificacao.String)
	}
	if p.NecessidadeRega.Valid {
		e.NecessidadeRega = utils.NilIfEmpty(p.NecessidadeRega.String)
	}
	if p.AtraiFauna.Valid {
		e.AtraiFauna = &p.AtraiFauna.Bool
	}
	if p.Observacoes.Valid {
		e.Observacoes = utils.NilIfEmpty(p.Observacoes.String)
	}
	if p.LinkFoto.Valid {
		e.LinkFoto = utils.NilIfEmpty(p.LinkFoto.String)
	}
	if err := e.ValidateRanges(); err != nil {
		return nil, err
	}
	e.Touch(actor.ID, s.now())

	if err := s.especieRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	s.publishRecordChange(ctx, entidadeEspecie, id, "editar")
	return s.find(ctx, id)
}

// DeleteEspecie refuses while trees or inspections reference the species.
func (s *EspecieService) DeleteEspecie(ctx context.Context, id uint64) error {
	if _, err := s.authorize(ctx, authz.EspecieDelete, nil); err != nil {
		return err
	}
	if _, err := s.especieRepo.FindByID(ctx, id); err != nil {
		return err
	}
	arvores, err := s.especieRepo.CountArvores(ctx, id)
	if err != nil {
		return err
	}
	vistorias, err := s.especieRepo.CountVistorias(ctx, id)
	if err != nil {
		return err
	}
	if arvores > 0 || vistorias > 0 {
		return apperrors.NewConflictError("a espécie %d possui %d árvore(s) e %d vistoria(s) vinculadas", id, arvores, vistorias)
	}
	if err := s.especieRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Espécie excluída", zap.Uint64("id", id))
	s.publishRecordChange(ctx, entidadeEspecie, id, "excluir")
	return nil
}

func (s *EspecieService) ImportEspecies(ctx context.Context, file io.Reader) (*dto.EspecieImportResultDTO, error) {
	actor, err := s.authorize(ctx, authz.EspecieImport, nil)
	if err != nil {
		return nil, err
	}
	importer := NewEspecieImporter(s.especieRepo, s.logger)
	result, err := importer.Import(ctx, file, actor.ID, s.now())
	if err != nil {
		return nil, err
	}
	if result.Criadas > 0 {
		s.publishRecordChange(ctx, entidadeEspecie, 0, "importar")
	}
	return result, nil
}
