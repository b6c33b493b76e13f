package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"semapa/config"
	"semapa/internal/authz"
	"semapa/internal/dto"
	"semapa/internal/entities"
	"semapa/internal/repositories"
	"semapa/pkg/constants"
	apperrors "semapa/pkg/errors"
	"semapa/pkg/filestorage"
	"semapa/pkg/types"
	"semapa/pkg/utils"
)

type VistoriaServiceInterface interface {
	GetVistorias(ctx context.Context, filter types.Filter) ([]entities.Vistoria, uint64, error)
	FindVistoria(ctx context.Context, id uint64) (*entities.Vistoria, error)
	// Agenda lists inspections scheduled between from and to, inclusive by day.
	Agenda(ctx context.Context, from, to time.Time, tecnicoID *uint64) ([]entities.Vistoria, error)
	CreateVistoria(ctx context.Context, payload dto.CreateVistoriaDTO) (*entities.Vistoria, error)
	UpdateVistoria(ctx context.Context, id uint64, payload dto.UpdateVistoriaDTO) (*entities.Vistoria, error)
	Start(ctx context.Context, id uint64) (*entities.Vistoria, error)
	Execute(ctx context.Context, id uint64, payload dto.ExecuteVistoriaDTO, fotos []dto.FotoUpload) (*entities.Vistoria, error)
	Cancel(ctx context.Context, id uint64, reason *string) (*entities.Vistoria, error)
	Reschedule(ctx context.Context, id uint64, payload dto.RescheduleVistoriaDTO) (*entities.Vistoria, error)
	AddFotos(ctx context.Context, id uint64, fotos []dto.FotoUpload) (*entities.Vistoria, error)
	DeleteVistoria(ctx context.Context, id uint64) error
	History(ctx context.Context, id uint64) ([]entities.StatusHistory, error)
}

type VistoriaService struct {
	*BaseService
	txManager        repositories.TxManagerInterface
	vistoriaRepo     repositories.VistoriaRepositoryInterface
	requerimentoRepo repositories.RequerimentoRepositoryInterface
	ordemServicoRepo repositories.OrdemServicoRepositoryInterface
	arvoreRepo       repositories.ArvoreRepositoryInterface
	especieRepo      repositories.EspecieRepositoryInterface
	fileStorage      filestorage.FileStorageInterface
}

func NewVistoriaService(base *BaseService, reg *repositories.Registry, fileStorage filestorage.FileStorageInterface) VistoriaServiceInterface {
	return &VistoriaService{
		BaseService:      base,
		txManager:        reg.TxManager,
		vistoriaRepo:     reg.Vistorias,
		requerimentoRepo: reg.Requerimentos,
		ordemServicoRepo: reg.OrdensServico,
		arvoreRepo:       reg.Arvores,
		especieRepo:      reg.Especies,
		fileStorage:      fileStorage,
	}
}

func (s *VistoriaService) GetVistorias(ctx context.Context, filter types.Filter) ([]entities.Vistoria, uint64, error) {
	if _, err := s.authorize(ctx, authz.VistoriaView, nil); err != nil {
		return nil, 0, err
	}
	filter, err := normalizeVistoriaFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	return s.vistoriaRepo.List(ctx, filter)
}

// normalizeVistoriaFilter maps legacy status labels in filter[status] to the canonical ones.
func normalizeVistoriaFilter(filter types.Filter) (types.Filter, error) {
	var normalized interface{}
	switch raw := filter.Filter["status"].(type) {
	case string:
		status, err := normalizeVistoriaStatus(raw)
		if err != nil {
			return filter, err
		}
		normalized = status
	case []string:
		statuses := make([]string, 0, len(raw))
		for _, r := range raw {
			status, err := normalizeVistoriaStatus(r)
			if err != nil {
				return filter, err
			}
			statuses = append(statuses, status)
		}
		normalized = statuses
	default:
		return filter, nil
	}
	filters := make(map[string]interface{}, len(filter.Filter))
	for k, v := range filter.Filter {
		filters[k] = v
	}
	filters["status"] = normalized
	filter.Filter = filters
	return filter, nil
}

func normalizeVistoriaStatus(raw string) (string, error) {
	status := constants.NormalizeVistoriaStatus(raw)
	if status == "" {
		return "", apperrors.NewValidationError("status", "status de vistoria desconhecido %q", raw)
	}
	return status, nil
}

func (s *VistoriaService) FindVistoria(ctx context.Context, id uint64) (*entities.Vistoria, error) {
	if _, err := s.authorize(ctx, authz.VistoriaView, nil); err != nil {
		return nil, err
	}
	return s.vistoriaRepo.FindByID(ctx, id)
}

func (s *VistoriaService) Agenda(ctx context.Context, from, to time.Time, tecnicoID *uint64) ([]entities.Vistoria, error) {
	if _, err := s.authorize(ctx, authz.VistoriaView, nil); err != nil {
		return nil, err
	}
	from, to = utils.StartOfDay(from), utils.StartOfDay(to).AddDate(0, 0, 1)
	if !to.After(from) {
		return nil, apperrors.NewValidationError("data_fim", "deve ser igual ou posterior a data_inicio")
	}
	return s.vistoriaRepo.Agenda(ctx, from, to, tecnicoID)
}

func (s *VistoriaService) History(ctx context.Context, id uint64) ([]entities.StatusHistory, error) {
	return s.history(ctx, authz.VistoriaView, constants.EntidadeVistoria, id)
}

func (s *VistoriaService) checkArvore(ctx context.Context, id uint64) error {
	if _, err := s.arvoreRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationError("arvore_id", "árvore %d não encontrada", id)
		}
		return err
	}
	return nil
}

// resolveOrigin checks the request or work order the inspection hangs on
// and returns the tree the request points at, if any.
func (s *VistoriaService) resolveOrigin(ctx context.Context, tx pgx.Tx, v *entities.Vistoria) (*uint64, error) {
	var arvoreID *uint64
	if v.RequerimentoID != nil {
		r, err := s.requerimentoRepo.FindByIDForUpdate(ctx, tx, *v.RequerimentoID)
		if err != nil {
			return nil, err
		}
		if r.Status != constants.RequerimentoPendente && r.Status != constants.RequerimentoAprovado {
			return nil, apperrors.NewConflictError("o requerimento %s está %q e não aceita vistorias", r.Numero, r.Status)
		}
		id := r.ArvoreID
		arvoreID = &id
	}
	if v.OrdemServicoID != nil {
		o, err := s.ordemServicoRepo.FindByIDForUpdate(ctx, tx, *v.OrdemServicoID)
		if err != nil {
			return nil, err
		}
		if !o.IsActive() {
			return nil, apperrors.NewConflictError("a ordem de serviço %s está %q e não aceita vistorias", o.Numero, o.Status)
		}
	}
	return arvoreID, nil
}

func (s *VistoriaService) CreateVistoria(ctx context.Context, p dto.CreateVistoriaDTO) (*entities.Vistoria, error) {
	actor, err := s.authorize(ctx, authz.VistoriaCreate, nil)
	if err != nil {
		return nil, err
	}
	if p.RequerimentoID == nil && p.OrdemServicoID == nil {
		return nil, apperrors.NewValidationError("requerimento_id", "informe o requerimento ou a ordem de serviço da vistoria")
	}
	data, err := utils.ParseDate(p.DataVistoria)
	if err != nil {
		return nil, apperrors.NewValidationError("data_vistoria", "%v", err)
	}

	tecnicoID := actor.ID
	if p.TecnicoID != nil {
		tecnicoID = *p.TecnicoID
	}
	if err := s.validateTechnician(ctx, "tecnico_id", tecnicoID); err != nil {
		return nil, err
	}
	if p.ArvoreID != nil {
		if err := s.checkArvore(ctx, *p.ArvoreID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	v := &entities.Vistoria{
		RequerimentoID: p.RequerimentoID,
		OrdemServicoID: p.OrdemServicoID,
		ArvoreID:       p.ArvoreID,
		TecnicoID:      tecnicoID,
		DataVistoria:   data,
		Status:         constants.VistoriaAgendada,
	}
	v.Observacoes = p.Observacoes
	v.CriadoPor = &actor.ID
	v.DataCriacao = now

	var created *entities.StatusHistory
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		arvoreID, err := s.resolveOrigin(ctx, tx, v)
		if err != nil {
			return err
		}
		if v.ArvoreID == nil {
			v.ArvoreID = arvoreID
		}
		id, err := s.vistoriaRepo.CreateInTx(ctx, tx, v)
		if err != nil {
			return err
		}
		v.ID = id
		created, err = s.recordTransition(ctx, tx, constants.EntidadeVistoria, id, "agendar", "", v.Status, nil, actor.ID, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Vistoria agendada", zap.Uint64("id", v.ID), zap.Uint64("tecnicoID", v.TecnicoID))
	s.publishTransitions(ctx, created)
	v.Fotos = []entities.VistoriaFoto{}
	return v, nil
}

func (s *VistoriaService) UpdateVistoria(ctx context.Context, id uint64, p dto.UpdateVistoriaDTO) (*entities.Vistoria, error) {
	current, err := s.vistoriaRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	actor, err := s.authorize(ctx, authz.VistoriaUpdate, current.CriadoPor)
	if err != nil {
		return nil, err
	}
	if p.TecnicoID.Valid {
		if err := s.validateTechnician(ctx, "tecnico_id", p.TecnicoID.Uint64); err != nil {
			return nil, err
		}
	}
	if p.ArvoreID.Valid {
		if err := s.checkArvore(ctx, p.ArvoreID.Uint64); err != nil {
			return nil, err
		}
	}

	var updated *entities.Vistoria
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		v, err := s.vistoriaRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if !v.CanEdit() {
			return apperrors.NewStateError(constants.EntidadeVistoria, "editar", v.Status)
		}
		if p.DataVistoria.Valid {
			d, err := utils.ParseDate(p.DataVistoria.String)
			if err != nil {
				return apperrors.NewValidationError("data_vistoria", "%v", err)
			}
			v.DataVistoria = d
		}
		if p.TecnicoID.Valid {
			v.TecnicoID = p.TecnicoID.Uint64
		}
		if p.ArvoreID.Valid {
			arvoreID := p.ArvoreID.Uint64
			v.ArvoreID = &arvoreID
		}
		if p.Observacoes.Valid {
			v.Observacoes = utils.NilIfEmpty(p.Observacoes.String)
		}
		v.Touch(actor.ID, s.now())
		if err := s.vistoriaRepo.UpdateInTx(ctx, tx, v); err != nil {
			return err
		}
		updated = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// transition locks the inspection, applies fn and records the change.
// extra runs in the same transaction after the row is written.
func (s *VistoriaService) transition(
	ctx context.Context,
	id uint64,
	op authz.Operation,
	acao string,
	comentario *string,
	apply func(v *entities.Vistoria, actorID uint64, now time.Time) error,
	extra func(tx pgx.Tx, v *entities.Vistoria, actorID uint64, now time.Time) error,
) (*entities.Vistoria, error) {
	actor, err := s.authorize(ctx, op, nil)
	if err != nil {
		return nil, err
	}

	var result *entities.Vistoria
	var h *entities.StatusHistory
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		v, err := s.vistoriaRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		anterior := v.Status
		now := s.now()
		if err := apply(v, actor.ID, now); err != nil {
			return err
		}
		if err := s.vistoriaRepo.UpdateStatusInTx(ctx, tx, v); err != nil {
			return err
		}
		if extra != nil {
			if err := extra(tx, v, actor.ID, now); err != nil {
				return err
			}
		}
		h, err = s.recordTransition(ctx, tx, constants.EntidadeVistoria, v.ID, acao, anterior, v.Status, comentario, actor.ID, now)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		s.logger.Warn("Transição de vistoria recusada",
			zap.Uint64("id", id),
			zap.String("acao", acao),
			zap.Error(err),
		)
		return nil, err
	}
	s.publishTransitions(ctx, h)
	return result, nil
}

func (s *VistoriaService) Start(ctx context.Context, id uint64) (*entities.Vistoria, error) {
	return s.transition(ctx, id, authz.VistoriaStart, "iniciar", nil,
		func(v *entities.Vistoria, actorID uint64, now time.Time) error {
			return v.Start(actorID, now)
		}, nil)
}

func (s *VistoriaService) Cancel(ctx context.Context, id uint64, reason *string) (*entities.Vistoria, error) {
	return s.transition(ctx, id, authz.VistoriaCancel, "cancelar", reason,
		func(v *entities.Vistoria, actorID uint64, now time.Time) error {
			return v.Cancel(actorID, reason, now)
		}, nil)
}

func (s *VistoriaService) Reschedule(ctx context.Context, id uint64, p dto.RescheduleVistoriaDTO) (*entities.Vistoria, error) {
	if _, err := s.authorize(ctx, authz.VistoriaReschedule, nil); err != nil {
		return nil, err
	}
	var novaData time.Time
	if strings.TrimSpace(p.NovaData) != "" {
		d, err := utils.ParseDate(p.NovaData)
		if err != nil {
			return nil, apperrors.NewValidationError("nova_data", "%v", err)
		}
		novaData = d
	}
	return s.transition(ctx, id, authz.VistoriaReschedule, "reagendar", p.Motivo,
		func(v *entities.Vistoria, actorID uint64, now time.Time) error {
			return v.Reschedule(actorID, novaData, p.Motivo, now)
		}, nil)
}

func (s *VistoriaService) Execute(ctx context.Context, id uint64, p dto.ExecuteVistoriaDTO, fotos []dto.FotoUpload) (*entities.Vistoria, error) {
	if _, err := s.authorize(ctx, authz.VistoriaExecute, nil); err != nil {
		return nil, err
	}
	if p.EspecieID != nil {
		if _, err := s.especieRepo.FindByID(ctx, *p.EspecieID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewValidationError("especie_id", "espécie %d não encontrada", *p.EspecieID)
			}
			return nil, err
		}
	}

	stored, err := s.storeFotos(fotos)
	if err != nil {
		return nil, err
	}

	findings := entities.VistoriaFindings{
		Observacoes:         p.Observacoes,
		EspecieID:           p.EspecieID,
		Condicoes:           p.Condicoes,
		Conflitos:           p.Conflitos,
		RiscoQueda:          p.RiscoQueda,
		Diagnostico:         p.Diagnostico,
		AcaoRecomendada:     p.AcaoRecomendada,
		TipoPoda:            p.TipoPoda,
		GalhosCortar:        p.GalhosCortar,
		MedidasSeguranca:    p.MedidasSeguranca,
		ObservacoesTecnicas: p.ObservacoesTecnicas,
	}
	_, err = s.transition(ctx, id, authz.VistoriaExecute, "executar", nil,
		func(v *entities.Vistoria, actorID uint64, now time.Time) error {
			return v.Execute(actorID, findings, now)
		},
		func(tx pgx.Tx, v *entities.Vistoria, actorID uint64, now time.Time) error {
			return s.attachFotos(ctx, tx, v, stored, actorID, now)
		})
	if err != nil {
		s.removeStoredFiles(storedURLs(stored))
		return nil, err
	}
	return s.vistoriaRepo.FindByID(ctx, id)
}

// AddFotos attaches photos to an inspection that was not cancelled.
func (s *VistoriaService) AddFotos(ctx context.Context, id uint64, fotos []dto.FotoUpload) (*entities.Vistoria, error) {
	if len(fotos) == 0 {
		return nil, apperrors.NewValidationError("fotos", "envie ao menos um arquivo")
	}
	current, err := s.vistoriaRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	actor, err := s.authorize(ctx, authz.VistoriaUploadFoto, current.CriadoPor)
	if err != nil {
		return nil, err
	}
	if current.Status == constants.VistoriaCancelada {
		return nil, apperrors.NewStateError(constants.EntidadeVistoria, "anexar fotos", current.Status)
	}

	stored, err := s.storeFotos(fotos)
	if err != nil {
		return nil, err
	}
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		v, err := s.vistoriaRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if v.Status == constants.VistoriaCancelada {
			return apperrors.NewStateError(constants.EntidadeVistoria, "anexar fotos", v.Status)
		}
		return s.attachFotos(ctx, tx, v, stored, actor.ID, s.now())
	})
	if err != nil {
		s.removeStoredFiles(storedURLs(stored))
		return nil, err
	}
	s.publishRecordChange(ctx, constants.EntidadeVistoria, id, "fotos")
	return s.vistoriaRepo.FindByID(ctx, id)
}

// DeleteVistoria removes a scheduled or cancelled inspection and its photo files.
func (s *VistoriaService) DeleteVistoria(ctx context.Context, id uint64) error {
	if _, err := s.authorize(ctx, authz.VistoriaDelete, nil); err != nil {
		return err
	}
	var fotos []entities.VistoriaFoto
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		v, err := s.vistoriaRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if v.Status != constants.VistoriaAgendada && v.Status != constants.VistoriaCancelada {
			return apperrors.NewStateError(constants.EntidadeVistoria, "excluir", v.Status)
		}
		fotos, err = s.vistoriaRepo.ListFotos(ctx, id)
		if err != nil {
			return err
		}
		return s.vistoriaRepo.DeleteInTx(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	urls := make([]string, 0, len(fotos))
	for _, f := range fotos {
		urls = append(urls, f.Caminho)
	}
	s.removeStoredFiles(urls)
	s.publishRecordChange(ctx, constants.EntidadeVistoria, id, "excluir")
	return nil
}

type storedFoto struct {
	nome    string
	url     string
	tamanho int64
}

func (s *VistoriaService) storeFotos(fotos []dto.FotoUpload) ([]storedFoto, error) {
	rules := config.UploadContexts[constants.UploadContextVistoriaFoto.String()]
	stored := make([]storedFoto, 0, len(fotos))
	for _, f := range fotos {
		url, err := s.fileStorage.Save(f.Conteudo, f.ArquivoNome, rules.PathPrefix)
		if err != nil {
			s.removeStoredFiles(storedURLs(stored))
			return nil, err
		}
		stored = append(stored, storedFoto{nome: f.ArquivoNome, url: url, tamanho: f.Tamanho})
	}
	return stored, nil
}

func (s *VistoriaService) attachFotos(ctx context.Context, tx pgx.Tx, v *entities.Vistoria, stored []storedFoto, actorID uint64, now time.Time) error {
	for _, f := range stored {
		foto := &entities.VistoriaFoto{
			VistoriaID:  v.ID,
			ArquivoNome: f.nome,
			Caminho:     f.url,
			Tamanho:     f.tamanho,
			CriadoPor:   &actorID,
			DataCriacao: now,
		}
		if err := s.vistoriaRepo.AddFotoInTx(ctx, tx, foto); err != nil {
			return err
		}
		v.Fotos = append(v.Fotos, *foto)
	}
	return nil
}

func storedURLs(stored []storedFoto) []string {
	urls := make([]string, 0, len(stored))
	for _, f := range stored {
		urls = append(urls, f.url)
	}
	return urls
}

func (s *VistoriaService) removeStoredFiles(urls []string) {
	for _, url := range urls {
		if !strings.HasPrefix(url, filestorage.PublicPrefix) {
			continue
		}
		if err := s.fileStorage.Delete(url); err != nil {
			s.logger.Warn("Não foi possível remover o arquivo", zap.String("url", url), zap.Error(err))
		}
	}
}
