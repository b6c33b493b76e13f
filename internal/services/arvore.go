package services

import (
	"context"
	"errors"
	"strings"

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

const entidadeArvore = "arvore"

type ArvoreServiceInterface interface {
	GetArvores(ctx context.Context, filter types.Filter) ([]entities.Arvore, uint64, error)
	FindArvore(ctx context.Context, id uint64) (*entities.Arvore, error)
	CreateArvore(ctx context.Context, payload dto.CreateArvoreDTO) (*entities.Arvore, error)
	UpdateArvore(ctx context.Context, id uint64, payload dto.UpdateArvoreDTO) (*entities.Arvore, error)
	DeleteArvore(ctx context.Context, id uint64) error
	UploadFoto(ctx context.Context, id uint64, upload dto.FotoUpload) (*entities.Arvore, error)
	// Mapa returns geolocated trees matching filter as a GeoJSON FeatureCollection.
	Mapa(ctx context.Context, filter types.Filter) (*dto.ArvoreMapaDTO, error)
}

type ArvoreService struct {
	*BaseService
	arvoreRepo  repositories.ArvoreRepositoryInterface
	especieRepo repositories.EspecieRepositoryInterface
	fileStorage filestorage.FileStorageInterface
}

func NewArvoreService(
	base *BaseService,
	arvoreRepo repositories.ArvoreRepositoryInterface,
	especieRepo repositories.EspecieRepositoryInterface,
	fileStorage filestorage.FileStorageInterface,
) ArvoreServiceInterface {
	return &ArvoreService{
		BaseService: base,
		arvoreRepo:  arvoreRepo,
		especieRepo: especieRepo,
		fileStorage: fileStorage,
	}
}

func (s *ArvoreService) GetArvores(ctx context.Context, filter types.Filter) ([]entities.Arvore, uint64, error) {
	if _, err := s.authorize(ctx, authz.ArvoreView, nil); err != nil {
		return nil, 0, err
	}
	return s.arvoreRepo.List(ctx, filter)
}

func (s *ArvoreService) FindArvore(ctx context.Context, id uint64) (*entities.Arvore, error) {
	if _, err := s.authorize(ctx, authz.ArvoreView, nil); err != nil {
		return nil, err
	}
	return s.arvoreRepo.FindByID(ctx, id)
}

func (s *ArvoreService) checkEspecie(ctx context.Context, id *uint64) error {
	if id == nil {
		return nil
	}
	if _, err := s.especieRepo.FindByID(ctx, *id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationError("especie_id", "espécie %d não encontrada", *id)
		}
		return err
	}
	return nil
}

// checkCoordinates requires latitude and longitude to be set together.
func checkCoordinates(a *entities.Arvore) error {
	if (a.Latitude == nil) != (a.Longitude == nil) {
		return apperrors.NewValidationError("latitude", "latitude e longitude devem ser informadas juntas")
	}
	if a.Latitude != nil && (*a.Latitude < -90 || *a.Latitude > 90) {
		return apperrors.NewValidationError("latitude", "deve estar entre -90 e 90")
	}
	if a.Longitude != nil && (*a.Longitude < -180 || *a.Longitude > 180) {
		return apperrors.NewValidationError("longitude", "deve estar entre -180 e 180")
	}
	return nil
}

func (s *ArvoreService) CreateArvore(ctx context.Context, p dto.CreateArvoreDTO) (*entities.Arvore, error) {
	actor, err := s.authorize(ctx, authz.ArvoreCreate, nil)
	if err != nil {
		return nil, err
	}
	a := &entities.Arvore{
		Endereco:   strings.TrimSpace(p.Endereco),
		Bairro:     p.Bairro,
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
		Altura:     p.Altura,
		DAP:        p.DAP,
		Foto:       p.Foto,
		Observacao: p.Observacao,
		EspecieID:  p.EspecieID,
	}
	if p.DataPlantio != nil && *p.DataPlantio != "" {
		d, err := utils.ParseDate(*p.DataPlantio)
		if err != nil {
			return nil, apperrors.NewValidationError("data_plantio", "%v", err)
		}
		a.DataPlantio = &d
	}
	if err := checkCoordinates(a); err != nil {
		return nil, err
	}
	if err := s.checkEspecie(ctx, a.EspecieID); err != nil {
		return nil, err
	}
	a.CriadoPor = &actor.ID
	a.DataCriacao = s.now()

	id, err := s.arvoreRepo.Create(ctx, a)
	if err != nil {
		s.logger.Error("Erro ao criar árvore", zap.Error(err))
		return nil, err
	}
	s.publishRecordChange(ctx, entidadeArvore, id, "criar")
	return s.arvoreRepo.FindByID(ctx, id)
}

func (s *ArvoreService) UpdateArvore(ctx context.Context, id uint64, p dto.UpdateArvoreDTO) (*entities.Arvore, error) {
	actor, err := s.authorize(ctx, authz.ArvoreUpdate, nil)
	if err != nil {
		return nil, err
	}
	a, err := s.arvoreRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Endereco.Valid {
		a.Endereco = strings.TrimSpace(p.Endereco.String)
	}
	if p.Bairro.Valid {
		a.Bairro = utils.NilIfEmpty(p.Bairro.String)
	}
	if p.Latitude.Valid {
		a.Latitude = &p.Latitude.Float64
	}
	if p.Longitude.Valid {
		a.Longitude = &p.Longitude.Float64
	}
	if p.DataPlantio.Valid {
		if p.DataPlantio.String == "" {
			a.DataPlantio = nil
		} else {
			d, err := utils.ParseDate(p.DataPlantio.String)
			if err != nil {
				return nil, apperrors.NewValidationError("data_plantio", "%v", err)
			}
			a.DataPlantio = &d
		}
	}
	if p.Altura.Valid {
		a.Altura = &p.Altura.Float64
	}
	if p.DAP.Valid {
		a.DAP = &p.DAP.Float64
	}
	if p.Foto.Valid {
		a.Foto = utils.NilIfEmpty(p.Foto.String)
	}
	if p.Observacao.Valid {
		a.Observacao = utils.NilIfEmpty(p.Observacao.String)
	}
	if p.EspecieID.Valid {
		a.EspecieID = &p.EspecieID.Uint64
	}
	if a.Endereco == "" {
		return nil, apperrors.NewValidationError("endereco", "é obrigatório")
	}
	if err := checkCoordinates(a); err != nil {
		return nil, err
	}
	if err := s.checkEspecie(ctx, a.EspecieID); err != nil {
		return nil, err
	}
	a.Touch(actor.ID, s.now())

	if err := s.arvoreRepo.Update(ctx, a); err != nil {
		return nil, err
	}
	s.publishRecordChange(ctx, entidadeArvore, id, "editar")
	return a, nil
}

// DeleteArvore refuses while requests or inspections reference the tree.
func (s *ArvoreService) DeleteArvore(ctx context.Context, id uint64) error {
	if _, err := s.authorize(ctx, authz.ArvoreDelete, nil); err != nil {
		return err
	}
	a, err := s.arvoreRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	requerimentos, err := s.arvoreRepo.CountRequerimentos(ctx, id)
	if err != nil {
		return err
	}
	vistorias, err := s.arvoreRepo.CountVistorias(ctx, id)
	if err != nil {
		return err
	}
	if requerimentos > 0 || vistorias > 0 {
		return apperrors.NewConflictError("a árvore %d possui %d requerimento(s) e %d vistoria(s) vinculados", id, requerimentos, vistorias)
	}
	if err := s.arvoreRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeStoredFile(a.Foto)
	s.publishRecordChange(ctx, entidadeArvore, id, "excluir")
	return nil
}

func (s *ArvoreService) UploadFoto(ctx context.Context, id uint64, upload dto.FotoUpload) (*entities.Arvore, error) {
	actor, err := s.authorize(ctx, authz.ArvoreUpdate, nil)
	if err != nil {
		return nil, err
	}
	a, err := s.arvoreRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rules := config.UploadContexts[constants.UploadContextArvoreFoto.String()]
	url, err := s.fileStorage.Save(upload.Conteudo, upload.ArquivoNome, rules.PathPrefix)
	if err != nil {
		return nil, err
	}
	previous := a.Foto
	a.Foto = &url
	a.Touch(actor.ID, s.now())
	if err := s.arvoreRepo.Update(ctx, a); err != nil {
		s.removeStoredFile(&url)
		return nil, err
	}
	s.removeStoredFile(previous)
	return a, nil
}

// removeStoredFile deletes files this service stored; external links are left alone.
func (s *ArvoreService) removeStoredFile(url *string) {
	if url == nil || !strings.HasPrefix(*url, filestorage.PublicPrefix) {
		return
	}
	if err := s.fileStorage.Delete(*url); err != nil {
		s.logger.Warn("Não foi possível remover o arquivo", zap.String("url", *url), zap.Error(err))
	}
}

func (s *ArvoreService) Mapa(ctx context.Context, filter types.Filter) (*dto.ArvoreMapaDTO, error) {
	if _, err := s.authorize(ctx, authz.ArvoreView, nil); err != nil {
		return nil, err
	}
	if filter.Filter == nil {
		filter.Filter = make(map[string]interface{})
	}
	filter.Filter["geolocalizada"] = "true"
	filter.Limit, filter.Offset = 0, 0

	arvores, _, err := s.arvoreRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	mapa := &dto.ArvoreMapaDTO{Type: "FeatureCollection", Features: make([]dto.ArvoreFeatureDTO, 0, len(arvores))}
	for _, a := range arvores {
		if !a.HasCoordinates() {
			continue
		}
		mapa.Features = append(mapa.Features, dto.ArvoreFeatureDTO{
			Type: "Feature",
			// GeoJSON orders coordinates as [longitude, latitude]
			Geometry: dto.GeometryDTO{Type: "Point", Coordinates: []float64{*a.Longitude, *a.Latitude}},
			Properties: map[string]interface{}{
				"id":         a.ID,
				"endereco":   a.Endereco,
				"bairro":     a.Bairro,
				"especie_id": a.EspecieID,
				"altura":     a.Altura,
				"foto":       a.Foto,
			},
		})
	}
	return mapa, nil
}
