package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"semapa/internal/authz"
	"semapa/internal/dto"
	"semapa/internal/repositories"
	"semapa/pkg/constants"
	"semapa/pkg/types"
)

const dashboardListSize = 5

type DashboardServiceInterface interface {
	GetDashboard(ctx context.Context) (*dto.DashboardDTO, error)
}

type DashboardService struct {
	*BaseService
	reg       *repositories.Registry
	cacheRepo repositories.CacheRepositoryInterface
	ttl       time.Duration
}

func NewDashboardService(base *BaseService, reg *repositories.Registry, ttl time.Duration) DashboardServiceInterface {
	return &DashboardService{BaseService: base, reg: reg, cacheRepo: reg.Cache, ttl: ttl}
}

// GetDashboard serves the cached snapshot when present. The snapshot is
// dropped by the dashboard cache listener whenever a record changes.
func (s *DashboardService) GetDashboard(ctx context.Context) (*dto.DashboardDTO, error) {
	if _, err := s.authorize(ctx, authz.DashboardView, nil); err != nil {
		return nil, err
	}

	if s.cacheRepo != nil {
		cached, err := s.cacheRepo.Get(ctx, constants.CacheKeyDashboardStats)
		switch {
		case err == nil:
			var d dto.DashboardDTO
			if jsonErr := json.Unmarshal([]byte(cached), &d); jsonErr == nil {
				return &d, nil
			}
		case !errors.Is(err, repositories.ErrCacheMiss):
			s.logger.Warn("Falha ao ler o cache do painel", zap.Error(err))
		}
	}

	d, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	if s.cacheRepo != nil && s.ttl > 0 {
		if payload, err := json.Marshal(d); err == nil {
			if err := s.cacheRepo.Set(ctx, constants.CacheKeyDashboardStats, payload, s.ttl); err != nil {
				s.logger.Warn("Falha ao gravar o cache do painel", zap.Error(err))
			}
		}
	}
	return d, nil
}

func (s *DashboardService) build(ctx context.Context) (*dto.DashboardDTO, error) {
	countOnly := types.Filter{Limit: 1}
	d := &dto.DashboardDTO{}
	var err error

	if _, d.TotalArvores, err = s.reg.Arvores.List(ctx, countOnly); err != nil {
		return nil, err
	}
	if _, d.TotalEspecies, err = s.reg.Especies.List(ctx, countOnly); err != nil {
		return nil, err
	}
	if _, d.TotalRequerentes, err = s.reg.Requerentes.List(ctx, countOnly); err != nil {
		return nil, err
	}

	if d.RequerimentosPorStatus, err = s.reg.Requerimentos.CountByStatus(ctx); err != nil {
		return nil, err
	}
	for _, n := range d.RequerimentosPorStatus {
		d.TotalRequerimentos += uint64(n)
	}
	if d.OrdensPorStatus, err = s.reg.OrdensServico.CountByStatus(ctx); err != nil {
		return nil, err
	}
	if d.VistoriasPorStatus, err = s.reg.Vistorias.CountByStatus(ctx); err != nil {
		return nil, err
	}

	if d.UltimosRequerimentos, _, err = s.reg.Requerimentos.List(ctx, types.Filter{
		Limit: dashboardListSize,
		Sort:  map[string]string{"data_abertura": "desc"},
	}); err != nil {
		return nil, err
	}

	ordens, _, err := s.reg.OrdensServico.List(ctx, types.Filter{
		Limit:  dashboardListSize,
		Filter: map[string]interface{}{"status": constants.OrdemServicoPendente},
		Sort:   map[string]string{"data_programada": "asc"},
	})
	if err != nil {
		return nil, err
	}
	now := s.now()
	d.OrdensPendentes = make([]dto.OrdemServicoDTO, 0, len(ordens))
	for i := range ordens {
		d.OrdensPendentes = append(d.OrdensPendentes, dto.OrdemServicoDTO{
			OrdemServico: ordens[i],
			DiasAtraso:   ordens[i].DiasAtraso(now),
		})
	}
	return d, nil
}
