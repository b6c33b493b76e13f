package services

import (
	"context"
	"sort"

	"semapa/internal/authz"
	"semapa/internal/dto"
	"semapa/internal/entities"
	"semapa/internal/repositories"
	"semapa/pkg/types"
)

const topEspeciesSize = 10

type ReportServiceInterface interface {
	Requerimentos(ctx context.Context, filter types.Filter) ([]entities.Requerimento, error)
	OrdensServico(ctx context.Context, filter types.Filter) ([]dto.OrdemServicoDTO, error)
	Vistorias(ctx context.Context, filter types.Filter) ([]entities.Vistoria, error)
	Especies(ctx context.Context) (*dto.EspecieReportDTO, error)
}

type ReportService struct {
	*BaseService
	reg *repositories.Registry
}

func NewReportService(base *BaseService, reg *repositories.Registry) ReportServiceInterface {
	return &ReportService{BaseService: base, reg: reg}
}

// unpaged drops pagination; reports always cover the whole filtered set.
func unpaged(filter types.Filter) types.Filter {
	filter.Limit, filter.Offset, filter.Page = 0, 0, 0
	return filter
}

func (s *ReportService) Requerimentos(ctx context.Context, filter types.Filter) ([]entities.Requerimento, error) {
	if _, err := s.authorize(ctx, authz.ReportView, nil); err != nil {
		return nil, err
	}
	items, _, err := s.reg.Requerimentos.List(ctx, unpaged(filter))
	return items, err
}

func (s *ReportService) OrdensServico(ctx context.Context, filter types.Filter) ([]dto.OrdemServicoDTO, error) {
	if _, err := s.authorize(ctx, authz.ReportView, nil); err != nil {
		return nil, err
	}
	ordens, _, err := s.reg.OrdensServico.List(ctx, unpaged(filter))
	if err != nil {
		return nil, err
	}
	now := s.now()
	result := make([]dto.OrdemServicoDTO, 0, len(ordens))
	for i := range ordens {
		result = append(result, dto.OrdemServicoDTO{OrdemServico: ordens[i], DiasAtraso: ordens[i].DiasAtraso(now)})
	}
	return result, nil
}

func (s *ReportService) Vistorias(ctx context.Context, filter types.Filter) ([]entities.Vistoria, error) {
	if _, err := s.authorize(ctx, authz.ReportView, nil); err != nil {
		return nil, err
	}
	filter, err := normalizeVistoriaFilter(filter)
	if err != nil {
		return nil, err
	}
	items, _, err := s.reg.Vistorias.List(ctx, unpaged(filter))
	return items, err
}

func (s *ReportService) Especies(ctx context.Context) (*dto.EspecieReportDTO, error) {
	if _, err := s.authorize(ctx, authz.ReportView, nil); err != nil {
		return nil, err
	}
	especies, _, err := s.reg.Especies.List(ctx, types.Filter{})
	if err != nil {
		return nil, err
	}
	counts, err := s.reg.Especies.ArvoresPorEspecie(ctx)
	if err != nil {
		return nil, err
	}

	report := &dto.EspecieReportDTO{
		TotalEspecies:   len(especies),
		TopEspecies:     []dto.EspecieCountDTO{},
		PorPorte:        make(map[string]int),
		ArvoresPorPorte: make(map[string]int64),
	}
	for _, e := range especies {
		n := counts[e.ID]
		if n > 0 {
			report.ComArvores++
			report.TopEspecies = append(report.TopEspecies, dto.EspecieCountDTO{
				ID:           e.ID,
				NomePopular:  e.NomePopular,
				TotalArvores: n,
			})
		} else {
			report.SemArvores++
		}
		report.PorPorte[e.Porte]++
		report.ArvoresPorPorte[e.Porte] += n
	}

	sort.SliceStable(report.TopEspecies, func(i, j int) bool {
		a, b := report.TopEspecies[i], report.TopEspecies[j]
		if a.TotalArvores != b.TotalArvores {
			return a.TotalArvores > b.TotalArvores
		}
		return a.NomePopular < b.NomePopular
	})
	if len(report.TopEspecies) > topEspeciesSize {
		report.TopEspecies = report.TopEspecies[:topEspeciesSize]
	}
	return report, nil
}
