package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semapa/internal/entities"
	"semapa/pkg/constants"
	apperrors "semapa/pkg/errors"
	"semapa/pkg/types"
)

func TestDashboard_CountsAndCaches(t *testing.T) {
	f := newFixture(t)
	svc := NewDashboardService(f.base, f.reg, time.Minute)

	approved := f.approvedRequerimento(t)
	f.newRequerimento(t, f.usuarioID)
	f.newOrdem(t, approved.ID)

	d, err := svc.GetDashboard(f.as(f.usuarioID))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), d.TotalArvores)
	assert.Equal(t, uint64(1), d.TotalRequerentes)
	assert.Equal(t, uint64(2), d.TotalRequerimentos)
	assert.Equal(t, int64(1), d.RequerimentosPorStatus[constants.RequerimentoPendente])
	assert.Equal(t, int64(1), d.RequerimentosPorStatus[constants.RequerimentoAprovado])
	assert.Equal(t, int64(1), d.OrdensPorStatus[constants.OrdemServicoPendente])
	assert.Len(t, d.UltimosRequerimentos, 2)
	assert.Len(t, d.OrdensPendentes, 1)

	_, cached := f.store.CacheValue(constants.CacheKeyDashboardStats)
	assert.True(t, cached)

	// served from cache until something invalidates it
	f.newRequerimento(t, f.usuarioID)
	again, err := svc.GetDashboard(f.as(f.usuarioID))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), again.TotalRequerimentos)

	require.NoError(t, f.reg.Cache.Del(f.as(0), constants.CacheKeyDashboardStats))
	fresh, err := svc.GetDashboard(f.as(f.usuarioID))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), fresh.TotalRequerimentos)
}

func TestReport_Especies(t *testing.T) {
	f := newFixture(t)
	reports := NewReportService(f.base, f.reg)

	ipe := f.store.AddEspecie(entities.Especie{NomePopular: "Ipê", Porte: constants.PorteGrande})
	pitanga := f.store.AddEspecie(entities.Especie{NomePopular: "Pitanga", Porte: constants.PortePequeno})
	f.store.AddEspecie(entities.Especie{NomePopular: "Manacá", Porte: constants.PortePequeno})
	for i := 0; i < 3; i++ {
		f.store.AddArvore(entities.Arvore{Endereco: "Rua X", EspecieID: &ipe})
	}
	f.store.AddArvore(entities.Arvore{Endereco: "Rua Y", EspecieID: &pitanga})

	_, err := reports.Especies(f.as(f.usuarioID))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	report, err := reports.Especies(f.as(f.tecnicoID))
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalEspecies)
	assert.Equal(t, 2, report.ComArvores)
	assert.Equal(t, 1, report.SemArvores)
	require.Len(t, report.TopEspecies, 2)
	assert.Equal(t, "Ipê", report.TopEspecies[0].NomePopular)
	assert.Equal(t, int64(3), report.TopEspecies[0].TotalArvores)
	assert.Equal(t, 2, report.PorPorte[constants.PortePequeno])
	assert.Equal(t, int64(3), report.ArvoresPorPorte[constants.PorteGrande])
}

func TestReport_ListsIgnorePagination(t *testing.T) {
	f := newFixture(t)
	reports := NewReportService(f.base, f.reg)
	for i := 0; i < 4; i++ {
		f.newRequerimento(t, f.usuarioID)
	}

	items, err := reports.Requerimentos(f.as(f.tecnicoID), types.Filter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, items, 4)

	aprovados, err := reports.Requerimentos(f.as(f.tecnicoID), types.Filter{
		Filter: map[string]interface{}{"status": constants.RequerimentoAprovado},
	})
	require.NoError(t, err)
	assert.Empty(t, aprovados)
}
