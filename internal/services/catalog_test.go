package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"semapa/internal/dto"
	"semapa/internal/entities"
	"semapa/pkg/constants"
	apperrors "semapa/pkg/errors"
	"semapa/pkg/filestorage"
	"semapa/pkg/types"
)

func newArvoreService(t *testing.T, f *fixture) ArvoreServiceInterface {
	t.Helper()
	storage, err := filestorage.NewLocalFileStorage(t.TempDir())
	require.NoError(t, err)
	return NewArvoreService(f.base, f.reg.Arvores, f.reg.Especies, storage)
}

func TestDelete_ReferencedRecordsConflict(t *testing.T) {
	f := newFixture(t)
	arvores := newArvoreService(t, f)
	especies := NewEspecieService(f.base, f.reg.Especies)
	requerentes := NewRequerenteService(f.base, f.reg.Requerentes)

	especieID := f.store.AddEspecie(entities.Especie{NomePopular: "Sibipiruna", NomeCientifico: "Cenostigma pluviosum", Porte: constants.PorteMedio})
	arvoreComEspecie := f.store.AddArvore(entities.Arvore{Endereco: "Praça Central", EspecieID: &especieID})
	f.newRequerimento(t, f.usuarioID)

	assert.ErrorIs(t, arvores.DeleteArvore(f.as(f.adminID), f.arvoreID), apperrors.ErrConflict)
	assert.ErrorIs(t, requerentes.DeleteRequerente(f.as(f.adminID), f.requerenteID), apperrors.ErrConflict)
	assert.ErrorIs(t, especies.DeleteEspecie(f.as(f.adminID), especieID), apperrors.ErrConflict)

	require.NoError(t, arvores.DeleteArvore(f.as(f.adminID), arvoreComEspecie))
	require.NoError(t, especies.DeleteEspecie(f.as(f.adminID), especieID))
}

func TestDelete_UnreferencedRecordsSucceed(t *testing.T) {
	f := newFixture(t)
	arvores := newArvoreService(t, f)
	requerentes := NewRequerenteService(f.base, f.reg.Requerentes)

	require.NoError(t, arvores.DeleteArvore(f.as(f.adminID), f.arvoreID))
	require.NoError(t, requerentes.DeleteRequerente(f.as(f.adminID), f.requerenteID))

	_, err := arvores.FindArvore(f.as(f.usuarioID), f.arvoreID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDelete_RequiresAdmin(t *testing.T) {
	f := newFixture(t)
	arvores := newArvoreService(t, f)

	err := arvores.DeleteArvore(f.as(f.tecnicoID), f.arvoreID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestArvore_MapaUsesGeoJSONOrder(t *testing.T) {
	f := newFixture(t)
	lat, lng := -22.9, -47.06
	f.store.AddArvore(entities.Arvore{Endereco: "Av. Brasil, 500", Latitude: &lat, Longitude: &lng})

	mapa, err := newArvoreService(t, f).Mapa(f.as(f.usuarioID), types.Filter{})
	require.NoError(t, err)
	assert.Equal(t, "FeatureCollection", mapa.Type)
	require.Len(t, mapa.Features, 1)
	assert.Equal(t, []float64{lng, lat}, mapa.Features[0].Geometry.Coordinates)
}

func catalogueWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	wb := excelize.NewFile()
	defer wb.Close()
	sheet := wb.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow(sheet, cell, &row))
	}
	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestEspecie_ImportCatalogue(t *testing.T) {
	f := newFixture(t)
	especies := NewEspecieService(f.base, f.reg.Especies)
	f.store.AddEspecie(entities.Especie{NomePopular: "Ipê-roxo", NomeCientifico: "Handroanthus impetiginosus", Porte: constants.PorteGrande})

	file := catalogueWorkbook(t, [][]interface{}{
		{"Catálogo municipal de arborização"},
		{"Nome popular", "Nome científico", "Porte", "Altura mínima", "Altura máxima", "Fruto comestível"},
		{"Pitangueira", "Eugenia uniflora", "Pequeno", "2", "4,5", "Sim"},
		{"Ipê-roxo", "Handroanthus impetiginosus", "Grande", "", "", ""},
		{"Quaresmeira", "Pleroma granulosum", "Enorme", "", "", ""},
		{"Jacarandá", "Jacaranda mimosifolia", "Médio", "10", "5", ""},
	})

	_, err := especies.ImportEspecies(f.as(f.tecnicoID), bytes.NewReader(file.Bytes()))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	result, err := especies.ImportEspecies(f.as(f.adminID), file)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Criadas)
	assert.Equal(t, 1, result.Ignoradas)
	require.Len(t, result.Erros, 2)
	assert.True(t, strings.HasPrefix(result.Erros[0], "linha 5:"))
	assert.True(t, strings.HasPrefix(result.Erros[1], "linha 6:"))

	list, _, err := especies.GetEspecies(f.as(f.usuarioID), types.Filter{})
	require.NoError(t, err)
	var pitangueira *dto.EspecieDTO
	for i := range list {
		if list[i].NomePopular == "Pitangueira" {
			pitangueira = &list[i]
		}
	}
	require.NotNil(t, pitangueira)
	assert.Equal(t, constants.PortePequeno, pitangueira.Porte)
	require.NotNil(t, pitangueira.AlturaMax)
	assert.Equal(t, 4.5, *pitangueira.AlturaMax)
	require.NotNil(t, pitangueira.FrutoComestivel)
	assert.True(t, *pitangueira.FrutoComestivel)
}

func TestEspecie_ImportRejectsWorkbookWithoutHeader(t *testing.T) {
	f := newFixture(t)
	especies := NewEspecieService(f.base, f.reg.Especies)
	file := catalogueWorkbook(t, [][]interface{}{{"qualquer", "coisa"}})

	_, err := especies.ImportEspecies(f.as(f.adminID), file)
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "arquivo", vErr.Field)
}
