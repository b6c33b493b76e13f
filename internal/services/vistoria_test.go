package services

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semapa/internal/dto"
	"semapa/internal/entities"
	"semapa/pkg/constants"
	apperrors "semapa/pkg/errors"
	"semapa/pkg/filestorage"
	"semapa/pkg/types"
)

func newVistoriaService(t *testing.T, f *fixture) (VistoriaServiceInterface, string) {
	t.Helper()
	dir := t.TempDir()
	storage, err := filestorage.NewLocalFileStorage(dir)
	require.NoError(t, err)
	return NewVistoriaService(f.base, f.reg, storage), dir
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

func foto(name, content string) dto.FotoUpload {
	return dto.FotoUpload{ArquivoNome: name, Tamanho: int64(len(content)), Conteudo: strings.NewReader(content)}
}

func TestVistoria_CreateRequiresOrigin(t *testing.T) {
	f := newFixture(t)
	svc, _ := newVistoriaService(t, f)

	_, err := svc.CreateVistoria(f.as(f.tecnicoID), dto.CreateVistoriaDTO{DataVistoria: "2024-03-10"})
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "requerimento_id", vErr.Field)
}

func TestVistoria_CreateFromRequerimento(t *testing.T) {
	f := newFixture(t)
	svc, _ := newVistoriaService(t, f)
	r := f.newRequerimento(t, f.usuarioID)

	v, err := svc.CreateVistoria(f.as(f.tecnicoID), dto.CreateVistoriaDTO{
		RequerimentoID: &r.ID,
		DataVistoria:   "2024-03-10",
	})
	require.NoError(t, err)

	assert.Equal(t, constants.VistoriaAgendada, v.Status)
	assert.Equal(t, f.tecnicoID, v.TecnicoID)
	require.NotNil(t, v.ArvoreID)
	assert.Equal(t, f.arvoreID, *v.ArvoreID)
	assert.Equal(t, time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), v.DataVistoria)

	history, err := svc.History(f.as(f.usuarioID), v.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "agendar", history[0].Acao)
}

func TestVistoria_CreateRejectsClosedOrigins(t *testing.T) {
	f := newFixture(t)
	svc, _ := newVistoriaService(t, f)

	r := f.newRequerimento(t, f.usuarioID)
	_, err := f.requerimentos().Reject(f.as(f.adminID), r.ID, "fora do perímetro")
	require.NoError(t, err)
	_, err = svc.CreateVistoria(f.as(f.tecnicoID), dto.CreateVistoriaDTO{RequerimentoID: &r.ID, DataVistoria: "2024-03-10"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	o := f.newOrdem(t, f.approvedRequerimento(t).ID)
	_, err = f.ordens().Cancel(f.as(f.adminID), o.ID, "duplicada")
	require.NoError(t, err)
	_, err = svc.CreateVistoria(f.as(f.tecnicoID), dto.CreateVistoriaDTO{OrdemServicoID: &o.ID, DataVistoria: "2024-03-10"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestVistoria_CreateValidatesTechnicianAndLevel(t *testing.T) {
	f := newFixture(t)
	svc, _ := newVistoriaService(t, f)
	r := f.newRequerimento(t, f.usuarioID)

	_, err := svc.CreateVistoria(f.as(f.usuarioID), dto.CreateVistoriaDTO{RequerimentoID: &r.ID, DataVistoria: "2024-03-10"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.CreateVistoria(f.as(f.tecnicoID), dto.CreateVistoriaDTO{
		RequerimentoID: &r.ID,
		TecnicoID:      &f.usuarioID,
		DataVistoria:   "2024-03-10",
	})
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "tecnico_id", vErr.Field)
}

func TestVistoria_ListedUnderOrdemServico(t *testing.T) {
	f := newFixture(t)
	svc, _ := newVistoriaService(t, f)
	o := f.newOrdem(t, f.approvedRequerimento(t).ID)

	_, err := svc.CreateVistoria(f.as(f.tecnicoID), dto.CreateVistoriaDTO{OrdemServicoID: &o.ID, DataVistoria: "2024-03-12"})
	require.NoError(t, err)

	vistorias, err := f.ordens().GetVistorias(f.as(f.usuarioID), o.ID)
	require.NoError(t, err)
	require.Len(t, vistorias, 1)
	assert.Nil(t, vistorias[0].RequerimentoID)
}

func TestVistoria_ExecuteStoresFindingsAndPhotos(t *testing.T) {
	f := newFixture(t)
	svc, dir := newVistoriaService(t, f)
	r := f.newRequerimento(t, f.usuarioID)
	especieID := f.store.AddEspecie(entities.Especie{NomePopular: "Ipê-amarelo", NomeCientifico: "Handroanthus albus", Porte: constants.PorteGrande})

	v, err := svc.CreateVistoria(f.as(f.tecnicoID), dto.CreateVistoriaDTO{RequerimentoID: &r.ID, DataVistoria: "2024-03-10"})
	require.NoError(t, err)

	risco := constants.RiscoAlto
	done, err := svc.Execute(f.as(f.tecnicoID), v.ID, dto.ExecuteVistoriaDTO{
		EspecieID:  &especieID,
		RiscoQueda: &risco,
	}, []dto.FotoUpload{foto("copa.jpg", "jpeg-bytes")})
	require.NoError(t, err)

	assert.Equal(t, constants.VistoriaConcluida, done.Status)
	assert.NotNil(t, done.DataExecucao)
	assert.NotNil(t, done.DataInicio)
	require.NotNil(t, done.RiscoQueda)
	assert.Equal(t, constants.RiscoAlto, *done.RiscoQueda)
	require.Len(t, done.Fotos, 1)
	assert.Equal(t, "copa.jpg", done.Fotos[0].ArquivoNome)
	assert.True(t, strings.HasPrefix(done.Fotos[0].Caminho, filestorage.PublicPrefix+"vistorias/"))
	assert.Equal(t, 1, countFiles(t, dir))

	_, err = svc.Reschedule(f.as(f.tecnicoID), v.ID, dto.RescheduleVistoriaDTO{NovaData: "2024-04-01"})
	var sErr *apperrors.StateError
	assert.ErrorAs(t, err, &sErr)
}

func TestVistoria_ExecuteFailureRemovesStoredPhotos(t *testing.T) {
	f := newFixture(t)
	svc, dir := newVistoriaService(t, f)
	r := f.newRequerimento(t, f.usuarioID)
	v, err := svc.CreateVistoria(f.as(f.tecnicoID), dto.CreateVistoriaDTO{RequerimentoID: &r.ID, DataVistoria: "2024-03-10"})
	require.NoError(t, err)

	f.store.FailOn("Vistorias.AddFotoInTx", errors.New("disco cheio"))
	_, err = svc.Execute(f.as(f.tecnicoID), v.ID, dto.ExecuteVistoriaDTO{}, []dto.FotoUpload{
		foto("a.jpg", "a"),
		foto("b.png", "b"),
	})
	require.Error(t, err)

	assert.Equal(t, 0, countFiles(t, dir))
	stored, _ := f.store.Vistoria(v.ID)
	assert.Equal(t, constants.VistoriaAgendada, stored.Status)
}

func TestVistoria_Lifecycle(t *testing.T) {
	f := newFixture(t)
	svc, _ := newVistoriaService(t, f)
	r := f.newRequerimento(t, f.usuarioID)
	v, err := svc.CreateVistoria(f.as(f.tecnicoID), dto.CreateVistoriaDTO{RequerimentoID: &r.ID, DataVistoria: "2024-03-10"})
	require.NoError(t, err)

	started, err := svc.Start(f.as(f.tecnicoID), v.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.VistoriaEmAndamento, started.Status)

	_, err = svc.Reschedule(f.as(f.tecnicoID), v.ID, dto.RescheduleVistoriaDTO{})
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)

	motivo := "tempestade"
	rescheduled, err := svc.Reschedule(f.as(f.tecnicoID), v.ID, dto.RescheduleVistoriaDTO{NovaData: "2024-03-15", Motivo: &motivo})
	require.NoError(t, err)
	assert.Equal(t, constants.VistoriaAgendada, rescheduled.Status)
	assert.Nil(t, rescheduled.DataInicio)
	assert.Equal(t, 15, rescheduled.DataVistoria.Day())

	cancelled, err := svc.Cancel(f.as(f.tecnicoID), v.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, constants.VistoriaCancelada, cancelled.Status)

	_, err = svc.Start(f.as(f.tecnicoID), v.ID)
	var sErr *apperrors.StateError
	require.ErrorAs(t, err, &sErr)
	stored, _ := f.store.Vistoria(v.ID)
	assert.Equal(t, constants.VistoriaCancelada, stored.Status)

	history, err := svc.History(f.as(f.usuarioID), v.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"agendar", "iniciar", "reagendar", "cancelar"}, acoes(history))
}

func TestVistoria_UpdateOwnerRule(t *testing.T) {
	f := newFixture(t)
	svc, _ := newVistoriaService(t, f)
	r := f.newRequerimento(t, f.usuarioID)
	v, err := svc.CreateVistoria(f.as(f.tecnicoID), dto.CreateVistoriaDTO{RequerimentoID: &r.ID, DataVistoria: "2024-03-10"})
	require.NoError(t, err)

	_, err = svc.UpdateVistoria(f.as(f.usuarioID), v.ID, dto.UpdateVistoriaDTO{Observacoes: null.StringFrom("x")})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	updated, err := svc.UpdateVistoria(f.as(f.tecnicoID), v.ID, dto.UpdateVistoriaDTO{
		DataVistoria: null.StringFrom("2024-03-11"),
		Observacoes:  null.StringFrom("acesso pelo portão lateral"),
	})
	require.NoError(t, err)
	assert.Equal(t, 11, updated.DataVistoria.Day())
	require.NotNil(t, updated.Observacoes)
}

func TestVistoria_AgendaAndDelete(t *testing.T) {
	f := newFixture(t)
	svc, _ := newVistoriaService(t, f)
	r := f.newRequerimento(t, f.usuarioID)

	for _, day := range []string{"2024-03-09", "2024-03-10", "2024-03-20"} {
		_, err := svc.CreateVistoria(f.as(f.tecnicoID), dto.CreateVistoriaDTO{RequerimentoID: &r.ID, DataVistoria: day})
		require.NoError(t, err)
	}

	from := time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	agenda, err := svc.Agenda(f.as(f.usuarioID), from, to, &f.tecnicoID)
	require.NoError(t, err)
	require.Len(t, agenda, 2)

	_, err = svc.Agenda(f.as(f.usuarioID), to, from, nil)
	var vErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &vErr)

	err = svc.DeleteVistoria(f.as(f.tecnicoID), agenda[0].ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	require.NoError(t, svc.DeleteVistoria(f.as(f.adminID), agenda[0].ID))
	_, ok := f.store.Vistoria(agenda[0].ID)
	assert.False(t, ok)
}

func TestVistoria_ListAcceptsLegacyStatusLabels(t *testing.T) {
	f := newFixture(t)
	svc, _ := newVistoriaService(t, f)
	r := f.newRequerimento(t, f.usuarioID)
	_, err := svc.CreateVistoria(f.as(f.tecnicoID), dto.CreateVistoriaDTO{RequerimentoID: &r.ID, DataVistoria: "2024-03-10"})
	require.NoError(t, err)

	list, total, err := svc.GetVistorias(f.as(f.usuarioID), types.Filter{Filter: map[string]interface{}{"status": "Pendente"}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)

	list, _, err = svc.GetVistorias(f.as(f.usuarioID), types.Filter{Filter: map[string]interface{}{"status": "Finalizada"}})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, _, err = svc.GetVistorias(f.as(f.usuarioID), types.Filter{Filter: map[string]interface{}{"status": "arquivada"}})
	var vErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestVistoria_RescheduleChecksPermissionFirst(t *testing.T) {
	f := newFixture(t)
	svc, _ := newVistoriaService(t, f)
	r := f.newRequerimento(t, f.usuarioID)
	v, err := svc.CreateVistoria(f.as(f.tecnicoID), dto.CreateVistoriaDTO{RequerimentoID: &r.ID, DataVistoria: "2024-03-10"})
	require.NoError(t, err)

	_, err = svc.Reschedule(f.as(f.usuarioID), v.ID, dto.RescheduleVistoriaDTO{NovaData: "não é data"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestVistoria_ListNormalizesEveryStatusInAList(t *testing.T) {
	f := newFixture(t)
	svc, _ := newVistoriaService(t, f)
	r := f.newRequerimento(t, f.usuarioID)
	_, err := svc.CreateVistoria(f.as(f.tecnicoID), dto.CreateVistoriaDTO{RequerimentoID: &r.ID, DataVistoria: "2024-03-10"})
	require.NoError(t, err)

	list, total, err := svc.GetVistorias(f.as(f.usuarioID), types.Filter{Filter: map[string]interface{}{"status": []string{"Finalizada", "Pendente"}}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)

	_, _, err = svc.GetVistorias(f.as(f.usuarioID), types.Filter{Filter: map[string]interface{}{"status": []string{"agendada", "arquivada"}}})
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "status", vErr.Field)

	original := types.Filter{Filter: map[string]interface{}{"status": []string{"Pendente", "Finalizada"}}}
	normalized, err := normalizeVistoriaFilter(original)
	require.NoError(t, err)
	assert.Equal(t, []string{constants.VistoriaAgendada, constants.VistoriaConcluida}, normalized.Filter["status"])
	assert.Equal(t, []string{"Pendente", "Finalizada"}, original.Filter["status"])
}
