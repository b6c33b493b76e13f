package services

import (
	"errors"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semapa/internal/dto"
	"semapa/internal/entities"
	"semapa/pkg/constants"
	apperrors "semapa/pkg/errors"
)

func TestRequerimento_CreateNumbersAndRecordsHistory(t *testing.T) {
	f := newFixture(t)

	first := f.newRequerimento(t, f.usuarioID)
	second := f.newRequerimento(t, f.usuarioID)

	assert.Equal(t, "REQ/2024/0001", first.Numero)
	assert.Equal(t, "REQ/2024/0002", second.Numero)
	assert.Equal(t, constants.RequerimentoPendente, first.Status)
	assert.Equal(t, constants.PrioridadeMedia, first.Prioridade)
	require.NotNil(t, first.CriadoPor)
	assert.Equal(t, f.usuarioID, *first.CriadoPor)

	history, err := f.requerimentos().History(f.as(f.usuarioID), first.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "criar", history[0].Acao)
	assert.Equal(t, "", history[0].StatusAnterior)
	assert.Equal(t, constants.RequerimentoPendente, history[0].StatusNovo)
}

func TestRequerimento_CreateRequiresExistingReferences(t *testing.T) {
	f := newFixture(t)

	_, err := f.requerimentos().CreateRequerimento(f.as(f.usuarioID), dto.CreateRequerimentoDTO{
		Tipo:         "poda",
		RequerenteID: f.requerenteID,
		ArvoreID:     9999,
	})

	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "arvore_id", vErr.Field)
}

func TestRequerimento_TransitionFromWrongStatusKeepsStatus(t *testing.T) {
	f := newFixture(t)
	svc := f.requerimentos()
	r := f.approvedRequerimento(t)

	_, err := svc.Approve(f.as(f.adminID), r.ID)
	var sErr *apperrors.StateError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, "aprovar", sErr.Action)

	_, err = svc.Reject(f.as(f.adminID), r.ID, "fora da área")
	require.ErrorAs(t, err, &sErr)

	stored, ok := f.store.Requerimento(r.ID)
	require.True(t, ok)
	assert.Equal(t, constants.RequerimentoAprovado, stored.Status)
}

func TestRequerimento_RejectRequiresReason(t *testing.T) {
	f := newFixture(t)
	r := f.newRequerimento(t, f.usuarioID)

	_, err := f.requerimentos().Reject(f.as(f.adminID), r.ID, "   ")
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)

	rejected, err := f.requerimentos().Reject(f.as(f.adminID), r.ID, "árvore saudável")
	require.NoError(t, err)
	assert.Equal(t, constants.RequerimentoNegado, rejected.Status)
	require.NotNil(t, rejected.MotivoDecisao)
	assert.Equal(t, "árvore saudável", *rejected.MotivoDecisao)
}

func TestRequerimento_Authorization(t *testing.T) {
	f := newFixture(t)
	svc := f.requerimentos()
	r := f.newRequerimento(t, f.usuarioID)
	reason := "desistência"

	t.Run("sem usuário no contexto", func(t *testing.T) {
		_, err := svc.Approve(f.as(0), r.ID)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("usuário inativo", func(t *testing.T) {
		_, err := svc.Approve(f.as(f.inativoID), r.ID)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("nível insuficiente", func(t *testing.T) {
		_, err := svc.Approve(f.as(f.tecnicoID), r.ID)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("outro usuário não pode cancelar", func(t *testing.T) {
		_, err := svc.Cancel(f.as(f.outroID), r.ID, &reason)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("criador pode cancelar o próprio", func(t *testing.T) {
		cancelled, err := svc.Cancel(f.as(f.usuarioID), r.ID, &reason)
		require.NoError(t, err)
		assert.Equal(t, constants.RequerimentoCancelado, cancelled.Status)
	})
}

func TestRequerimento_UpdateOnlyWhilePending(t *testing.T) {
	f := newFixture(t)
	svc := f.requerimentos()
	r := f.newRequerimento(t, f.usuarioID)

	updated, err := svc.UpdateRequerimento(f.as(f.usuarioID), r.ID, dto.UpdateRequerimentoDTO{
		Prioridade: null.StringFrom("alta"),
	})
	require.NoError(t, err)
	assert.Equal(t, "alta", updated.Prioridade)

	_, err = svc.Approve(f.as(f.adminID), r.ID)
	require.NoError(t, err)

	_, err = svc.UpdateRequerimento(f.as(f.adminID), r.ID, dto.UpdateRequerimentoDTO{
		Prioridade: null.StringFrom("baixa"),
	})
	var sErr *apperrors.StateError
	assert.ErrorAs(t, err, &sErr)
}

func TestRequerimento_CompleteBlockedByActiveOrdem(t *testing.T) {
	f := newFixture(t)
	r := f.approvedRequerimento(t)
	f.newOrdem(t, r.ID)

	_, err := f.requerimentos().Complete(f.as(f.tecnicoID), r.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = f.requerimentos().Cancel(f.as(f.tecnicoID), r.ID, nil)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	stored, _ := f.store.Requerimento(r.ID)
	assert.Equal(t, constants.RequerimentoAprovado, stored.Status)
}

func TestRequerimento_Delete(t *testing.T) {
	f := newFixture(t)
	svc := f.requerimentos()

	t.Run("pendente sem vínculos", func(t *testing.T) {
		r := f.newRequerimento(t, f.usuarioID)
		require.NoError(t, svc.DeleteRequerimento(f.as(f.adminID), r.ID))
		_, ok := f.store.Requerimento(r.ID)
		assert.False(t, ok)
	})

	t.Run("pendente com vistoria", func(t *testing.T) {
		r := f.newRequerimento(t, f.usuarioID)
		f.store.AddVistoria(entities.Vistoria{RequerimentoID: &r.ID, TecnicoID: f.tecnicoID, Status: constants.VistoriaAgendada})
		err := svc.DeleteRequerimento(f.as(f.adminID), r.ID)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("aprovado", func(t *testing.T) {
		r := f.approvedRequerimento(t)
		err := svc.DeleteRequerimento(f.as(f.adminID), r.ID)
		var sErr *apperrors.StateError
		assert.ErrorAs(t, err, &sErr)
	})
}

func TestRequerimento_PersistenceFailureLeavesRecordUnchanged(t *testing.T) {
	f := newFixture(t)
	r := f.newRequerimento(t, f.usuarioID)
	historyBefore := f.store.HistoryCount()

	f.store.FailOn("Historico.CreateInTx", errors.New("conexão perdida"))
	_, err := f.requerimentos().Approve(f.as(f.adminID), r.ID)
	require.Error(t, err)

	stored, _ := f.store.Requerimento(r.ID)
	assert.Equal(t, constants.RequerimentoPendente, stored.Status)
	assert.Nil(t, stored.DataDecisao)
	assert.Nil(t, stored.AtualizadoPor)
	assert.Equal(t, historyBefore, f.store.HistoryCount())

	f.store.FailOn("Historico.CreateInTx", nil)
	approved, err := f.requerimentos().Approve(f.as(f.adminID), r.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.RequerimentoAprovado, approved.Status)
}
