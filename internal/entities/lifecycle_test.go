package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semapa/pkg/constants"
	apperrors "semapa/pkg/errors"
)

var now = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func TestRequerimento_Transitions(t *testing.T) {
	t.Run("approve from pendente", func(t *testing.T) {
		r := &Requerimento{Status: constants.RequerimentoPendente}
		require.NoError(t, r.Approve(3, now))
		assert.Equal(t, constants.RequerimentoAprovado, r.Status)
		assert.Equal(t, uint64(3), *r.DecididoPor)
		assert.Equal(t, uint64(3), *r.AtualizadoPor)
		assert.Equal(t, now, *r.DataAtualizacao)
	})

	t.Run("approve twice is a state error", func(t *testing.T) {
		r := &Requerimento{Status: constants.RequerimentoAprovado}
		var stateErr *apperrors.StateError
		require.ErrorAs(t, r.Approve(3, now), &stateErr)
		assert.Equal(t, constants.RequerimentoAprovado, r.Status)
		assert.Nil(t, r.DataAtualizacao)
	})

	t.Run("reject needs a reason", func(t *testing.T) {
		r := &Requerimento{Status: constants.RequerimentoPendente}
		var validationErr *apperrors.ValidationError
		require.ErrorAs(t, r.Reject(3, "   ", now), &validationErr)
		assert.Equal(t, constants.RequerimentoPendente, r.Status)

		require.NoError(t, r.Reject(3, " árvore saudável ", now))
		assert.Equal(t, constants.RequerimentoNegado, r.Status)
		assert.Equal(t, "árvore saudável", *r.MotivoDecisao)
	})

	t.Run("complete and cancel only from pendente or aprovado", func(t *testing.T) {
		for _, status := range []string{constants.RequerimentoPendente, constants.RequerimentoAprovado} {
			r := &Requerimento{Status: status}
			require.NoError(t, r.Complete(2, now))
			assert.Equal(t, constants.RequerimentoConcluido, r.Status)
			assert.NotNil(t, r.DataConclusao)

			r = &Requerimento{Status: status}
			require.NoError(t, r.Cancel(2, strPtr("duplicado"), now))
			assert.Equal(t, constants.RequerimentoCancelado, r.Status)
		}
		for _, status := range []string{constants.RequerimentoNegado, constants.RequerimentoConcluido, constants.RequerimentoCancelado} {
			r := &Requerimento{Status: status}
			var stateErr *apperrors.StateError
			assert.ErrorAs(t, r.Complete(2, now), &stateErr)
			assert.ErrorAs(t, r.Cancel(2, nil, now), &stateErr)
			assert.Equal(t, status, r.Status)
		}
	})

	t.Run("only pendente is editable", func(t *testing.T) {
		assert.True(t, (&Requerimento{Status: constants.RequerimentoPendente}).CanEdit())
		assert.False(t, (&Requerimento{Status: constants.RequerimentoAprovado}).CanEdit())
	})
}

func TestOrdemServico_Transitions(t *testing.T) {
	t.Run("start, pause and start again", func(t *testing.T) {
		o := &OrdemServico{Status: constants.OrdemServicoPendente}
		require.NoError(t, o.Start(2, now))
		assert.Equal(t, constants.OrdemServicoEmAndamento, o.Status)
		firstStart := *o.DataInicio

		require.NoError(t, o.Pause(2, strPtr("chuva"), now.Add(time.Hour)))
		assert.Equal(t, constants.OrdemServicoPendente, o.Status)
		assert.Equal(t, "chuva", *o.MotivoPausa)

		require.NoError(t, o.Start(2, now.Add(2*time.Hour)))
		assert.Nil(t, o.MotivoPausa)
		assert.Equal(t, firstStart, *o.DataInicio)
	})

	t.Run("complete requires report before status", func(t *testing.T) {
		o := &OrdemServico{Status: constants.OrdemServicoPendente}
		var validationErr *apperrors.ValidationError
		require.ErrorAs(t, o.Complete(2, "", nil, now), &validationErr)

		var stateErr *apperrors.StateError
		require.ErrorAs(t, o.Complete(2, "feito", nil, now), &stateErr)
		assert.Equal(t, constants.OrdemServicoPendente, o.Status)
	})

	t.Run("complete from em_andamento", func(t *testing.T) {
		custo := 350.0
		o := &OrdemServico{Status: constants.OrdemServicoEmAndamento}
		require.NoError(t, o.Complete(2, "poda realizada", &custo, now))
		assert.Equal(t, constants.OrdemServicoConcluida, o.Status)
		assert.Equal(t, now, *o.DataExecucao)
		assert.Equal(t, 350.0, *o.CustoReal)
		assert.False(t, o.IsActive())
	})

	t.Run("cancel requires reason and an active order", func(t *testing.T) {
		o := &OrdemServico{Status: constants.OrdemServicoEmAndamento}
		var validationErr *apperrors.ValidationError
		require.ErrorAs(t, o.Cancel(3, "", now), &validationErr)
		require.NoError(t, o.Cancel(3, "equipe indisponível", now))
		assert.Equal(t, constants.OrdemServicoCancelada, o.Status)

		var stateErr *apperrors.StateError
		assert.ErrorAs(t, o.Cancel(3, "de novo", now), &stateErr)
	})

	t.Run("assign only while pendente", func(t *testing.T) {
		o := &OrdemServico{Status: constants.OrdemServicoPendente}
		require.NoError(t, o.AssignTechnician(3, 9, now))
		assert.Equal(t, uint64(9), *o.ResponsavelID)

		o.Status = constants.OrdemServicoEmAndamento
		var stateErr *apperrors.StateError
		assert.ErrorAs(t, o.AssignTechnician(3, 10, now), &stateErr)
		assert.Equal(t, uint64(9), *o.ResponsavelID)
	})

	t.Run("dias de atraso", func(t *testing.T) {
		programada := now.Add(-72 * time.Hour)
		o := &OrdemServico{Status: constants.OrdemServicoPendente, DataProgramada: &programada}
		assert.Equal(t, 3, o.DiasAtraso(now))
		o.Status = constants.OrdemServicoConcluida
		assert.Equal(t, 0, o.DiasAtraso(now))
	})
}

func TestVistoria_Transitions(t *testing.T) {
	t.Run("start only from agendada", func(t *testing.T) {
		v := &Vistoria{Status: constants.VistoriaAgendada}
		require.NoError(t, v.Start(2, now))
		var stateErr *apperrors.StateError
		assert.ErrorAs(t, v.Start(2, now), &stateErr)
	})

	t.Run("execute from agendada or em_andamento", func(t *testing.T) {
		for _, status := range []string{constants.VistoriaAgendada, constants.VistoriaEmAndamento} {
			v := &Vistoria{Status: status}
			require.NoError(t, v.Execute(2, VistoriaFindings{Diagnostico: strPtr("cupim"), RiscoQueda: strPtr("alto")}, now))
			assert.Equal(t, constants.VistoriaConcluida, v.Status)
			assert.Equal(t, "cupim", *v.Diagnostico)
			assert.NotNil(t, v.DataExecucao)
		}

		v := &Vistoria{Status: constants.VistoriaCancelada}
		var stateErr *apperrors.StateError
		assert.ErrorAs(t, v.Execute(2, VistoriaFindings{}, now), &stateErr)
	})

	t.Run("reschedule needs a date", func(t *testing.T) {
		v := &Vistoria{Status: constants.VistoriaEmAndamento, DataVistoria: now}
		var validationErr *apperrors.ValidationError
		require.ErrorAs(t, v.Reschedule(2, time.Time{}, nil, now), &validationErr)

		nova := now.Add(48 * time.Hour)
		require.NoError(t, v.Reschedule(2, nova, strPtr("acesso bloqueado"), now))
		assert.Equal(t, constants.VistoriaAgendada, v.Status)
		assert.Equal(t, nova, v.DataVistoria)
		assert.Nil(t, v.DataInicio)
	})

	t.Run("cancel with optional reason", func(t *testing.T) {
		v := &Vistoria{Status: constants.VistoriaAgendada}
		require.NoError(t, v.Cancel(2, nil, now))
		assert.Equal(t, constants.VistoriaCancelada, v.Status)
		assert.Nil(t, v.MotivoCancelamento)

		var stateErr *apperrors.StateError
		assert.ErrorAs(t, v.Reschedule(2, now, nil, now), &stateErr)
	})
}

func TestEspecie_ValidateRanges(t *testing.T) {
	minH, maxH := 10.0, 5.0
	e := &Especie{AlturaMin: &minH, AlturaMax: &maxH}
	var validationErr *apperrors.ValidationError
	assert.ErrorAs(t, e.ValidateRanges(), &validationErr)

	maxH = 15
	assert.NoError(t, e.ValidateRanges())
	assert.Equal(t, 12.5, *e.AlturaMedia())
}

func TestTerminalStatus_CheckedBeforePayload(t *testing.T) {
	t.Run("reject on negado with empty reason", func(t *testing.T) {
		r := &Requerimento{Status: constants.RequerimentoNegado}
		var stateErr *apperrors.StateError
		require.ErrorAs(t, r.Reject(3, "", now), &stateErr)
		assert.Equal(t, constants.RequerimentoNegado, r.Status)
	})

	t.Run("cancel on concluida with empty reason", func(t *testing.T) {
		o := &OrdemServico{Status: constants.OrdemServicoConcluida}
		var stateErr *apperrors.StateError
		require.ErrorAs(t, o.Cancel(3, "", now), &stateErr)
		assert.Equal(t, constants.OrdemServicoConcluida, o.Status)
		assert.Nil(t, o.DataCancelamento)
	})

	t.Run("reschedule on cancelada with zero date", func(t *testing.T) {
		v := &Vistoria{Status: constants.VistoriaCancelada}
		var stateErr *apperrors.StateError
		require.ErrorAs(t, v.Reschedule(2, time.Time{}, nil, now), &stateErr)
		assert.Equal(t, constants.VistoriaCancelada, v.Status)
	})
}
