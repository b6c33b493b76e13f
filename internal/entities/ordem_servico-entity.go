package entities

import (
	"strings"
	"time"

	"semapa/pkg/constants"
	apperrors "semapa/pkg/errors"
	"semapa/pkg/types"
)

const entidadeOrdemServico = "ordem_servico"

type OrdemServico struct {
	ID                 uint64     `json:"id"`
	Numero             string     `json:"numero"`
	Status             string     `json:"status"`
	Prioridade         string     `json:"prioridade"`
	ResponsavelID      *uint64    `json:"responsavel_id"`
	DataEmissao        time.Time  `json:"data_emissao"`
	DataProgramada     *time.Time `json:"data_programada"`
	DataInicio         *time.Time `json:"data_inicio"`
	DataExecucao       *time.Time `json:"data_execucao"`
	DataCancelamento   *time.Time `json:"data_cancelamento"`
	Observacao         *string    `json:"observacao"`
	Relatorio          *string    `json:"relatorio"`
	MotivoPausa        *string    `json:"motivo_pausa"`
	MotivoCancelamento *string    `json:"motivo_cancelamento"`
	CustoEstimado      *float64   `json:"custo_estimado"`
	CustoReal          *float64   `json:"custo_real"`
	RequerimentoIDs    []uint64   `json:"requerimento_ids"`
	types.AuditFields
}

// IsActive reports whether the order still blocks new orders for its requests.
func (o *OrdemServico) IsActive() bool {
	return o.Status == constants.OrdemServicoPendente || o.Status == constants.OrdemServicoEmAndamento
}

func (o *OrdemServico) CanEdit() bool {
	return o.IsActive()
}

// DiasAtraso is the number of whole days past the programmed date of an active order.
func (o *OrdemServico) DiasAtraso(now time.Time) int {
	if !o.IsActive() || o.DataProgramada == nil {
		return 0
	}
	days := int(now.Sub(*o.DataProgramada).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func (o *OrdemServico) Start(actorID uint64, now time.Time) error {
	if o.Status != constants.OrdemServicoPendente {
		return apperrors.NewStateError(entidadeOrdemServico, "iniciar", o.Status)
	}
	o.Status = constants.OrdemServicoEmAndamento
	if o.DataInicio == nil {
		o.DataInicio = &now
	}
	o.MotivoPausa = nil
	o.Touch(actorID, now)
	return nil
}

func (o *OrdemServico) Pause(actorID uint64, reason *string, now time.Time) error {
	if o.Status != constants.OrdemServicoEmAndamento {
		return apperrors.NewStateError(entidadeOrdemServico, "pausar", o.Status)
	}
	o.Status = constants.OrdemServicoPendente
	o.MotivoPausa = nil
	if reason != nil && strings.TrimSpace(*reason) != "" {
		trimmed := strings.TrimSpace(*reason)
		o.MotivoPausa = &trimmed
	}
	o.Touch(actorID, now)
	return nil
}

// Complete requires a non-empty report; that check runs before the status check.
func (o *OrdemServico) Complete(actorID uint64, report string, custoReal *float64, now time.Time) error {
	report = strings.TrimSpace(report)
	if report == "" {
		return apperrors.NewValidationError("relatorio", "é obrigatório para concluir a ordem de serviço")
	}
	if o.Status != constants.OrdemServicoEmAndamento {
		return apperrors.NewStateError(entidadeOrdemServico, "concluir", o.Status)
	}
	o.Status = constants.OrdemServicoConcluida
	o.Relatorio = &report
	o.DataExecucao = &now
	if custoReal != nil {
		o.CustoReal = custoReal
	}
	o.Touch(actorID, now)
	return nil
}

func (o *OrdemServico) Cancel(actorID uint64, reason string, now time.Time) error {
	if !o.IsActive() {
		return apperrors.NewStateError(entidadeOrdemServico, "cancelar", o.Status)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperrors.NewValidationError("motivo", "é obrigatório para cancelar a ordem de serviço")
	}
	o.Status = constants.OrdemServicoCancelada
	o.MotivoCancelamento = &reason
	o.DataCancelamento = &now
	o.Touch(actorID, now)
	return nil
}

// AssignTechnician sets the responsible user. The caller validates the user's level.
func (o *OrdemServico) AssignTechnician(actorID, tecnicoID uint64, now time.Time) error {
	if o.Status != constants.OrdemServicoPendente {
		return apperrors.NewStateError(entidadeOrdemServico, "atribuir", o.Status)
	}
	o.ResponsavelID = &tecnicoID
	o.Touch(actorID, now)
	return nil
}
