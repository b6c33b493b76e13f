package entities

import (
	"strings"
	"time"

	"semapa/pkg/constants"
	apperrors "semapa/pkg/errors"
	"semapa/pkg/types"
)

const entidadeVistoria = "vistoria"

type Vistoria struct {
	ID                  uint64         `json:"id"`
	RequerimentoID      *uint64        `json:"requerimento_id"`
	OrdemServicoID      *uint64        `json:"ordem_servico_id"`
	ArvoreID            *uint64        `json:"arvore_id"`
	TecnicoID           uint64         `json:"tecnico_id"`
	DataVistoria        time.Time      `json:"data_vistoria"`
	Status              string         `json:"status"`
	DataInicio          *time.Time     `json:"data_inicio"`
	DataExecucao        *time.Time     `json:"data_execucao"`
	DataCancelamento    *time.Time     `json:"data_cancelamento"`
	MotivoCancelamento  *string        `json:"motivo_cancelamento"`
	MotivoReagendamento *string        `json:"motivo_reagendamento"`
	Fotos               []VistoriaFoto `json:"fotos"`
	VistoriaFindings
	types.AuditFields
}

// VistoriaFindings are the technical observations recorded when an inspection is executed.
type VistoriaFindings struct {
	Observacoes         *string `json:"observacoes"`
	EspecieID           *uint64 `json:"especie_id"`
	Condicoes           *string `json:"condicoes"`
	Conflitos           *string `json:"conflitos"`
	RiscoQueda          *string `json:"risco_queda"`
	Diagnostico         *string `json:"diagnostico"`
	AcaoRecomendada     *string `json:"acao_recomendada"`
	TipoPoda            *string `json:"tipo_poda"`
	GalhosCortar        *string `json:"galhos_cortar"`
	MedidasSeguranca    *string `json:"medidas_seguranca"`
	ObservacoesTecnicas *string `json:"observacoes_tecnicas"`
}

type VistoriaFoto struct {
	ID          uint64    `json:"id"`
	VistoriaID  uint64    `json:"vistoria_id"`
	ArquivoNome string    `json:"arquivo_nome"`
	Caminho     string    `json:"caminho"`
	Tamanho     int64     `json:"tamanho"`
	CriadoPor   *uint64   `json:"criado_por"`
	DataCriacao time.Time `json:"data_criacao"`
}

func (v *Vistoria) IsOpen() bool {
	return v.Status == constants.VistoriaAgendada || v.Status == constants.VistoriaEmAndamento
}

func (v *Vistoria) CanEdit() bool {
	return v.Status == constants.VistoriaAgendada
}

func (v *Vistoria) Start(actorID uint64, now time.Time) error {
	if v.Status != constants.VistoriaAgendada {
		return apperrors.NewStateError(entidadeVistoria, "iniciar", v.Status)
	}
	v.Status = constants.VistoriaEmAndamento
	v.DataInicio = &now
	v.Touch(actorID, now)
	return nil
}

// Execute records the findings and closes the inspection.
func (v *Vistoria) Execute(actorID uint64, findings VistoriaFindings, now time.Time) error {
	if !v.IsOpen() {
		return apperrors.NewStateError(entidadeVistoria, "executar", v.Status)
	}
	v.VistoriaFindings = findings
	v.Status = constants.VistoriaConcluida
	if v.DataInicio == nil {
		v.DataInicio = &now
	}
	v.DataExecucao = &now
	v.Touch(actorID, now)
	return nil
}

func (v *Vistoria) Cancel(actorID uint64, reason *string, now time.Time) error {
	if !v.IsOpen() {
		return apperrors.NewStateError(entidadeVistoria, "cancelar", v.Status)
	}
	v.Status = constants.VistoriaCancelada
	v.MotivoCancelamento = trimmedOrNil(reason)
	v.DataCancelamento = &now
	v.Touch(actorID, now)
	return nil
}

func (v *Vistoria) Reschedule(actorID uint64, newDate time.Time, reason *string, now time.Time) error {
	if !v.IsOpen() {
		return apperrors.NewStateError(entidadeVistoria, "reagendar", v.Status)
	}
	if newDate.IsZero() {
		return apperrors.NewValidationError("nova_data", "é obrigatória para reagendar a vistoria")
	}
	v.Status = constants.VistoriaAgendada
	v.DataVistoria = newDate
	v.DataInicio = nil
	v.MotivoReagendamento = trimmedOrNil(reason)
	v.Touch(actorID, now)
	return nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
