package dto

import (
	"github.com/aarondl/null/v8"

	"semapa/internal/entities"
)

type CreateOrdemServicoDTO struct {
	RequerimentoIDs []uint64 `json:"requerimento_ids" validate:"required,min=1,dive,gt=0"`
	ResponsavelID   *uint64  `json:"responsavel_id" validate:"omitempty,gt=0"`
	Prioridade      string   `json:"prioridade" validate:"omitempty,oneof=baixa media alta urgente"`
	DataProgramada  *string  `json:"data_programada" validate:"omitempty,date_ymd"`
	Observacao      *string  `json:"observacao"`
	CustoEstimado   *float64 `json:"custo_estimado" validate:"omitempty,gte=0"`
}

type UpdateOrdemServicoDTO struct {
	Prioridade     null.String  `json:"prioridade" validate:"omitempty,oneof=baixa media alta urgente"`
	DataProgramada null.String  `json:"data_programada" validate:"omitempty,date_ymd"`
	Observacao     null.String  `json:"observacao"`
	CustoEstimado  null.Float64 `json:"custo_estimado" validate:"omitempty,gte=0"`
}

type CompleteOrdemServicoDTO struct {
	Relatorio string   `json:"relatorio"`
	CustoReal *float64 `json:"custo_real" validate:"omitempty,gte=0"`
}

type CancelOrdemServicoDTO struct {
	Motivo string `json:"motivo"`
}

type AssignTechnicianDTO struct {
	ResponsavelID uint64 `json:"responsavel_id" validate:"required,gt=0"`
}

type OrdemServicoDTO struct {
	entities.OrdemServico
	DiasAtraso int `json:"dias_atraso"`
}
