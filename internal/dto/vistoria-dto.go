package dto

import (
	"io"

	"github.com/aarondl/null/v8"
)

type CreateVistoriaDTO struct {
	RequerimentoID *uint64 `json:"requerimento_id" validate:"omitempty,gt=0"`
	OrdemServicoID *uint64 `json:"ordem_servico_id" validate:"omitempty,gt=0"`
	ArvoreID       *uint64 `json:"arvore_id" validate:"omitempty,gt=0"`
	TecnicoID      *uint64 `json:"tecnico_id" validate:"omitempty,gt=0"`
	DataVistoria   string  `json:"data_vistoria" validate:"required"`
	Observacoes    *string `json:"observacoes"`
}

type UpdateVistoriaDTO struct {
	DataVistoria null.String `json:"data_vistoria"`
	TecnicoID    null.Uint64 `json:"tecnico_id" validate:"omitempty,gt=0"`
	ArvoreID     null.Uint64 `json:"arvore_id" validate:"omitempty,gt=0"`
	Observacoes  null.String `json:"observacoes"`
}

type ExecuteVistoriaDTO struct {
	Observacoes         *string `json:"observacoes" form:"observacoes"`
	EspecieID           *uint64 `json:"especie_id" form:"especie_id" validate:"omitempty,gt=0"`
	Condicoes           *string `json:"condicoes" form:"condicoes"`
	Conflitos           *string `json:"conflitos" form:"conflitos"`
	RiscoQueda          *string `json:"risco_queda" form:"risco_queda" validate:"omitempty,oneof=baixo medio alto"`
	Diagnostico         *string `json:"diagnostico" form:"diagnostico"`
	AcaoRecomendada     *string `json:"acao_recomendada" form:"acao_recomendada"`
	TipoPoda            *string `json:"tipo_poda" form:"tipo_poda" validate:"omitempty,max=50"`
	GalhosCortar        *string `json:"galhos_cortar" form:"galhos_cortar"`
	MedidasSeguranca    *string `json:"medidas_seguranca" form:"medidas_seguranca"`
	ObservacoesTecnicas *string `json:"observacoes_tecnicas" form:"observacoes_tecnicas"`
}

type RescheduleVistoriaDTO struct {
	NovaData string  `json:"nova_data"`
	Motivo   *string `json:"motivo"`
}

// FotoUpload is a validated file ready to be stored.
type FotoUpload struct {
	ArquivoNome string
	Tamanho     int64
	Conteudo    io.Reader
}
