package dto

import (
	"github.com/aarondl/null/v8"

	"semapa/internal/entities"
)

type CreateEspecieDTO struct {
	NomePopular       string   `json:"nome_popular" validate:"required,max=100"`
	NomeCientifico    string   `json:"nome_cientifico" validate:"required,max=150"`
	Porte             string   `json:"porte" validate:"required,oneof=pequeno medio grande"`
	AlturaMin         *float64 `json:"altura_min" validate:"omitempty,gte=0"`
	AlturaMax         *float64 `json:"altura_max" validate:"omitempty,gte=0"`
	LongevidadeMin    *int     `json:"longevidade_min" validate:"omitempty,gte=0"`
	LongevidadeMax    *int     `json:"longevidade_max" validate:"omitempty,gte=0"`
	Deciduidade       *string  `json:"deciduidade" validate:"omitempty,max=50"`
	CorFlor           *string  `json:"cor_flor" validate:"omitempty,max=50"`
	EpocaFloracao     *string  `json:"epoca_floracao" validate:"omitempty,max=100"`
	FrutoComestivel   *bool    `json:"fruto_comestivel"`
	EpocaFrutificacao *string  `json:"epoca_frutificacao" validate:"omitempty,max=100"`
	NecessidadeRega   *string  `json:"necessidade_rega" validate:"omitempty,max=50"`
	AtraiFauna        *bool    `json:"atrai_fauna"`
	Observacoes       *string  `json:"observacoes"`
	LinkFoto          *string  `json:"link_foto" validate:"omitempty,url"`
}

type UpdateEspecieDTO struct {
	NomePopular       null.String  `json:"nome_popular" validate:"omitempty,max=100"`
	NomeCientifico    null.String  `json:"nome_cientifico" validate:"omitempty,max=150"`
	Porte             null.String  `json:"porte" validate:"omitempty,oneof=pequeno medio grande"`
	AlturaMin         null.Float64 `json:"altura_min" validate:"omitempty,gte=0"`
	AlturaMax         null.Float64 `json:"altura_max" validate:"omitempty,gte=0"`
	LongevidadeMin    null.Int     `json:"longevidade_min" validate:"omitempty,gte=0"`
	LongevidadeMax    null.Int     `json:"longevidade_max" validate:"omitempty,gte=0"`
	Deciduidade       null.String  `json:"deciduidade" validate:"omitempty,max=50"`
	CorFlor           null.String  `json:"cor_flor" validate:"omitempty,max=50"`
	EpocaFloracao     null.String  `json:"epoca_floracao" validate:"omitempty,max=100"`
	FrutoComestivel   null.Bool    `json:"fruto_comestivel"`
	EpocaFrutificacao null.String  `json:"epoca_frutificacao" validate:"omitempty,max=100"`
	NecessidadeRega   null.String  `json:"necessidade_rega" validate:"omitempty,max=50"`
	AtraiFauna        null.Bool    `json:"atrai_fauna"`
	Observacoes       null.String  `json:"observacoes"`
	LinkFoto          null.String  `json:"link_foto" validate:"omitempty,url"`
}

type EspecieDTO struct {
	entities.Especie
	TotalArvores int64    `json:"total_arvores"`
	AlturaMedia  *float64 `json:"altura_media"`
}

type EspecieImportResultDTO struct {
	Criadas   int      `json:"criadas"`
	Ignoradas int      `json:"ignoradas"`
	Erros     []string `json:"erros"`
}
