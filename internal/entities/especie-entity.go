package entities

import (
	apperrors "semapa/pkg/errors"
	"semapa/pkg/types"
)

type Especie struct {
	ID                uint64   `json:"id"`
	NomePopular       string   `json:"nome_popular"`
	NomeCientifico    string   `json:"nome_cientifico"`
	Porte             string   `json:"porte"`
	AlturaMin         *float64 `json:"altura_min"`
	AlturaMax         *float64 `json:"altura_max"`
	LongevidadeMin    *int     `json:"longevidade_min"`
	LongevidadeMax    *int     `json:"longevidade_max"`
	Deciduidade       *string  `json:"deciduidade"`
	CorFlor           *string  `json:"cor_flor"`
	EpocaFloracao     *string  `json:"epoca_floracao"`
	FrutoComestivel   *bool    `json:"fruto_comestivel"`
	EpocaFrutificacao *string  `json:"epoca_frutificacao"`
	NecessidadeRega   *string  `json:"necessidade_rega"`
	AtraiFauna        *bool    `json:"atrai_fauna"`
	Observacoes       *string  `json:"observacoes"`
	LinkFoto          *string  `json:"link_foto"`
	types.AuditFields
}

// ValidateRanges requires min ≤ max for height and longevity when both are set.
func (e *Especie) ValidateRanges() error {
	if e.AlturaMin != nil && e.AlturaMax != nil && *e.AlturaMin > *e.AlturaMax {
		return apperrors.NewValidationError("altura_min", "não pode ser maior que altura_max")
	}
	if e.LongevidadeMin != nil && e.LongevidadeMax != nil && *e.LongevidadeMin > *e.LongevidadeMax {
		return apperrors.NewValidationError("longevidade_min", "não pode ser maior que longevidade_max")
	}
	return nil
}

// AlturaMedia is the midpoint of the height range, or nil when incomplete.
func (e *Especie) AlturaMedia() *float64 {
	if e.AlturaMin == nil || e.AlturaMax == nil {
		return nil
	}
	avg := (*e.AlturaMin + *e.AlturaMax) / 2
	return &avg
}
