package dto

import "github.com/aarondl/null/v8"

type CreateRequerimentoDTO struct {
	Tipo         string  `json:"tipo" validate:"required,oneof=poda remocao transplante"`
	Motivo       *string `json:"motivo" validate:"omitempty,max=2000"`
	Prioridade   string  `json:"prioridade" validate:"omitempty,oneof=baixa media alta urgente"`
	RequerenteID uint64  `json:"requerente_id" validate:"required,gt=0"`
	ArvoreID     uint64  `json:"arvore_id" validate:"required,gt=0"`
	Observacao   *string `json:"observacao"`
	DataAbertura *string `json:"data_abertura" validate:"omitempty,date_ymd"`
}

type UpdateRequerimentoDTO struct {
	Tipo         null.String `json:"tipo" validate:"omitempty,oneof=poda remocao transplante"`
	Motivo       null.String `json:"motivo" validate:"omitempty,max=2000"`
	Prioridade   null.String `json:"prioridade" validate:"omitempty,oneof=baixa media alta urgente"`
	RequerenteID null.Uint64 `json:"requerente_id" validate:"omitempty,gt=0"`
	ArvoreID     null.Uint64 `json:"arvore_id" validate:"omitempty,gt=0"`
	Observacao   null.String `json:"observacao"`
}

type RejectRequerimentoDTO struct {
	Motivo string `json:"motivo"`
}
