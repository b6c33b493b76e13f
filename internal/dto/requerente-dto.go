package dto

import "github.com/aarondl/null/v8"

type CreateRequerenteDTO struct {
	Nome       string  `json:"nome" validate:"required,max=150"`
	Telefone   *string `json:"telefone" validate:"omitempty,br_phone"`
	Email      *string `json:"email" validate:"omitempty,email"`
	CpfCnpj    *string `json:"cpf_cnpj" validate:"omitempty,cpf_cnpj"`
	Tipo       *string `json:"tipo" validate:"omitempty,oneof=pf pj"`
	Endereco   *string `json:"endereco" validate:"omitempty,max=255"`
	Observacao *string `json:"observacao"`
}

type UpdateRequerenteDTO struct {
	Nome       null.String `json:"nome" validate:"omitempty,max=150"`
	Telefone   null.String `json:"telefone" validate:"omitempty,br_phone"`
	Email      null.String `json:"email" validate:"omitempty,email"`
	CpfCnpj    null.String `json:"cpf_cnpj" validate:"omitempty,cpf_cnpj"`
	Tipo       null.String `json:"tipo" validate:"omitempty,oneof=pf pj"`
	Endereco   null.String `json:"endereco" validate:"omitempty,max=255"`
	Observacao null.String `json:"observacao"`
}
