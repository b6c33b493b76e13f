package entities

import "semapa/pkg/types"

type Requerente struct {
	ID         uint64  `json:"id"`
	Nome       string  `json:"nome"`
	Telefone   *string `json:"telefone"`
	Email      *string `json:"email"`
	CpfCnpj    *string `json:"cpf_cnpj"`
	Tipo       *string `json:"tipo"`
	Endereco   *string `json:"endereco"`
	Observacao *string `json:"observacao"`
	types.AuditFields
}
