package entities

import (
	"time"

	"semapa/pkg/types"
)

type User struct {
	ID          uint64     `json:"id"`
	Nome        string     `json:"nome"`
	Email       string     `json:"email"`
	Telefone    *string    `json:"telefone"`
	Password    string     `json:"-"`
	Nivel       int        `json:"nivel"`
	Ativo       bool       `json:"ativo"`
	UltimoLogin *time.Time `json:"ultimo_login"`
	types.AuditFields
}
