package dto

import "github.com/aarondl/null/v8"

type CreateUserDTO struct {
	Nome     string  `json:"nome" validate:"required,max=150"`
	Email    string  `json:"email" validate:"required,email"`
	Telefone *string `json:"telefone" validate:"omitempty,br_phone"`
	Password string  `json:"password" validate:"required,min=6"`
	Nivel    int     `json:"nivel" validate:"required,min=1,max=4"`
}

type UpdateUserDTO struct {
	Nome     null.String `json:"nome" validate:"omitempty,max=150"`
	Email    null.String `json:"email" validate:"omitempty,email"`
	Telefone null.String `json:"telefone" validate:"omitempty,br_phone"`
	Nivel    null.Int    `json:"nivel" validate:"omitempty,min=1,max=4"`
	Password null.String `json:"password" validate:"omitempty,min=6"`
}
