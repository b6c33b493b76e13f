package dto

import "semapa/internal/entities"

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponseDTO struct {
	AccessToken string         `json:"access_token"`
	User        *entities.User `json:"user"`
}

type ChangePasswordDTO struct {
	SenhaAtual string `json:"senha_atual" validate:"required"`
	NovaSenha  string `json:"nova_senha" validate:"required,min=6,nefield=SenhaAtual"`
}
