package entities

import "time"

// StatusHistory records one lifecycle transition of a request, work order or inspection.
type StatusHistory struct {
	ID             uint64    `json:"id"`
	Entidade       string    `json:"entidade"`
	EntidadeID     uint64    `json:"entidade_id"`
	Acao           string    `json:"acao"`
	StatusAnterior string    `json:"status_anterior"`
	StatusNovo     string    `json:"status_novo"`
	Comentario     *string   `json:"comentario"`
	UsuarioID      uint64    `json:"usuario_id"`
	CriadoEm       time.Time `json:"criado_em"`
}
