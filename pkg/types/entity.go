package types

import "time"

// AuditFields is embedded by every persisted record.
type AuditFields struct {
	CriadoPor       *uint64    `json:"criado_por"`
	DataCriacao     time.Time  `json:"data_criacao"`
	AtualizadoPor   *uint64    `json:"atualizado_por"`
	DataAtualizacao *time.Time `json:"data_atualizacao"`
}

// Touch stamps the actor and time of the latest change.
func (a *AuditFields) Touch(actorID uint64, at time.Time) {
	a.AtualizadoPor = &actorID
	a.DataAtualizacao = &at
}

// IsOwnedBy reports whether actorID created the record.
func (a AuditFields) IsOwnedBy(actorID uint64) bool {
	return a.CriadoPor != nil && *a.CriadoPor == actorID
}
