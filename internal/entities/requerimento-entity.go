package entities

import (
	"strings"
	"time"

	"semapa/pkg/constants"
	apperrors "semapa/pkg/errors"
	"semapa/pkg/types"
)

const entidadeRequerimento = "requerimento"

type Requerimento struct {
	ID               uint64     `json:"id"`
	Numero           string     `json:"numero"`
	DataAbertura     time.Time  `json:"data_abertura"`
	Tipo             string     `json:"tipo"`
	Motivo           *string    `json:"motivo"`
	Status           string     `json:"status"`
	Prioridade       string     `json:"prioridade"`
	RequerenteID     uint64     `json:"requerente_id"`
	ArvoreID         uint64     `json:"arvore_id"`
	Observacao       *string    `json:"observacao"`
	MotivoDecisao    *string    `json:"motivo_decisao"`
	DecididoPor      *uint64    `json:"decidido_por"`
	DataDecisao      *time.Time `json:"data_decisao"`
	DataConclusao    *time.Time `json:"data_conclusao"`
	DataCancelamento *time.Time `json:"data_cancelamento"`
	types.AuditFields
}

// CanEdit reports whether descriptive fields may still change.
func (r *Requerimento) CanEdit() bool {
	return r.Status == constants.RequerimentoPendente
}

func (r *Requerimento) IsTerminal() bool {
	switch r.Status {
	case constants.RequerimentoNegado, constants.RequerimentoConcluido, constants.RequerimentoCancelado:
		return true
	}
	return false
}

func (r *Requerimento) Approve(actorID uint64, now time.Time) error {
	if r.Status != constants.RequerimentoPendente {
		return apperrors.NewStateError(entidadeRequerimento, "aprovar", r.Status)
	}
	r.Status = constants.RequerimentoAprovado
	r.DecididoPor = &actorID
	r.DataDecisao = &now
	r.Touch(actorID, now)
	return nil
}

func (r *Requerimento) Reject(actorID uint64, reason string, now time.Time) error {
	if r.Status != constants.RequerimentoPendente {
		return apperrors.NewStateError(entidadeRequerimento, "negar", r.Status)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperrors.NewValidationError("motivo", "é obrigatório para negar o requerimento")
	}
	r.Status = constants.RequerimentoNegado
	r.MotivoDecisao = &reason
	r.DecididoPor = &actorID
	r.DataDecisao = &now
	r.Touch(actorID, now)
	return nil
}

// Complete closes the request. The caller must ensure no active work order references it.
func (r *Requerimento) Complete(actorID uint64, now time.Time) error {
	if r.Status != constants.RequerimentoPendente && r.Status != constants.RequerimentoAprovado {
		return apperrors.NewStateError(entidadeRequerimento, "concluir", r.Status)
	}
	r.Status = constants.RequerimentoConcluido
	r.DataConclusao = &now
	r.Touch(actorID, now)
	return nil
}

func (r *Requerimento) Cancel(actorID uint64, reason *string, now time.Time) error {
	if r.Status != constants.RequerimentoPendente && r.Status != constants.RequerimentoAprovado {
		return apperrors.NewStateError(entidadeRequerimento, "cancelar", r.Status)
	}
	r.Status = constants.RequerimentoCancelado
	if reason != nil && strings.TrimSpace(*reason) != "" {
		trimmed := strings.TrimSpace(*reason)
		r.MotivoDecisao = &trimmed
	}
	r.DataCancelamento = &now
	r.Touch(actorID, now)
	return nil
}
