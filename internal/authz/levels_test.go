package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "semapa/pkg/errors"
)

func ownerPtr(id uint64) *uint64 { return &id }

func TestAuthorize_LevelComparison(t *testing.T) {
	cases := []struct {
		name  string
		nivel Level
		op    Operation
		allow bool
	}{
		{"usuario cria requerimento", LevelUsuario, RequerimentoCreate, true},
		{"usuario não aprova", LevelUsuario, RequerimentoApprove, false},
		{"tecnico não aprova", LevelTecnico, RequerimentoApprove, false},
		{"admin aprova", LevelAdmin, RequerimentoApprove, true},
		{"super admin aprova", LevelSuperAdmin, RequerimentoApprove, true},
		{"tecnico inicia OS", LevelTecnico, OrdemServicoStart, true},
		{"tecnico não cancela OS", LevelTecnico, OrdemServicoCancel, false},
		{"tecnico não exclui árvore", LevelTecnico, ArvoreDelete, false},
		{"admin exclui árvore", LevelAdmin, ArvoreDelete, true},
		{"usuario não vê relatório", LevelUsuario, ReportView, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(&Actor{ID: 7, Nivel: tc.nivel}, tc.op, nil)
			if tc.allow {
				assert.NoError(t, err)
				return
			}
			var forbidden *apperrors.ForbiddenError
			assert.ErrorAs(t, err, &forbidden)
		})
	}
}

func TestAuthorize_FailsClosed(t *testing.T) {
	var unauth *apperrors.UnauthorizedError
	assert.ErrorAs(t, Authorize(nil, RequerimentoView, nil), &unauth)
	assert.ErrorAs(t, Authorize(&Actor{}, RequerimentoView, nil), &unauth)

	var forbidden *apperrors.ForbiddenError
	assert.ErrorAs(t, Authorize(&Actor{ID: 1, Nivel: LevelSuperAdmin}, Operation("desconhecida"), nil), &forbidden)
}

func TestAuthorize_OwnerEscapeOnlyWhereDeclared(t *testing.T) {
	actor := &Actor{ID: 5, Nivel: LevelUsuario}

	assert.NoError(t, Authorize(actor, RequerimentoUpdate, ownerPtr(5)))
	assert.NoError(t, Authorize(actor, RequerimentoCancel, ownerPtr(5)))
	assert.Error(t, Authorize(actor, RequerimentoUpdate, ownerPtr(6)))
	assert.Error(t, Authorize(actor, RequerimentoUpdate, nil))

	assert.Error(t, Authorize(actor, RequerimentoApprove, ownerPtr(5)), "approve has no owner escape")
	assert.Error(t, Authorize(actor, ArvoreUpdate, ownerPtr(5)))
}

func TestPrecheck(t *testing.T) {
	usuario := &Actor{ID: 5, Nivel: LevelUsuario}

	assert.NoError(t, Precheck(usuario, RequerimentoUpdate), "owner rules are decided later")
	assert.Error(t, Precheck(usuario, OrdemServicoCreate))
	assert.ErrorIs(t, Precheck(nil, RequerimentoView), apperrors.ErrUnauthorized)
}

func TestEveryOperationHasValidLevel(t *testing.T) {
	for op, rule := range rules {
		assert.Truef(t, rule.MinLevel.Valid(), "%s has level %d", op, rule.MinLevel)
	}
}
