package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"semapa/internal/authz"
	"semapa/internal/dto"
	"semapa/internal/entities"
	"semapa/internal/repositories"
	"semapa/internal/testutil"
	"semapa/pkg/utils"
)

// stepClock advances one minute on every read so stamps are strictly ordered.
type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

type fixture struct {
	store *testutil.Store
	reg   *repositories.Registry
	base  *BaseService
	clock *stepClock

	superAdminID uint64
	adminID      uint64
	tecnicoID    uint64
	usuarioID    uint64
	outroID      uint64
	inativoID    uint64

	requerenteID uint64
	arvoreID     uint64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewStore()
	f := &fixture{
		store: store,
		reg:   store.Registry(),
		clock: &stepClock{t: time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)},
	}
	f.superAdminID = store.AddUser(entities.User{Nome: "Super", Email: "super@semapa.local", Nivel: int(authz.LevelSuperAdmin), Ativo: true})
	f.adminID = store.AddUser(entities.User{Nome: "Admin", Email: "admin@semapa.local", Nivel: int(authz.LevelAdmin), Ativo: true})
	f.tecnicoID = store.AddUser(entities.User{Nome: "Técnico", Email: "tecnico@semapa.local", Nivel: int(authz.LevelTecnico), Ativo: true})
	f.usuarioID = store.AddUser(entities.User{Nome: "Usuário", Email: "usuario@semapa.local", Nivel: int(authz.LevelUsuario), Ativo: true})
	f.outroID = store.AddUser(entities.User{Nome: "Outro", Email: "outro@semapa.local", Nivel: int(authz.LevelUsuario), Ativo: true})
	f.inativoID = store.AddUser(entities.User{Nome: "Inativo", Email: "inativo@semapa.local", Nivel: int(authz.LevelAdmin), Ativo: false})

	f.requerenteID = store.AddRequerente(entities.Requerente{Nome: "Maria da Silva"})
	f.arvoreID = store.AddArvore(entities.Arvore{Endereco: "Rua das Palmeiras, 120"})

	f.base = NewBaseService(f.reg.Users, f.reg.Historico, nil, zap.NewNop())
	f.base.SetClock(f.clock.Now)
	return f
}

// as returns a context authenticated as userID. The level is read from the store.
func (f *fixture) as(userID uint64) context.Context {
	return utils.WithUser(context.Background(), userID, 0)
}

func (f *fixture) requerimentos() RequerimentoServiceInterface {
	return NewRequerimentoService(f.base, f.reg)
}

func (f *fixture) ordens() OrdemServicoServiceInterface {
	return NewOrdemServicoService(f.base, f.reg)
}

// newRequerimento creates a pending request owned by ownerID.
func (f *fixture) newRequerimento(t *testing.T, ownerID uint64) *entities.Requerimento {
	t.Helper()
	r, err := f.requerimentos().CreateRequerimento(f.as(ownerID), dto.CreateRequerimentoDTO{
		Tipo:         "poda",
		RequerenteID: f.requerenteID,
		ArvoreID:     f.arvoreID,
	})
	require.NoError(t, err)
	return r
}

func (f *fixture) approvedRequerimento(t *testing.T) *entities.Requerimento {
	t.Helper()
	r := f.newRequerimento(t, f.usuarioID)
	r, err := f.requerimentos().Approve(f.as(f.adminID), r.ID)
	require.NoError(t, err)
	return r
}

func (f *fixture) newOrdem(t *testing.T, reqIDs ...uint64) *dto.OrdemServicoDTO {
	t.Helper()
	o, err := f.ordens().CreateOrdemServico(f.as(f.tecnicoID), dto.CreateOrdemServicoDTO{RequerimentoIDs: reqIDs})
	require.NoError(t, err)
	return o
}
