package services

import (
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semapa/internal/authz"
	"semapa/internal/dto"
	"semapa/internal/entities"
	"semapa/pkg/config"
	apperrors "semapa/pkg/errors"
	"semapa/pkg/types"
	"semapa/pkg/utils"
)

func newAuthFixture(t *testing.T) (*fixture, AuthServiceInterface, uint64) {
	t.Helper()
	f := newFixture(t)
	hash, err := utils.HashPassword("segredo123")
	require.NoError(t, err)
	id := f.store.AddUser(entities.User{
		Nome:     "Fiscal",
		Email:    "fiscal@semapa.local",
		Password: hash,
		Nivel:    int(authz.LevelTecnico),
		Ativo:    true,
	})
	svc := NewAuthService(f.base, f.reg.Users, f.reg.Cache, config.AuthConfig{
		MaxLoginAttempts: 3,
		LockoutDuration:  time.Minute,
	})
	return f, svc, id
}

func TestAuth_LoginStampsLastLogin(t *testing.T) {
	f, svc, id := newAuthFixture(t)

	user, err := svc.Login(f.as(0), dto.LoginDTO{Email: "FISCAL@semapa.local", Password: "segredo123"})
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.NotNil(t, user.UltimoLogin)

	stored, err := f.reg.Users.FindByID(f.as(0), id)
	require.NoError(t, err)
	assert.NotNil(t, stored.UltimoLogin)
}

func TestAuth_LoginRejectsUnknownAndWrongPassword(t *testing.T) {
	f, svc, _ := newAuthFixture(t)

	_, err := svc.Login(f.as(0), dto.LoginDTO{Email: "ninguem@semapa.local", Password: "x"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(f.as(0), dto.LoginDTO{Email: "fiscal@semapa.local", Password: "errada"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuth_LockoutAfterRepeatedFailures(t *testing.T) {
	f, svc, _ := newAuthFixture(t)

	for i := 0; i < 3; i++ {
		_, err := svc.Login(f.as(0), dto.LoginDTO{Email: "fiscal@semapa.local", Password: "errada"})
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	}

	_, err := svc.Login(f.as(0), dto.LoginDTO{Email: "fiscal@semapa.local", Password: "segredo123"})
	assert.ErrorIs(t, err, apperrors.ErrAccountLocked)
}

func TestAuth_InactiveUserCannotLogin(t *testing.T) {
	f, svc, id := newAuthFixture(t)
	users := NewUserService(f.base, f.reg.Users)
	_, err := users.SetActive(f.as(f.adminID), id, false)
	require.NoError(t, err)

	_, err = svc.Login(f.as(0), dto.LoginDTO{Email: "fiscal@semapa.local", Password: "segredo123"})
	assert.ErrorIs(t, err, apperrors.ErrUserInactive)

	_, err = svc.GetActiveUser(f.as(0), id)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuth_ChangePassword(t *testing.T) {
	f, svc, id := newAuthFixture(t)

	err := svc.ChangePassword(f.as(id), dto.ChangePasswordDTO{SenhaAtual: "errada", NovaSenha: "novasenha"})
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)

	require.NoError(t, svc.ChangePassword(f.as(id), dto.ChangePasswordDTO{SenhaAtual: "segredo123", NovaSenha: "novasenha"}))
	_, err = svc.Login(f.as(0), dto.LoginDTO{Email: "fiscal@semapa.local", Password: "novasenha"})
	assert.NoError(t, err)
}

func TestUser_GrantRules(t *testing.T) {
	f := newFixture(t)
	users := NewUserService(f.base, f.reg.Users)

	_, err := users.CreateUser(f.as(f.adminID), dto.CreateUserDTO{
		Nome: "Chefe", Email: "chefe@semapa.local", Password: "segredo123", Nivel: int(authz.LevelSuperAdmin),
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	created, err := users.CreateUser(f.as(f.adminID), dto.CreateUserDTO{
		Nome: " Nova Técnica ", Email: "Tecnica@Semapa.local", Password: "segredo123", Nivel: int(authz.LevelTecnico),
	})
	require.NoError(t, err)
	assert.Equal(t, "Nova Técnica", created.Nome)
	assert.Equal(t, "tecnica@semapa.local", created.Email)
	assert.True(t, created.Ativo)

	_, err = users.CreateUser(f.as(f.tecnicoID), dto.CreateUserDTO{
		Nome: "X", Email: "x@semapa.local", Password: "segredo123", Nivel: 1,
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = users.SetActive(f.as(f.adminID), f.adminID, false)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = users.SetActive(f.as(f.adminID), f.superAdminID, false)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestAuthorization_LevelIsReadFromStore(t *testing.T) {
	f := newFixture(t)
	users := NewUserService(f.base, f.reg.Users)

	// the context claims nothing; the stored level decides
	_, _, err := users.GetUsers(f.as(f.tecnicoID), types.Filter{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = users.UpdateUser(f.as(f.superAdminID), f.tecnicoID, dto.UpdateUserDTO{Nivel: null.IntFrom(int(authz.LevelAdmin))})
	require.NoError(t, err)

	_, _, err = users.GetUsers(f.as(f.tecnicoID), types.Filter{})
	assert.NoError(t, err)
}
