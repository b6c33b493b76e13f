package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"semapa/internal/authz"
	"semapa/internal/entities"
	"semapa/internal/testutil"
	"semapa/pkg/config"
	"semapa/pkg/customvalidator"
	"semapa/pkg/eventbus"
	"semapa/pkg/filestorage"
	"semapa/pkg/service"
	"semapa/pkg/utils"
)

const testPassword = "segredo123"

type envelope struct {
	Status  bool            `json:"status"`
	Body    json.RawMessage `json:"body"`
	Message string          `json:"message"`
}

type RouterTestSuite struct {
	suite.Suite
	Echo   *echo.Echo
	Store  *testutil.Store
	JWT    service.JWTService
	Bus    *eventbus.Bus
	Tokens map[string]string

	RequerenteID uint64
	ArvoreID     uint64
}

func (s *RouterTestSuite) SetupTest() {
	logger := zap.NewNop()
	cfg := &config.Config{
		Auth:  config.AuthConfig{MaxLoginAttempts: 5, LockoutDuration: time.Minute},
		Cache: config.CacheConfig{DashboardTTL: time.Minute},
	}

	v := validator.New()
	s.Require().NoError(customvalidator.RegisterCustomValidations(v))

	s.Echo = echo.New()
	s.Echo.Validator = utils.NewValidator(v)

	storage, err := filestorage.NewLocalFileStorage(s.T().TempDir())
	s.Require().NoError(err)

	s.Store = testutil.NewStore()
	s.JWT = service.NewJWTService("chave-de-teste", time.Hour, 24*time.Hour, logger)
	s.Bus = eventbus.New(logger)

	hash, err := utils.HashPassword(testPassword)
	s.Require().NoError(err)

	s.Tokens = make(map[string]string)
	for _, u := range []entities.User{
		{Nome: "Admin", Email: "admin@semapa.local", Password: hash, Nivel: int(authz.LevelAdmin), Ativo: true},
		{Nome: "Técnico", Email: "tecnico@semapa.local", Password: hash, Nivel: int(authz.LevelTecnico), Ativo: true},
		{Nome: "Usuário", Email: "usuario@semapa.local", Password: hash, Nivel: int(authz.LevelUsuario), Ativo: true},
	} {
		id := s.Store.AddUser(u)
		access, _, err := s.JWT.GenerateTokens(id, u.Nivel)
		s.Require().NoError(err)
		s.Tokens[strings.SplitN(u.Email, "@", 2)[0]] = access
	}

	s.RequerenteID = s.Store.AddRequerente(entities.Requerente{Nome: "Maria da Silva"})
	s.ArvoreID = s.Store.AddArvore(entities.Arvore{Endereco: "Rua das Palmeiras, 120"})

	InitRouter(s.Echo, s.Store.Registry(), s.JWT, storage, s.Bus, cfg, logger)
}

func (s *RouterTestSuite) TearDownTest() {
	s.Bus.Wait()
}

func (s *RouterTestSuite) do(method, path, token string, payload interface{}) (*httptest.ResponseRecorder, envelope) {
	var body bytes.Buffer
	if payload != nil {
		s.Require().NoError(json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	if payload != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (s *RouterTestSuite) TestHealthIsPublic() {
	rec, env := s.do(http.MethodGet, "/api/health", "", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.True(env.Status)
}

func (s *RouterTestSuite) TestProtectedRoutesNeedToken() {
	rec, env := s.do(http.MethodGet, "/api/requerimentos", "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.False(env.Status)

	rec, _ = s.do(http.MethodGet, "/api/requerimentos", "token-invalido", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *RouterTestSuite) TestLoginThenMe() {
	rec, env := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "tecnico@semapa.local",
		"password": testPassword,
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var login struct {
		AccessToken string         `json:"access_token"`
		User        *entities.User `json:"user"`
	}
	s.Require().NoError(json.Unmarshal(env.Body, &login))
	s.NotEmpty(login.AccessToken)
	s.Equal(int(authz.LevelTecnico), login.User.Nivel)

	var refreshSet bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refreshToken" && c.Value != "" {
			refreshSet = true
		}
	}
	s.True(refreshSet)

	rec, env = s.do(http.MethodGet, "/api/auth/me", login.AccessToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var me entities.User
	s.Require().NoError(json.Unmarshal(env.Body, &me))
	s.Equal("tecnico@semapa.local", me.Email)
}

func (s *RouterTestSuite) TestLoginWrongPassword() {
	rec, env := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "tecnico@semapa.local",
		"password": "errada",
	})
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.False(env.Status)
}

func (s *RouterTestSuite) TestLevelGateRejectsLowLevel() {
	rec, env := s.do(http.MethodPost, "/api/requerimentos/1/aprovar", s.Tokens["usuario"], nil)
	s.Equal(http.StatusForbidden, rec.Code)
	s.False(env.Status)

	rec, _ = s.do(http.MethodGet, "/api/usuarios", s.Tokens["tecnico"], nil)
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *RouterTestSuite) TestInvalidIDAndValidation() {
	rec, _ := s.do(http.MethodGet, "/api/requerimentos/abc", s.Tokens["usuario"], nil)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec, env := s.do(http.MethodPost, "/api/requerimentos", s.Tokens["usuario"], map[string]interface{}{
		"tipo":          "derrubada",
		"requerente_id": s.RequerenteID,
		"arvore_id":     s.ArvoreID,
	})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(env.Message, "Tipo")
}

func (s *RouterTestSuite) TestRequerimentoToOrdemServico() {
	rec, env := s.do(http.MethodPost, "/api/requerimentos", s.Tokens["usuario"], map[string]interface{}{
		"tipo":          "poda",
		"requerente_id": s.RequerenteID,
		"arvore_id":     s.ArvoreID,
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var req entities.Requerimento
	s.Require().NoError(json.Unmarshal(env.Body, &req))
	s.True(strings.HasPrefix(req.Numero, "REQ/"), req.Numero)
	s.Equal("pendente", req.Status)

	rec, _ = s.do(http.MethodPost, fmt.Sprintf("/api/requerimentos/%d/negar", req.ID), s.Tokens["admin"], map[string]string{})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec, env = s.do(http.MethodPost, fmt.Sprintf("/api/requerimentos/%d/aprovar", req.ID), s.Tokens["admin"], nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Require().NoError(json.Unmarshal(env.Body, &req))
	s.Equal("aprovado", req.Status)

	rec, _ = s.do(http.MethodPost, fmt.Sprintf("/api/requerimentos/%d/aprovar", req.ID), s.Tokens["admin"], nil)
	s.Equal(http.StatusConflict, rec.Code)

	rec, env = s.do(http.MethodPost, "/api/ordens-servico", s.Tokens["tecnico"], map[string]interface{}{
		"requerimento_ids": []uint64{req.ID},
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var ordem struct {
		ID     uint64 `json:"id"`
		Numero string `json:"numero"`
		Status string `json:"status"`
	}
	s.Require().NoError(json.Unmarshal(env.Body, &ordem))
	s.True(strings.HasPrefix(ordem.Numero, "OS/"), ordem.Numero)
	s.Equal("pendente", ordem.Status)

	rec, _ = s.do(http.MethodPost, "/api/ordens-servico", s.Tokens["tecnico"], map[string]interface{}{
		"requerimento_ids": []uint64{req.ID},
	})
	s.Equal(http.StatusConflict, rec.Code)

	rec, env = s.do(http.MethodGet, fmt.Sprintf("/api/requerimentos/%d/historico", req.ID), s.Tokens["usuario"], nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var history []entities.StatusHistory
	s.Require().NoError(json.Unmarshal(env.Body, &history))
	s.Len(history, 2)
}

func (s *RouterTestSuite) TestPaginatedList() {
	for i := 0; i < 3; i++ {
		rec, _ := s.do(http.MethodPost, "/api/requerimentos", s.Tokens["usuario"], map[string]interface{}{
			"tipo":          "remocao",
			"requerente_id": s.RequerenteID,
			"arvore_id":     s.ArvoreID,
		})
		s.Require().Equal(http.StatusCreated, rec.Code)
	}

	rec, env := s.do(http.MethodGet, "/api/requerimentos?limit=2&withPagination=true", s.Tokens["usuario"], nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var body struct {
		List       []entities.Requerimento `json:"list"`
		Pagination struct {
			TotalCount uint64 `json:"total_count"`
		} `json:"pagination"`
	}
	s.Require().NoError(json.Unmarshal(env.Body, &body))
	s.Len(body.List, 2)
	s.EqualValues(3, body.Pagination.TotalCount)
}

func (s *RouterTestSuite) TestReportExportsXLSX() {
	rec, _ := s.do(http.MethodPost, "/api/requerimentos", s.Tokens["usuario"], map[string]interface{}{
		"tipo":          "poda",
		"requerente_id": s.RequerenteID,
		"arvore_id":     s.ArvoreID,
	})
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec, _ = s.do(http.MethodGet, "/api/relatorios/requerimentos?format=xlsx", s.Tokens["tecnico"], nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(xlsxMIME, rec.Header().Get(echo.HeaderContentType))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	s.Require().NoError(err)
	defer f.Close()

	rows, err := f.GetRows("Requerimentos")
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal("Número", rows[0][0])
	s.True(strings.HasPrefix(rows[1][0], "REQ/"))

	rec, _ = s.do(http.MethodGet, "/api/relatorios/requerimentos", s.Tokens["usuario"], nil)
	s.Equal(http.StatusForbidden, rec.Code)
}

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
