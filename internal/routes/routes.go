package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"semapa/internal/controllers"
	"semapa/internal/repositories"
	"semapa/internal/services"
	"semapa/pkg/config"
	"semapa/pkg/filestorage"
	"semapa/pkg/middleware"
	"semapa/pkg/service"
	"semapa/pkg/utils"
)

// InitRouter builds every service over reg and mounts the API under /api.
func InitRouter(
	e *echo.Echo,
	reg *repositories.Registry,
	jwtSvc service.JWTService,
	fileStorage filestorage.FileStorageInterface,
	bus services.EventPublisher,
	cfg *config.Config,
	logger *zap.Logger,
) {
	logger.Info("InitRouter: registrando rotas")

	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, logger.Named("auth"))

	base := services.NewBaseService(reg.Users, reg.Historico, bus, logger)

	var (
		authService         = services.NewAuthService(base, reg.Users, reg.Cache, cfg.Auth)
		userService         = services.NewUserService(base, reg.Users)
		especieService      = services.NewEspecieService(base, reg.Especies)
		requerenteService   = services.NewRequerenteService(base, reg.Requerentes)
		arvoreService       = services.NewArvoreService(base, reg.Arvores, reg.Especies, fileStorage)
		requerimentoService = services.NewRequerimentoService(base, reg)
		ordemServicoService = services.NewOrdemServicoService(base, reg)
		vistoriaService     = services.NewVistoriaService(base, reg, fileStorage)
		dashboardService    = services.NewDashboardService(base, reg, cfg.Cache.DashboardTTL)
		reportService       = services.NewReportService(base, reg)
	)

	api.GET("/health", func(c echo.Context) error {
		return utils.SuccessResponse(c, nil, "ok", http.StatusOK)
	})

	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, secureGroup, controllers.NewAuthController(authService, jwtSvc, logger.Named("auth")))
	runUserRouter(secureGroup, controllers.NewUserController(userService, logger), authMW)
	runEspecieRouter(secureGroup, controllers.NewEspecieController(especieService, logger), authMW)
	runRequerenteRouter(secureGroup, controllers.NewRequerenteController(requerenteService, logger), authMW)
	runArvoreRouter(secureGroup, controllers.NewArvoreController(arvoreService, logger), authMW)
	runRequerimentoRouter(secureGroup, controllers.NewRequerimentoController(requerimentoService, logger), authMW)
	runOrdemServicoRouter(secureGroup, controllers.NewOrdemServicoController(ordemServicoService, logger), authMW)
	runVistoriaRouter(secureGroup, controllers.NewVistoriaController(vistoriaService, logger), authMW)
	runReportRouter(
		secureGroup,
		controllers.NewDashboardController(dashboardService, logger),
		controllers.NewReportController(reportService, logger),
		authMW,
	)

	logger.Info("InitRouter: rotas registradas")
}
