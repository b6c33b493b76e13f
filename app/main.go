package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"semapa/internal/listeners"
	"semapa/internal/repositories"
	"semapa/internal/routes"
	"semapa/pkg/config"
	"semapa/pkg/customvalidator"
	"semapa/pkg/database/postgresql"
	apperrors "semapa/pkg/errors"
	"semapa/pkg/eventbus"
	"semapa/pkg/filestorage"
	applogger "semapa/pkg/logger"
	appmiddleware "semapa/pkg/middleware"
	"semapa/pkg/service"
	"semapa/pkg/utils"
)

func main() {
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("Pânico durante a requisição",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Erro interno do servidor", err, nil)
				utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))

	metricsRegistry := prometheus.NewRegistry()
	metricsRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	e.Use(appmiddleware.NewHTTPMetrics(metricsRegistry).Middleware)
	e.Use(appmiddleware.RequestLogger(logger.Named("http")))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentDisposition},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{})))

	uploadDir, err := filepath.Abs(cfg.Storage.UploadDir)
	if err != nil {
		logger.Fatal("Não foi possível resolver o diretório de uploads", zap.Error(err))
	}
	fileStorage, err := filestorage.NewLocalFileStorage(uploadDir)
	if err != nil {
		logger.Fatal("Não foi possível preparar o armazenamento de arquivos", zap.Error(err))
	}
	e.Static("/uploads", uploadDir)

	v := validator.New()
	if err := customvalidator.RegisterCustomValidations(v); err != nil {
		logger.Fatal("Erro ao registrar as regras de validação", zap.Error(err))
	}
	e.Validator = utils.NewValidator(v)

	dbConn, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("Falha ao conectar ao banco", zap.Error(err))
	}
	defer dbConn.Close()

	if err := postgresql.Migrate(ctx, dbConn, "up"); err != nil {
		logger.Fatal("Falha ao aplicar migrações", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logger.Fatal("Não foi possível conectar ao Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
	}

	reg := repositories.NewRegistry(dbConn, redisClient, logger)
	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL, logger)

	bus := eventbus.New(logger.Named("eventbus"))
	listeners.NewDashboardCacheListener(reg.Cache, logger).Register(bus)

	routes.InitRouter(e, reg, jwtSvc, fileStorage, bus, cfg, logger)

	go func() {
		logger.Info("Servidor iniciado", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Erro ao iniciar o servidor", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Encerrando o servidor")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Erro ao encerrar o servidor", zap.Error(err))
	}
	bus.Wait()
}
