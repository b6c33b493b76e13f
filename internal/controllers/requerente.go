package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"semapa/internal/dto"
	"semapa/internal/services"
	"semapa/pkg/utils"
)

type RequerenteController struct {
	requerenteService services.RequerenteServiceInterface
	logger            *zap.Logger
}

func NewRequerenteController(requerenteService services.RequerenteServiceInterface, logger *zap.Logger) *RequerenteController {
	return &RequerenteController{requerenteService: requerenteService, logger: logger}
}

func (c *RequerenteController) GetRequerentes(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	list, total, err := c.requerenteService.GetRequerentes(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.PaginatedResponse(ctx, list, total, filter, "Requerentes listados")
}

func (c *RequerenteController) FindRequerente(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.requerenteService.FindRequerente(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Requerente encontrado", http.StatusOK)
}

func (c *RequerenteController) CreateRequerente(ctx echo.Context) error {
	var payload dto.CreateRequerenteDTO
	if err := bindAndValidate(ctx, &payload, c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.requerenteService.CreateRequerente(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Requerente criado com sucesso", http.StatusCreated)
}

func (c *RequerenteController) UpdateRequerente(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdateRequerenteDTO
	if err := bindAndValidate(ctx, &payload, c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.requerenteService.UpdateRequerente(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Requerente atualizado com sucesso", http.StatusOK)
}

func (c *RequerenteController) DeleteRequerente(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.requerenteService.DeleteRequerente(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Requerente removido", http.StatusOK)
}
