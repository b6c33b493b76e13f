package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"semapa/internal/dto"
	"semapa/internal/entities"
	"semapa/internal/services"
	"semapa/pkg/utils"
)

type RequerimentoController struct {
	requerimentoService services.RequerimentoServiceInterface
	logger              *zap.Logger
}

func NewRequerimentoController(requerimentoService services.RequerimentoServiceInterface, logger *zap.Logger) *RequerimentoController {
	return &RequerimentoController{requerimentoService: requerimentoService, logger: logger}
}

func (c *RequerimentoController) GetRequerimentos(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	list, total, err := c.requerimentoService.GetRequerimentos(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.PaginatedResponse(ctx, list, total, filter, "Requerimentos listados")
}

func (c *RequerimentoController) FindRequerimento(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.requerimentoService.FindRequerimento(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Requerimento encontrado", http.StatusOK)
}

func (c *RequerimentoController) CreateRequerimento(ctx echo.Context) error {
	var payload dto.CreateRequerimentoDTO
	if err := bindAndValidate(ctx, &payload, c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.requerimentoService.CreateRequerimento(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	c.logger.Info("Requerimento registrado", zap.Uint64("id", res.ID), zap.String("numero", res.Numero))
	return utils.SuccessResponse(ctx, res, "Requerimento registrado com sucesso", http.StatusCreated)
}

func (c *RequerimentoController) UpdateRequerimento(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdateRequerimentoDTO
	if err := bindAndValidate(ctx, &payload, c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.requerimentoService.UpdateRequerimento(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Requerimento atualizado com sucesso", http.StatusOK)
}

func (c *RequerimentoController) Approve(ctx echo.Context) error {
	return c.transition(ctx, "Requerimento aprovado", func(id uint64) (*entities.Requerimento, error) {
		return c.requerimentoService.Approve(ctx.Request().Context(), id)
	})
}

func (c *RequerimentoController) Reject(ctx echo.Context) error {
	var payload dto.RejectRequerimentoDTO
	if err := bindAndValidate(ctx, &payload, c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return c.transition(ctx, "Requerimento negado", func(id uint64) (*entities.Requerimento, error) {
		return c.requerimentoService.Reject(ctx.Request().Context(), id, payload.Motivo)
	})
}

func (c *RequerimentoController) Complete(ctx echo.Context) error {
	return c.transition(ctx, "Requerimento concluído", func(id uint64) (*entities.Requerimento, error) {
		return c.requerimentoService.Complete(ctx.Request().Context(), id)
	})
}

func (c *RequerimentoController) Cancel(ctx echo.Context) error {
	var payload dto.ReasonDTO
	if err := bindAndValidate(ctx, &payload, c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return c.transition(ctx, "Requerimento cancelado", func(id uint64) (*entities.Requerimento, error) {
		return c.requerimentoService.Cancel(ctx.Request().Context(), id, reasonFrom(payload))
	})
}

func (c *RequerimentoController) DeleteRequerimento(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.requerimentoService.DeleteRequerimento(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Requerimento removido", http.StatusOK)
}

func (c *RequerimentoController) History(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.requerimentoService.History(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Histórico do requerimento", http.StatusOK)
}

func (c *RequerimentoController) transition(ctx echo.Context, message string, apply func(id uint64) (*entities.Requerimento, error)) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := apply(id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, message, http.StatusOK)
}
