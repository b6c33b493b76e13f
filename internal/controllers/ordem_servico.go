package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"semapa/internal/dto"
	"semapa/internal/services"
	"semapa/pkg/utils"
)

type OrdemServicoController struct {
	ordemServicoService services.OrdemServicoServiceInterface
	logger              *zap.Logger
}

func NewOrdemServicoController(ordemServicoService services.OrdemServicoServiceInterface, logger *zap.Logger) *OrdemServicoController {
	return &OrdemServicoController{ordemServicoService: ordemServicoService, logger: logger}
}

func (c *OrdemServicoController) GetOrdensServico(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	list, total, err := c.ordemServicoService.GetOrdensServico(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.PaginatedResponse(ctx, list, total, filter, "Ordens de serviço listadas")
}

func (c *OrdemServicoController) FindOrdemServico(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.ordemServicoService.FindOrdemServico(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Ordem de serviço encontrada", http.StatusOK)
}

func (c *OrdemServicoController) CreateOrdemServico(ctx echo.Context) error {
	var payload dto.CreateOrdemServicoDTO
	if err := bindAndValidate(ctx, &payload, c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.ordemServicoService.CreateOrdemServico(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	c.logger.Info("Ordem de serviço emitida",
		zap.Uint64("id", res.ID),
		zap.String("numero", res.Numero),
		zap.Uint64s("requerimentos", res.RequerimentoIDs),
	)
	return utils.SuccessResponse(ctx, res, "Ordem de serviço emitida com sucesso", http.StatusCreated)
}

func (c *OrdemServicoController) UpdateOrdemServico(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdateOrdemServicoDTO
	if err := bindAndValidate(ctx, &payload, c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.ordemServicoService.UpdateOrdemServico(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Ordem de serviço atualizada", http.StatusOK)
}

func (c *OrdemServicoController) Start(ctx echo.Context) error {
	return c.transition(ctx, "Ordem de serviço iniciada", func(id uint64) (*dto.OrdemServicoDTO, error) {
		return c.ordemServicoService.Start(ctx.Request().Context(), id)
	})
}

func (c *OrdemServicoController) Pause(ctx echo.Context) error {
	var payload dto.ReasonDTO
	if err := bindAndValidate(ctx, &payload, c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return c.transition(ctx, "Ordem de serviço pausada", func(id uint64) (*dto.OrdemServicoDTO, error) {
		return c.ordemServicoService.Pause(ctx.Request().Context(), id, reasonFrom(payload))
	})
}

func (c *OrdemServicoController) Complete(ctx echo.Context) error {
	var payload dto.CompleteOrdemServicoDTO
	if err := bindAndValidate(ctx, &payload, c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return c.transition(ctx, "Ordem de serviço concluída", func(id uint64) (*dto.OrdemServicoDTO, error) {
		return c.ordemServicoService.Complete(ctx.Request().Context(), id, payload)
	})
}

func (c *OrdemServicoController) Cancel(ctx echo.Context) error {
	var payload dto.CancelOrdemServicoDTO
	if err := bindAndValidate(ctx, &payload, c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return c.transition(ctx, "Ordem de serviço cancelada", func(id uint64) (*dto.OrdemServicoDTO, error) {
		return c.ordemServicoService.Cancel(ctx.Request().Context(), id, payload.Motivo)
	})
}

func (c *OrdemServicoController) AssignTechnician(ctx echo.Context) error {
	var payload dto.AssignTechnicianDTO
	if err := bindAndValidate(ctx, &payload, c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return c.transition(ctx, "Responsável atribuído", func(id uint64) (*dto.OrdemServicoDTO, error) {
		return c.ordemServicoService.AssignTechnician(ctx.Request().Context(), id, payload.ResponsavelID)
	})
}

func (c *OrdemServicoController) GetVistorias(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.ordemServicoService.GetVistorias(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Vistorias da ordem de serviço", http.StatusOK)
}

func (c *OrdemServicoController) History(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.ordemServicoService.History(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Histórico da ordem de serviço", http.StatusOK)
}

func (c *OrdemServicoController) transition(ctx echo.Context, message string, apply func(id uint64) (*dto.OrdemServicoDTO, error)) error {
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
