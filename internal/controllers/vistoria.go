package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"semapa/internal/dto"
	"semapa/internal/entities"
	"semapa/internal/services"
	"semapa/pkg/constants"
	apperrors "semapa/pkg/errors"
	"semapa/pkg/utils"
)

type VistoriaController struct {
	vistoriaService services.VistoriaServiceInterface
	logger          *zap.Logger
}

func NewVistoriaController(vistoriaService services.VistoriaServiceInterface, logger *zap.Logger) *VistoriaController {
	return &VistoriaController{vistoriaService: vistoriaService, logger: logger}
}

func (c *VistoriaController) GetVistorias(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	list, total, err := c.vistoriaService.GetVistorias(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.PaginatedResponse(ctx, list, total, filter, "Vistorias listadas")
}

// Agenda reads data_inicio and data_fim (AAAA-MM-DD) and an optional tecnico_id.
func (c *VistoriaController) Agenda(ctx echo.Context) error {
	from, err := utils.ParseDate(ctx.QueryParam("data_inicio"))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("data_inicio", "%s", err.Error()), c.logger)
	}
	to, err := utils.ParseDate(ctx.QueryParam("data_fim"))
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("data_fim", "%s", err.Error()), c.logger)
	}

	var tecnicoID *uint64
	if raw := ctx.QueryParam("tecnico_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return utils.ErrorResponse(ctx, apperrors.NewValidationError("tecnico_id", "valor inválido %q", raw), c.logger)
		}
		tecnicoID = &id
	}

	res, err := c.vistoriaService.Agenda(ctx.Request().Context(), from, to, tecnicoID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Agenda de vistorias", http.StatusOK)
}

func (c *VistoriaController) FindVistoria(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.vistoriaService.FindVistoria(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Vistoria encontrada", http.StatusOK)
}

func (c *VistoriaController) CreateVistoria(ctx echo.Context) error {
	var payload dto.CreateVistoriaDTO
	if err := bindAndValidate(ctx, &payload, c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.vistoriaService.CreateVistoria(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Vistoria agendada com sucesso", http.StatusCreated)
}

func (c *VistoriaController) UpdateVistoria(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdateVistoriaDTO
	if err := bindAndValidate(ctx, &payload, c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.vistoriaService.UpdateVistoria(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Vistoria atualizada", http.StatusOK)
}

func (c *VistoriaController) Start(ctx echo.Context) error {
	return c.transition(ctx, "Vistoria iniciada", func(id uint64) (*entities.Vistoria, error) {
		return c.vistoriaService.Start(ctx.Request().Context(), id)
	})
}

// Execute accepts either a JSON body or a multipart form with the findings as
// JSON in "data" and the photos in "fotos".
func (c *VistoriaController) Execute(ctx echo.Context) error {
	var payload dto.ExecuteVistoriaDTO
	isMultipart := strings.HasPrefix(ctx.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)

	if isMultipart {
		if data := ctx.FormValue("data"); data != "" {
			if err := json.Unmarshal([]byte(data), &payload); err != nil {
				c.logger.Warn("Execute: JSON inválido em 'data'", zap.Error(err))
				return utils.ErrorResponse(ctx,
					apperrors.NewHttpError(http.StatusBadRequest, "JSON inválido no campo 'data'", err, nil),
					c.logger,
				)
			}
		}
		if err := ctx.Validate(&payload); err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
	} else if err := bindAndValidate(ctx, &payload, c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var fotos []dto.FotoUpload
	if isMultipart {
		files, closeFiles, err := openUploads(ctx, "fotos", constants.UploadContextVistoriaFoto)
		if err != nil {
			return utils.ErrorResponse(ctx, err, c.logger)
		}
		defer closeFiles()
		fotos = files
	}

	return c.transition(ctx, "Vistoria concluída", func(id uint64) (*entities.Vistoria, error) {
		return c.vistoriaService.Execute(ctx.Request().Context(), id, payload, fotos)
	})
}

func (c *VistoriaController) Cancel(ctx echo.Context) error {
	var payload dto.ReasonDTO
	if err := bindAndValidate(ctx, &payload, c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return c.transition(ctx, "Vistoria cancelada", func(id uint64) (*entities.Vistoria, error) {
		return c.vistoriaService.Cancel(ctx.Request().Context(), id, reasonFrom(payload))
	})
}

func (c *VistoriaController) Reschedule(ctx echo.Context) error {
	var payload dto.RescheduleVistoriaDTO
	if err := bindAndValidate(ctx, &payload, c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return c.transition(ctx, "Vistoria reagendada", func(id uint64) (*entities.Vistoria, error) {
		return c.vistoriaService.Reschedule(ctx.Request().Context(), id, payload)
	})
}

func (c *VistoriaController) AddFotos(ctx echo.Context) error {
	files, closeFiles, err := openUploads(ctx, "fotos", constants.UploadContextVistoriaFoto)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer closeFiles()
	if len(files) == 0 {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("fotos", "nenhuma foto enviada"), c.logger)
	}

	return c.transition(ctx, "Fotos anexadas", func(id uint64) (*entities.Vistoria, error) {
		return c.vistoriaService.AddFotos(ctx.Request().Context(), id, files)
	})
}

func (c *VistoriaController) DeleteVistoria(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.vistoriaService.DeleteVistoria(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Vistoria removida", http.StatusOK)
}

func (c *VistoriaController) History(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.vistoriaService.History(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Histórico da vistoria", http.StatusOK)
}

func (c *VistoriaController) transition(ctx echo.Context, message string, apply func(id uint64) (*entities.Vistoria, error)) error {
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
