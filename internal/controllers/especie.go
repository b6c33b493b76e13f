package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"semapa/internal/dto"
	"semapa/internal/services"
	"semapa/pkg/constants"
	apperrors "semapa/pkg/errors"
	"semapa/pkg/utils"
)

type EspecieController struct {
	especieService services.EspecieServiceInterface
	logger         *zap.Logger
}

func NewEspecieController(especieService services.EspecieServiceInterface, logger *zap.Logger) *EspecieController {
	return &EspecieController{especieService: especieService, logger: logger}
}

func (c *EspecieController) GetEspecies(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	list, total, err := c.especieService.GetEspecies(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.PaginatedResponse(ctx, list, total, filter, "Espécies listadas")
}

func (c *EspecieController) FindEspecie(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.especieService.FindEspecie(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Espécie encontrada", http.StatusOK)
}

func (c *EspecieController) CreateEspecie(ctx echo.Context) error {
	var payload dto.CreateEspecieDTO
	if err := bindAndValidate(ctx, &payload, c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.especieService.CreateEspecie(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Espécie criada com sucesso", http.StatusCreated)
}

func (c *EspecieController) UpdateEspecie(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdateEspecieDTO
	if err := bindAndValidate(ctx, &payload, c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.especieService.UpdateEspecie(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Espécie atualizada com sucesso", http.StatusOK)
}

func (c *EspecieController) DeleteEspecie(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.especieService.DeleteEspecie(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Espécie removida", http.StatusOK)
}

// ImportEspecies accepts one XLSX spreadsheet in the "arquivo" field.
func (c *EspecieController) ImportEspecies(ctx echo.Context) error {
	files, closeFiles, err := openUploads(ctx, "arquivo", constants.UploadContextEspecieImport)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer closeFiles()
	if len(files) != 1 {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("arquivo", "envie exatamente uma planilha"), c.logger)
	}

	res, err := c.especieService.ImportEspecies(ctx.Request().Context(), files[0].Conteudo)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	c.logger.Info("Importação de espécies concluída",
		zap.String("arquivo", files[0].ArquivoNome),
		zap.Int("criadas", res.Criadas),
		zap.Int("ignoradas", res.Ignoradas),
		zap.Int("erros", len(res.Erros)),
	)
	return utils.SuccessResponse(ctx, res, "Importação concluída", http.StatusOK)
}
