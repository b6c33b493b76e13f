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

type ArvoreController struct {
	arvoreService services.ArvoreServiceInterface
	logger        *zap.Logger
}

func NewArvoreController(arvoreService services.ArvoreServiceInterface, logger *zap.Logger) *ArvoreController {
	return &ArvoreController{arvoreService: arvoreService, logger: logger}
}

func (c *ArvoreController) GetArvores(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	list, total, err := c.arvoreService.GetArvores(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.PaginatedResponse(ctx, list, total, filter, "Árvores listadas")
}

func (c *ArvoreController) Mapa(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	res, err := c.arvoreService.Mapa(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Mapa de árvores", http.StatusOK)
}

func (c *ArvoreController) FindArvore(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.arvoreService.FindArvore(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Árvore encontrada", http.StatusOK)
}

func (c *ArvoreController) CreateArvore(ctx echo.Context) error {
	var payload dto.CreateArvoreDTO
	if err := bindAndValidate(ctx, &payload, c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.arvoreService.CreateArvore(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Árvore cadastrada com sucesso", http.StatusCreated)
}

func (c *ArvoreController) UpdateArvore(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdateArvoreDTO
	if err := bindAndValidate(ctx, &payload, c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.arvoreService.UpdateArvore(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Árvore atualizada com sucesso", http.StatusOK)
}

func (c *ArvoreController) DeleteArvore(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.arvoreService.DeleteArvore(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Árvore removida", http.StatusOK)
}

// UploadFoto replaces the tree photo with the file sent in "foto".
func (c *ArvoreController) UploadFoto(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	files, closeFiles, err := openUploads(ctx, "foto", constants.UploadContextArvoreFoto)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer closeFiles()
	if len(files) != 1 {
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("foto", "envie exatamente uma foto"), c.logger)
	}

	res, err := c.arvoreService.UploadFoto(ctx.Request().Context(), id, files[0])
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Foto da árvore atualizada", http.StatusOK)
}
