package controllers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"semapa/internal/dto"
	"semapa/pkg/constants"
	apperrors "semapa/pkg/errors"
	"semapa/pkg/utils"
)

func parseIDParam(ctx echo.Context, name string) (uint64, error) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewHttpError(
			http.StatusBadRequest,
			"ID inválido",
			err,
			map[string]interface{}{"param": raw},
		)
	}
	return id, nil
}

// bindAndValidate decodes the request body into payload and runs the registered validator.
func bindAndValidate(ctx echo.Context, payload interface{}, logger *zap.Logger) error {
	if err := ctx.Bind(payload); err != nil {
		logger.Warn("Corpo da requisição inválido", zap.String("uri", ctx.Request().RequestURI), zap.Error(err))
		return apperrors.NewBadRequestError("Formato de dados inválido")
	}
	if err := ctx.Validate(payload); err != nil {
		return err
	}
	return nil
}

// openUploads validates every file sent under field against the upload context
// and opens it. The returned closer must be called once the service is done.
func openUploads(ctx echo.Context, field string, uploadContext constants.UploadContext) ([]dto.FotoUpload, func(), error) {
	noop := func() {}

	form, err := ctx.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return nil, noop, nil
		}
		return nil, noop, apperrors.NewHttpError(http.StatusBadRequest, "Formulário multipart inválido", err, nil)
	}

	headers := form.File[field]
	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	uploads := make([]dto.FotoUpload, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			closeAll()
			return nil, noop, apperrors.NewHttpError(http.StatusBadRequest, "Não foi possível abrir o arquivo", err,
				map[string]interface{}{"arquivo": header.Filename})
		}
		opened = append(opened, file)

		if err := utils.ValidateFile(header, file, uploadContext.String()); err != nil {
			closeAll()
			return nil, noop, err
		}
		uploads = append(uploads, dto.FotoUpload{
			ArquivoNome: header.Filename,
			Tamanho:     header.Size,
			Conteudo:    file,
		})
	}
	return uploads, closeAll, nil
}

// reasonFrom treats a blank reason as absent.
func reasonFrom(payload dto.ReasonDTO) *string {
	if payload.Motivo == nil {
		return nil
	}
	return utils.NilIfEmpty(strings.TrimSpace(*payload.Motivo))
}
