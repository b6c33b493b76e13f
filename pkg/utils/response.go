package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "semapa/pkg/errors"
	"semapa/pkg/types"
)

type HttpResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

type ListBody struct {
	List       interface{}      `json:"list"`
	Pagination types.Pagination `json:"pagination"`
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	return ctx.JSON(code, &HttpResponse{
		Status:  true,
		Body:    body,
		Message: message,
	})
}

// PaginatedResponse wraps a list as {"list": ..., "pagination": ...}.
func PaginatedResponse(ctx echo.Context, list interface{}, total uint64, filter types.Filter, message string) error {
	if !filter.WithPagination {
		return SuccessResponse(ctx, list, message, http.StatusOK)
	}
	return SuccessResponse(ctx, ListBody{
		List:       list,
		Pagination: types.NewPagination(total, filter.Page, filter.Limit),
	}, message, http.StatusOK)
}

// ErrorResponse converts any error into the JSON envelope with the matching status.
// Server errors are logged when a logger is supplied and their details are hidden.
func ErrorResponse(ctx echo.Context, err error, logger ...*zap.Logger) error {
	code := apperrors.HTTPStatus(err)
	message := err.Error()
	var body interface{} = struct{}{}

	var validationErrs validator.ValidationErrors
	var httpErr *apperrors.HttpError
	switch {
	case errors.As(err, &validationErrs):
		code = http.StatusBadRequest
		message = formatValidationErrors(validationErrs)
	case errors.As(err, &httpErr):
		message = httpErr.Message
		if httpErr.Context != nil {
			body = httpErr.Context
		}
	}

	if code >= http.StatusInternalServerError {
		if len(logger) > 0 && logger[0] != nil {
			logger[0].Error("Erro interno",
				zap.String("method", ctx.Request().Method),
				zap.String("uri", ctx.Request().RequestURI),
				zap.Error(err),
			)
		}
		message = "Erro interno do servidor"
	}

	return ctx.JSON(code, &HttpResponse{
		Status:  false,
		Body:    body,
		Message: message,
	})
}

func formatValidationErrors(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("campo '%s' falhou na regra '%s=%s'", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("campo '%s' falhou na regra '%s'", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
