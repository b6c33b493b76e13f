package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// JWT
	ErrInvalidSigningMethod = fmt.Errorf("método de assinatura do token inválido")
	ErrInvalidToken         = fmt.Errorf("token inválido")
	ErrTokenExpired         = fmt.Errorf("token expirado")
	ErrTokenNotYetValid     = fmt.Errorf("token ainda não é válido")
	ErrTokenIsNotRefresh    = fmt.Errorf("o token não é um refresh token")
	ErrTokenIsNotAccess     = fmt.Errorf("o token não é um access token")

	// Autenticação
	ErrEmptyAuthHeader    = fmt.Errorf("cabeçalho Authorization ausente")
	ErrInvalidAuthHeader  = fmt.Errorf("formato do cabeçalho Authorization inválido")
	ErrInvalidCredentials = fmt.Errorf("email ou senha inválidos")
	ErrAccountLocked      = fmt.Errorf("conta bloqueada temporariamente por excesso de tentativas")
	ErrUserInactive       = fmt.Errorf("usuário inativo")
	ErrUnauthorized       = fmt.Errorf("não autenticado")
	ErrForbidden          = fmt.Errorf("acesso negado")

	// Contexto
	ErrUserIDNotFoundInContext = fmt.Errorf("UserID não encontrado no contexto da requisição")

	// Gerais
	ErrNotFound   = fmt.Errorf("registro não encontrado")
	ErrBadRequest = fmt.Errorf("requisição inválida")
	ErrConflict   = fmt.Errorf("conflito com o estado atual")
)

// ValidationError reports a malformed or missing input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Entity string
	ID     uint64
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s não encontrado(a)", e.Entity)
	}
	return fmt.Sprintf("%s #%d não encontrado(a)", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NewNotFoundError(entity string, id uint64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	if e.Reason == "" {
		return ErrUnauthorized.Error()
	}
	return e.Reason
}

func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }

func NewUnauthorizedError(reason string) error {
	return &UnauthorizedError{Reason: reason}
}

// ForbiddenError means the actor is known but lacks the level for Operation.
type ForbiddenError struct {
	Operation string
	Required  int
	Actual    int
}

func (e *ForbiddenError) Error() string {
	if e.Required == 0 {
		return fmt.Sprintf("acesso negado à operação %q", e.Operation)
	}
	return fmt.Sprintf("acesso negado à operação %q: nível %d exigido, nível atual %d", e.Operation, e.Required, e.Actual)
}

func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

// ConflictError reports a violated linkage rule or a uniqueness clash.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

func NewConflictError(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// StateError reports a lifecycle transition requested from a status that does not allow it.
type StateError struct {
	Entity string
	Action string
	Status string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: ação %q não permitida no status %q", e.Entity, e.Action, e.Status)
}

func NewStateError(entity, action, status string) error {
	return &StateError{Entity: entity, Action: action, Status: status}
}

// HttpError carries a transport-level status and message to the response layer.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: context}
}

func NewBadRequestError(message string) *HttpError {
	return NewHttpError(http.StatusBadRequest, message, ErrBadRequest, nil)
}

// HTTPStatus maps an error from any layer to its response status code.
func HTTPStatus(err error) int {
	var (
		httpErr       *HttpError
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		unauthErr     *UnauthorizedError
		forbiddenErr  *ForbiddenError
		conflictErr   *ConflictError
		stateErr      *StateError
	)
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr), errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &unauthErr), errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrEmptyAuthHeader), errors.Is(err, ErrInvalidAuthHeader),
		errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenNotYetValid), errors.Is(err, ErrTokenIsNotAccess),
		errors.Is(err, ErrTokenIsNotRefresh), errors.Is(err, ErrInvalidSigningMethod),
		errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUserInactive):
		return http.StatusUnauthorized
	case errors.As(err, &forbiddenErr), errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrAccountLocked):
		return http.StatusTooManyRequests
	case errors.As(err, &conflictErr), errors.As(err, &stateErr), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
