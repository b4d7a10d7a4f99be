package services

import (
	"errors"

	"github.com/soaringjerry/stylus/internal/utils"
)

type ErrorCode string

const (
	ErrorInvalid    ErrorCode = "invalid"
	ErrorNotFound   ErrorCode = "not_found"
	ErrorConflict   ErrorCode = "conflict"
	ErrorBadGateway ErrorCode = "bad_gateway"
)

// ErrSessionExists is returned by stores when a create hits a live sessionId.
var ErrSessionExists = errors.New("survey response already exists for session")

// Issue is one field-level validation failure. Path holds field names and
// array indexes from the request root, e.g. ["samples", 0, "title"].
type Issue struct {
	Path    []any  `json:"path"`
	Message string `json:"message"`
}

// ServiceError is the typed error handed from services to the HTTP layer.
// Key is a message catalog key (see utils.T); Detail is for logs only.
type ServiceError struct {
	Code   ErrorCode
	Key    string
	Issues []Issue
	Detail error
}

func (e *ServiceError) Error() string {
	msg := utils.T("en", e.Key)
	if e.Detail != nil {
		return msg + ": " + e.Detail.Error()
	}
	return msg
}

func (e *ServiceError) Unwrap() error { return e.Detail }

func NewInvalidError(key string) error  { return &ServiceError{Code: ErrorInvalid, Key: key} }
func NewNotFoundError(key string) error { return &ServiceError{Code: ErrorNotFound, Key: key} }
func NewConflictError(key string) error { return &ServiceError{Code: ErrorConflict, Key: key} }

// NewValidationError reports schema failures with their field issues.
func NewValidationError(issues []Issue) error {
	return &ServiceError{Code: ErrorInvalid, Key: "error.validation", Issues: issues}
}

// NewBadGatewayError wraps an upstream failure. The detail never reaches clients.
func NewBadGatewayError(key string, detail error) error {
	return &ServiceError{Code: ErrorBadGateway, Key: key, Detail: detail}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
