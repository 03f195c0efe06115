// Package services provides the business logic layer between handlers and
// the snapshot store: loading steps, deriving metrics, and shaping view data.
package services

import (
	"errors"

	"github.com/shardviz/shardviz/internal/snapshot"
	"github.com/shardviz/shardviz/internal/store"
)

// Error codes returned by the service layer.
const (
	CodeRunNotFound     = "RUN_NOT_FOUND"
	CodeStepNotFound    = "STEP_NOT_FOUND"
	CodeInvalidSnapshot = "INVALID_SNAPSHOT"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeInternal        = "INTERNAL"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// classify maps store and schema errors onto service error codes. SchemaError
// and NotFoundError pass through with their original message: a malformed or
// missing snapshot is an upstream data problem the service does not recover
// from.
func classify(err error) *ServiceError {
	var notFound *store.NotFoundError
	if errors.As(err, &notFound) {
		code := CodeStepNotFound
		if notFound.Step < 0 {
			code = CodeRunNotFound
		}
		return NewServiceError(code, notFound.Error())
	}

	var schemaErr *snapshot.SchemaError
	if errors.As(err, &schemaErr) {
		return NewServiceError(CodeInvalidSnapshot, schemaErr.Error())
	}

	if errors.Is(err, store.ErrInvalidArgument) {
		return NewServiceError(CodeInvalidArgument, err.Error())
	}

	return &ServiceError{
		Code:    CodeInternal,
		Message: "internal error",
		Details: map[string]interface{}{"error": err.Error()},
	}
}
