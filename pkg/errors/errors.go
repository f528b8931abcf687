package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error codes
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeInternal       = "INTERNAL_ERROR"
	CodeReconciliation = "RECONCILIATION_ERROR"
)

// genericMessage is what clients see for persistence failures
const genericMessage = "An error occurred"

// AppError represents an application error
type AppError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// FieldErrors maps a field path such as "customer.phone" to a message
type FieldErrors map[string]string

// Response is the JSON envelope shared by every endpoint
type Response struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	TraceID string            `json:"trace_id,omitempty"`
}

// ToResponse converts an error to the envelope and its HTTP status.
// Internal and reconciliation errors never leak their cause.
func ToResponse(err error, traceID string) (int, Response) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = NewInternal(genericMessage, err)
	}

	resp := Response{
		Success: false,
		Message: appErr.Message,
		TraceID: traceID,
	}

	switch appErr.Code {
	case CodeInternal, CodeReconciliation:
		resp.Message = genericMessage
	case CodeValidation:
		if fields, ok := appErr.Details.(FieldErrors); ok {
			resp.Errors = fields
		}
	}

	return HTTPStatus(appErr), resp
}

// ToJSON converts an error to the standard JSON response
func ToJSON(err error, traceID string) (int, []byte) {
	code, resp := ToResponse(err, traceID)
	data, _ := json.Marshal(resp)
	return code, data
}

// HTTPStatus returns the HTTP status code for an error
func HTTPStatus(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}

	switch appErr.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// GRPCStatus converts an error to a gRPC status
func GRPCStatus(err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return status.Error(codes.Internal, "internal error")
	}

	var code codes.Code
	switch appErr.Code {
	case CodeValidation:
		code = codes.InvalidArgument
	case CodeNotFound:
		code = codes.NotFound
	case CodeConflict:
		code = codes.FailedPrecondition
	default:
		return status.Error(codes.Internal, genericMessage)
	}

	return status.Error(code, appErr.Message)
}

// FromGRPCStatus converts a gRPC status to an AppError
func FromGRPCStatus(err error) *AppError {
	st, ok := status.FromError(err)
	if !ok {
		return NewInternal("unknown error", err)
	}

	var code string
	switch st.Code() {
	case codes.InvalidArgument:
		code = CodeValidation
	case codes.NotFound:
		code = CodeNotFound
	case codes.FailedPrecondition, codes.AlreadyExists:
		code = CodeConflict
	default:
		code = CodeInternal
	}

	return &AppError{
		Code:    code,
		Message: st.Message(),
		Err:     err,
	}
}

// Constructor functions

// NewValidation creates a validation error
func NewValidation(message string, details interface{}) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Details: details,
	}
}

// NewFieldValidation creates a validation error carrying every field violation
func NewFieldValidation(fields FieldErrors) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: "validation failed",
		Details: fields,
	}
}

// NewNotFound creates a not found error
func NewNotFound(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with id '%v' not found", resource, id),
	}
}

// NewConflict creates a conflict error
func NewConflict(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

// NewInternal creates an internal (persistence) error
func NewInternal(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Err:     err,
	}
}

// NewReconciliation creates a reconciliation error for one product
func NewReconciliation(productID string, err error) *AppError {
	return &AppError{
		Code:    CodeReconciliation,
		Message: fmt.Sprintf("failed to reconcile product '%s'", productID),
		Details: map[string]string{"product_id": productID},
		Err:     err,
	}
}

// Is checks if an error matches a specific code
func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// As is errors.As from the standard library, re-exported for callers importing this package as errors
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message + ": " + appErr.Message,
			Details: appErr.Details,
			Err:     err,
		}
	}
	return NewInternal(message, err)
}
