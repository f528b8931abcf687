package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"backoffice/pkg/errors"
)

// Success writes the success envelope
func Success(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, errors.Response{
		Success: true,
		Data:    data,
		Message: message,
		TraceID: c.GetString(TraceIDKey),
	})
}

// QueryID reads the required ?id= parameter. A missing id is reported as a validation error.
func QueryID(c *gin.Context, resource string) (string, bool) {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		c.Error(errors.NewValidation(resource+" ID is required", errors.FieldErrors{"id": "id is required"}))
		return "", false
	}
	return id, true
}

// BindError converts a JSON binding failure to a validation error
func BindError(err error) error {
	return errors.NewValidation("invalid request body", errors.FieldErrors{"body": err.Error()})
}
