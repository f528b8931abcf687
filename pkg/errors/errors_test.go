package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestToResponse_ValidationExposesFields(t *testing.T) {
	err := NewFieldValidation(FieldErrors{"customer.phone": "phone must be 10 digits"})

	code, resp := ToResponse(err, "trace-1")

	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, resp.Success)
	assert.Equal(t, "validation failed", resp.Message)
	assert.Equal(t, "phone must be 10 digits", resp.Errors["customer.phone"])
	assert.Equal(t, "trace-1", resp.TraceID)
}

func TestToResponse_HidesInternalCause(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"internal", NewInternal("insert into orders failed", fmt.Errorf("connection reset"))},
		{"reconciliation", NewReconciliation("p1", fmt.Errorf("timeout"))},
		{"plain error", fmt.Errorf("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := ToResponse(tt.err, "")

			assert.Equal(t, http.StatusInternalServerError, code)
			assert.Equal(t, genericMessage, resp.Message)
			assert.Empty(t, resp.Errors)
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewValidation("bad", nil), http.StatusBadRequest},
		{NewNotFound("Order", "o1"), http.StatusNotFound},
		{NewConflict("in use"), http.StatusConflict},
		{NewInternal("db", nil), http.StatusInternalServerError},
		{NewReconciliation("p1", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestGRPCStatus(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
		msg  string
	}{
		{NewValidation("Product ID is required", nil), codes.InvalidArgument, "Product ID is required"},
		{NewNotFound("Product", "p1"), codes.NotFound, "Product with id 'p1' not found"},
		{NewConflict("in use"), codes.FailedPrecondition, "in use"},
		{NewInternal("dial tcp 10.0.0.3:27017", nil), codes.Internal, genericMessage},
	}

	for _, tt := range tests {
		st, ok := status.FromError(GRPCStatus(tt.err))
		require.True(t, ok)
		assert.Equal(t, tt.want, st.Code())
		assert.Equal(t, tt.msg, st.Message())
	}
}

func TestFromGRPCStatus_RoundTrip(t *testing.T) {
	appErr := FromGRPCStatus(GRPCStatus(NewNotFound("Product", "p1")))

	assert.Equal(t, CodeNotFound, appErr.Code)
	assert.Equal(t, "Product with id 'p1' not found", appErr.Message)
}

func TestWrap_PreservesCode(t *testing.T) {
	wrapped := Wrap(NewConflict("category has products"), "delete category")

	assert.Equal(t, CodeConflict, wrapped.Code)
	assert.Equal(t, "delete category: category has products", wrapped.Message)
	assert.True(t, Is(wrapped, CodeConflict))

	plain := Wrap(fmt.Errorf("eof"), "decode")
	assert.Equal(t, CodeInternal, plain.Code)
}
