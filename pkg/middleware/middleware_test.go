package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/pkg/errors"
	"backoffice/pkg/logger"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceID())
	r.Use(ErrorHandler(logger.NewNop()))
	return r
}

func serve(t *testing.T, r *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, errors.Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var resp errors.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec, resp
}

func TestErrorHandler_RendersEnvelope(t *testing.T) {
	r := newRouter()
	r.GET("/x", func(c *gin.Context) {
		c.Error(errors.NewFieldValidation(errors.FieldErrors{"name": "name is required"}))
	})
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(TraceIDHeader, "trace-7")

	rec, resp := serve(t, r, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "name is required", resp.Errors["name"])
	assert.Equal(t, "trace-7", resp.TraceID)
	assert.Equal(t, "trace-7", rec.Header().Get(TraceIDHeader))
}

func TestErrorHandler_RecoversPanic(t *testing.T) {
	r := newRouter()
	r.GET("/boom", func(c *gin.Context) { panic("nil map") })

	rec, resp := serve(t, r, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.TraceID)
	assert.NotContains(t, resp.Message, "nil map")
}

func TestQueryID_Missing(t *testing.T) {
	r := newRouter()
	r.DELETE("/products", func(c *gin.Context) {
		if _, ok := QueryID(c, "Product"); !ok {
			return
		}
		Success(c, http.StatusOK, "deleted", nil)
	})

	rec, resp := serve(t, r, httptest.NewRequest(http.MethodDelete, "/products?id=%20", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Product ID is required", resp.Message)
}

func TestCORS_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS())
	r.OPTIONS("/orders", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/orders", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
