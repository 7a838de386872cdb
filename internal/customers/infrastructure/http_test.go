package infrastructure

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-shop/internal/customers/adapters"
	"go-shop/internal/customers/application"
	"go-shop/pkg/db"
	"go-shop/pkg/errors"
	"go-shop/pkg/events"
	"go-shop/pkg/logger"
	"go-shop/pkg/middleware"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	conn, err := db.NewConnection(db.Config{Driver: "sqlite", DSN: "file::memory:"})
	require.NoError(t, err)

	repo := adapters.NewGormCustomerRepository(conn)
	require.NoError(t, repo.Migrate())
	useCase := application.NewCustomerUseCase(repo, adapters.NewEventPublisher(events.Discard{}), logger.NewNop())

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.TraceID(), middleware.ErrorHandler(logger.NewNop()))
	NewHTTPHandler(useCase).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func send(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeCustomer(t *testing.T, w *httptest.ResponseRecorder) CustomerResponse {
	t.Helper()
	var resp struct {
		Data    CustomerResponse `json:"data"`
		TraceID string           `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.TraceID)
	return resp.Data
}

const ada = `{"email":"ada@example.com","first_name":"Ada","last_name":"Lovelace","phone":"555-0100"}`

func TestHTTPHandler_CreateAndGetCustomer(t *testing.T) {
	r := newRouter(t)

	w := send(r, http.MethodPost, "/api/v1/customers", ada)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeCustomer(t, w)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "ada@example.com", created.Email)
	assert.Equal(t, "555-0100", created.Phone)

	w = send(r, http.MethodGet, "/api/v1/customers/"+strconv.FormatUint(uint64(created.ID), 10), "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeCustomer(t, w)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Lovelace", got.LastName)
}

func TestHTTPHandler_CreateCustomer_DuplicateEmail(t *testing.T) {
	r := newRouter(t)
	require.Equal(t, http.StatusCreated, send(r, http.MethodPost, "/api/v1/customers", ada).Code)

	w := send(r, http.MethodPost, "/api/v1/customers", ada)

	require.Equal(t, http.StatusConflict, w.Code)
	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errors.CodeConflict, resp.Error.Code)
}

func TestHTTPHandler_CreateCustomer_InvalidBody(t *testing.T) {
	r := newRouter(t)

	for _, body := range []string{
		`{"email":"not-an-email","first_name":"Ada","last_name":"Lovelace"}`,
		`{"email":"ada@example.com","last_name":"Lovelace"}`,
		`{`,
	} {
		w := send(r, http.MethodPost, "/api/v1/customers", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestHTTPHandler_GetCustomer_Errors(t *testing.T) {
	r := newRouter(t)

	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodGet, "/api/v1/customers/abc", "").Code)

	w := send(r, http.MethodGet, "/api/v1/customers/42", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CUSTOMER_NOT_FOUND", resp.Error.Reason)
}
