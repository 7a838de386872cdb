package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOrderMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetrics(reg)

	m.OrderPlaced(5)
	m.OrderPlaced(2)
	m.PlacementFailed("INSUFFICIENT_STOCK")
	m.PlacementFailed("")
	m.StatusChanged("CONFIRMED")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.placed))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.unitsReserved))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("INSUFFICIENT_STOCK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("CONFIRMED")))
}

func TestOrderMetrics_NilIsNoop(t *testing.T) {
	var m *OrderMetrics
	assert.NotPanics(t, func() {
		m.OrderPlaced(1)
		m.PlacementFailed("x")
		m.StatusChanged("SHIPPED")
	})
}

func TestHTTPMetrics_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg, "test")

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/7", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/items/:id", "204")))
}
