package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetrics_RecordRequestAndError(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/users", http.MethodGet, 200, 15*time.Millisecond)
	m.RecordRequest("/users", http.MethodGet, 200, 5*time.Millisecond)
	m.RecordError("/users/:id", http.MethodDelete, "NOT_FOUND")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestCount.WithLabelValues(http.MethodGet, "/users", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorCount.WithLabelValues(http.MethodDelete, "/users/:id", "NOT_FOUND")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", http.MethodGet, 200, time.Millisecond)
	m.RecordError("/", http.MethodGet, "X")
}

func TestRequestLogger_AssignsRequestIDAndCountsRoute(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/users/:id", func(c *fiber.Ctx) error {
		return c.SendString(RequestID(c))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/42", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues(http.MethodGet, "/users/:id", "200")))

	req := httptest.NewRequest(http.MethodGet, "/users/7", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", resp.Header.Get(RequestIDHeader))
}
