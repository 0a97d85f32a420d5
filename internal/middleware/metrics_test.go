package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/service"
)

func TestMetricsRecordsMatchedAndUnmatchedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics, "/metrics"))
	router.GET("/schedule/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", func(c *gin.Context) { metrics.Handler().ServeHTTP(c.Writer, c.Request) })

	for _, path := range []string{"/schedule/1", "/schedule/2", "/missing", "/metrics"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)
	}

	assert.Equal(t, uint64(3), metrics.Snapshot().Requests)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",path="/schedule/:id",status="200"} 2`)
	assert.Contains(t, body, `http_requests_total{method="GET",path="unmatched",status="404"} 1`)
	assert.NotContains(t, body, `path="/metrics"`)
}

func TestMetricsWithoutService(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Metrics(nil))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
