package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStatusCategory(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{200, "2xx"},
		{201, "2xx"},
		{304, "3xx"},
		{404, "4xx"},
		{502, "5xx"},
		{100, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusCategory(tt.status), tt.status)
	}
}

func TestMiddlewareCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware("metrics-test"))
	router.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(RequestCounter.WithLabelValues("metrics-test", "GET", "/items/:id", "200"))
	unmatched := testutil.ToFloat64(RequestCounter.WithLabelValues("metrics-test", "GET", "unmatched", "404"))

	for _, path := range []string{"/items/1", "/items/2", "/nowhere"} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(RequestCounter.WithLabelValues("metrics-test", "GET", "/items/:id", "200")))
	assert.Equal(t, unmatched+1, testutil.ToFloat64(RequestCounter.WithLabelValues("metrics-test", "GET", "unmatched", "404")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	Register()
	RecordWrites.WithLabelValues("client", "create").Inc()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "freelancedesk_record_writes_total")
}
