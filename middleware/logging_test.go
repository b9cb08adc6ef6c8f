package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"farm-market/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRequestLoggerRecordsRouteTemplate(t *testing.T) {
	router := mux.NewRouter()
	router.Use(RequestLogger(zap.NewNop()))
	router.HandleFunc("/cart/remove/{productId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods("DELETE")

	counter := metrics.HTTPRequestsTotal.WithLabelValues("/cart/remove/{productId}", "DELETE", "404")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/cart/remove/abc", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, before+1, testutil.ToFloat64(counter))

	req := httptest.NewRequest(http.MethodDelete, "/cart/remove/abc", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}
