package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiErrors "github.com/dtroode/authsession/internal/api/errors"
)

func TestMetrics_ObserveAuth(t *testing.T) {
	m := New()

	m.ObserveAuth("login", nil)
	m.ObserveAuth("login", nil)
	m.ObserveAuth("login", apiErrors.NewErrInvalidCredentials())
	m.ObserveAuth("refresh", assert.AnError)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.authOps.WithLabelValues("login", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authOps.WithLabelValues("login", "auth")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authOps.WithLabelValues("refresh", "internal")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveAuth("register", nil)
	m.ObserveHTTP(http.MethodPost, "POST /auth/register", http.StatusCreated, 3*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `authsession_auth_operations_total{operation="register",result="success"} 1`)
	assert.Contains(t, body, `authsession_http_request_duration_seconds_count{method="POST",route="POST /auth/register",status="201"} 1`)
}
