package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/rewards/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rewards/"+id, nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/rewards/:id", "204")))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "volunteer_credits_http_requests_total"))
}

func TestLedgerCounters(t *testing.T) {
	m := New()
	m.CreditsEarned(50)
	m.CreditsEarned(25)
	m.CreditsSpent(30)
	m.Redeemed("Starbucks")
	m.StatusChanged("completed")
	m.TokensPurged(4)

	assert.Equal(t, 75.0, testutil.ToFloat64(m.creditsEarned))
	assert.Equal(t, 30.0, testutil.ToFloat64(m.creditsSpent))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.redemptions.WithLabelValues("Starbucks")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statusChanges.WithLabelValues("completed")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.tokensPurged))
}
