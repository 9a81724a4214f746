package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/vfilipov/traintrack/internal/telemetry/metrics"
)

type rateLimiterMock struct {
	allowed int
}

func (l *rateLimiterMock) Allow(_ context.Context, _ string, _ redis_rate.Limit) (*redis_rate.Result, error) {
	return &redis_rate.Result{
		Allowed:    l.allowed,
		RetryAfter: 30 * time.Second,
	}, nil
}

func TestRateLimit_Allowed(t *testing.T) {
	metricsManager := metrics.NewTestManager()

	var nextCalled bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	})
	handler := RateLimit(&rateLimiterMock{allowed: 1}, "auth", 5, metricsManager)(next)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/auth/login", nil))

	assert.True(t, nextCalled)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(0), testutil.ToFloat64(metricsManager.CounterRateLimitedRequests))
}

func TestRateLimit_LimitReached(t *testing.T) {
	metricsManager := metrics.NewTestManager()

	var nextCalled bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	})
	handler := RateLimit(&rateLimiterMock{allowed: 0}, "auth", 5, metricsManager)(next)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/auth/login", nil))

	assert.False(t, nextCalled)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Contains(t, rr.Body.String(), "retry after")
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterRateLimitedRequests))
}
