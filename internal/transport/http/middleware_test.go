package httptransport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORSAnswersPreflight(t *testing.T) {
	handler := CORS([]string{"*"})(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/api/activities", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSEchoesListedOrigin(t *testing.T) {
	handler := CORS([]string{"https://app.example"})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	logger, hook := test.NewNullLogger()
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/activities", nil))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, logrus.WarnLevel, entry.Level)
	require.Equal(t, http.StatusInternalServerError, entry.Data["status"])
	require.Equal(t, "/api/activities", entry.Data["path"])
}

func TestRateLimitRejectsExhaustedClients(t *testing.T) {
	limiter := &stubAllower{allowed: 0}
	logger, _ := test.NewNullLogger()
	handler := RateLimit(limiter, 1, false, logger)(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/activities", nil)
	req.RemoteAddr = "10.0.0.7:5123"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.JSONEq(t, `{"type":"rate_limited","detail":"Too many requests, slow down"}`, rec.Body.String())
	require.Equal(t, "greenpoints:ratelimit:10.0.0.7", limiter.lastKey)
}

func TestRateLimitIgnoresForwardedForUnlessTrusted(t *testing.T) {
	logger, _ := test.NewNullLogger()

	req := httptest.NewRequest(http.MethodPost, "/api/activities", nil)
	req.RemoteAddr = "10.0.0.7:5123"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	limiter := &stubAllower{allowed: 1}
	RateLimit(limiter, 1, false, logger)(okHandler).ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "greenpoints:ratelimit:10.0.0.7", limiter.lastKey)

	RateLimit(limiter, 1, true, logger)(okHandler).ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "greenpoints:ratelimit:203.0.113.9", limiter.lastKey)
}

func TestRateLimitSkipsReadsAndFailsOpen(t *testing.T) {
	logger, hook := test.NewNullLogger()

	limiter := &stubAllower{allowed: 0}
	rec := httptest.NewRecorder()
	RateLimit(limiter, 1, false, logger)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 0, limiter.calls)

	broken := &stubAllower{err: errors.New("redis down")}
	rec = httptest.NewRecorder()
	RateLimit(broken, 1, false, logger)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/seed", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "rate limiter unavailable", hook.LastEntry().Message)
}

func TestChainOrdersOutermostFirst(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	Chain(okHandler, mark("a"), mark("b")).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b"}, order)
}

type stubAllower struct {
	allowed int
	err     error
	calls   int
	lastKey string
}

func (s *stubAllower) Allow(_ context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	s.calls++
	s.lastKey = key
	if s.err != nil {
		return nil, s.err
	}
	return &redis_rate.Result{Limit: limit, Allowed: s.allowed, RetryAfter: 30 * time.Second}, nil
}
