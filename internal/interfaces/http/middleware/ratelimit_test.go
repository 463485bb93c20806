package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketLimiter_BurstThenDeny(t *testing.T) {
	l := NewTokenBucketLimiter(1, 3, 0)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		ok, info := l.Allow("client")
		require.True(t, ok, "request %d", i)
		assert.Equal(t, 3, info.Limit)
		assert.Equal(t, 2-i, info.Remaining)
	}
	ok, info := l.Allow("client")
	assert.False(t, ok)
	assert.Zero(t, info.Remaining)

	// other keys have their own bucket
	ok, _ = l.Allow("other")
	assert.True(t, ok)
	assert.Equal(t, 2, l.BucketCount())
}

func TestTokenBucketLimiter_NonPositiveSettings(t *testing.T) {
	l := NewTokenBucketLimiter(0, 0, 0)
	defer l.Stop()

	ok, info := l.Allow("k")
	assert.True(t, ok)
	assert.Equal(t, 1, info.Limit)
	ok, _ = l.Allow("k")
	assert.False(t, ok)
}

func TestTokenBucketLimiter_StopTwice(t *testing.T) {
	l := NewTokenBucketLimiter(1, 1, time.Hour)
	l.Stop()
	assert.NotPanics(t, l.Stop)
}

func TestTokenBucketLimiter_CleanupRemovesIdleBuckets(t *testing.T) {
	l := NewTokenBucketLimiter(100, 1, time.Millisecond)
	defer l.Stop()
	l.Allow("idle")

	assert.Eventually(t, func() bool { return l.BucketCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestTokenBucketLimiter_Concurrent(t *testing.T) {
	l := NewTokenBucketLimiter(0.001, 10, 0)
	defer l.Stop()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("shared"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, allowed)
}

func TestRateLimit_Middleware(t *testing.T) {
	l := NewTokenBucketLimiter(1, 1, 0)
	defer l.Stop()
	h := RateLimit(l, DefaultRateLimitConfig())(okHandler())

	req := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/v1/geocode/suggest?q=calle", nil)
		r.Header.Set("X-Forwarded-For", "10.0.0.1, 172.16.0.1")
		h.ServeHTTP(w, r)
		return w
	}

	first := req()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := req()
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &body))
	assert.Equal(t, "COMMON_012", body["code"])
}

func TestRateLimit_SkipPathsAndCustomHandler(t *testing.T) {
	l := NewTokenBucketLimiter(1, 1, 0)
	defer l.Stop()
	cfg := DefaultRateLimitConfig()
	cfg.ExceededHandler = statusHandler(http.StatusServiceUnavailable)
	h := RateLimit(l, cfg)(okHandler())

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDefaultKeyFunc(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1:1234", defaultKeyFunc(r))

	r.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", defaultKeyFunc(r))

	r.Header.Set("X-Forwarded-For", " 203.0.113.5 , 10.0.0.1")
	assert.Equal(t, "203.0.113.5", defaultKeyFunc(r))
}

//Personal.AI order the ending
