package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func registrationRequest(remoteAddr string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/push-tokens", nil)
	req.RemoteAddr = remoteAddr
	return req
}

func limitedOK(rl *RateLimiter) http.Handler {
	return rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestLimit_RegistrationBurstThenRejected(t *testing.T) {
	// Zero refill rate so only the burst allowance counts within the test.
	h := limitedOK(NewRateLimiter(rate.Limit(0), 2))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, registrationRequest("10.0.0.1:40000"))
		assert.Equal(t, http.StatusOK, rec.Code, "request %d within burst", i+1)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, registrationRequest("10.0.0.1:40000"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "too many requests")
}

func TestLimit_BucketsArePerClientIP(t *testing.T) {
	h := limitedOK(NewRateLimiter(rate.Limit(0), 1))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, registrationRequest("10.0.0.1:40000"))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Same device re-registering: exhausted.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, registrationRequest("10.0.0.1:40001"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A different client is unaffected.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, registrationRequest("10.0.0.2:40000"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLimit_KeysOnForwardedClientNotProxy(t *testing.T) {
	h := limitedOK(NewRateLimiter(rate.Limit(0), 1))

	// Two devices behind the same proxy hop: distinct forwarded IPs get
	// distinct buckets even though RemoteAddr is identical.
	req := registrationRequest("192.168.0.1:40000")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 192.168.0.1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = registrationRequest("192.168.0.1:40000")
	req.Header.Set("X-Forwarded-For", "203.0.113.8, 192.168.0.1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The first forwarded client again: its own bucket is spent.
	req = registrationRequest("192.168.0.1:40000")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 192.168.0.1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRealIP_HeaderPrecedence(t *testing.T) {
	req := registrationRequest("192.168.1.1:54321")
	assert.Equal(t, "192.168.1.1", realIP(req))

	req.Header.Set("X-Real-Ip", "9.10.11.12")
	assert.Equal(t, "9.10.11.12", realIP(req))

	req.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")
	assert.Equal(t, "1.2.3.4", realIP(req))
}
