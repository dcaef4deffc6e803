package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	jwtinfra "github.com/hub-activity-api/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
)

func hubRequest(t *testing.T, hubID string, claims *jwtinfra.Claims) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.With(RequireHub()).Get("/hubs/{hubID}/badges", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/hubs/"+hubID+"/badges", nil)
	if claims != nil {
		req = req.WithContext(context.WithValue(req.Context(), ClaimsKey, claims))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestRequireHub_NoClaims(t *testing.T) {
	rr := hubRequest(t, "h1", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireHub_WrongHub(t *testing.T) {
	rr := hubRequest(t, "h2", &jwtinfra.Claims{UserID: "u1", HubID: "h1"})
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRequireHub_MatchingHub(t *testing.T) {
	rr := hubRequest(t, "h1", &jwtinfra.Claims{UserID: "u1", HubID: "h1"})
	assert.Equal(t, http.StatusOK, rr.Code)
}
