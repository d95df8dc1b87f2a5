package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/scholaris-app/scholaris/core/internal/session"
)

func signToken(t *testing.T, claims session.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return raw
}

func TestSessionHandler_SetAndClear(t *testing.T) {
	provider := session.NewTokenProvider()
	h := NewSessionHandler(provider)

	raw := signToken(t, session.Claims{
		SchoolID: "school-1",
		Role:     "teacher",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	req := httptest.NewRequest(http.MethodPut, "/api/session",
		strings.NewReader(`{"token":"`+raw+`"}`))
	rec := httptest.NewRecorder()
	h.SetToken(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "school-1") {
		t.Errorf("expected school_id in response, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.SetToken(rec, httptest.NewRequest(http.MethodDelete, "/api/session", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on clear, got %d", rec.Code)
	}
	if _, err := provider.TenantID(); err == nil {
		t.Error("expected cleared session to have no tenant")
	}
}

func TestSessionHandler_RejectsTokenWithoutSchool(t *testing.T) {
	provider := session.NewTokenProvider()
	h := NewSessionHandler(provider)

	raw := signToken(t, session.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	req := httptest.NewRequest(http.MethodPut, "/api/session",
		strings.NewReader(`{"token":"`+raw+`"}`))
	rec := httptest.NewRecorder()
	h.SetToken(rec, req)

	if rec.Code == http.StatusOK {
		t.Error("expected token without school_id to be rejected")
	}
}
