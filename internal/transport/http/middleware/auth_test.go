package httpmw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	s, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestVerifier_UserIDFromToken(t *testing.T) {
	v := NewVerifier(testSecret)

	uid, err := v.UserIDFromToken(signToken(t, "42", time.Now().Add(time.Hour)))
	if err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	if uid != 42 {
		t.Fatalf("expected user 42, got %d", uid)
	}

	if _, err := v.UserIDFromToken(signToken(t, "42", time.Now().Add(-time.Hour))); err != ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
	if _, err := v.UserIDFromToken(signToken(t, "not-a-number", time.Now().Add(time.Hour))); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for bad sub, got %v", err)
	}
	if _, err := v.UserIDFromToken("garbage"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}

	other := NewVerifier("another-secret")
	if _, err := other.UserIDFromToken(signToken(t, "42", time.Now().Add(time.Hour))); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestAuth_MiddlewareInjectsUserID(t *testing.T) {
	v := NewVerifier(testSecret)

	var gotUID int64
	h := v.Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUID = UserIDFromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "7", time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotUID != 7 {
		t.Fatalf("expected user 7 in context, got %d", gotUID)
	}
}

func TestAuth_MissingOrBadToken(t *testing.T) {
	v := NewVerifier(testSecret)
	h := v.Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without auth")
	}))

	for _, header := range []string{"", "Bearer ", "Basic abc", "Bearer garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}
