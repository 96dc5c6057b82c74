package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const secret = "test-secret"

func TestParseHS256(t *testing.T) {
	token, err := SignHS256(secret, "owner", RoleAdmin, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := ParseHS256(token, secret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "owner" || claims.Role != RoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := ParseHS256(token, "other-secret"); err == nil {
		t.Fatal("expected error for wrong secret")
	}

	expired, _ := SignHS256(secret, "owner", RoleAdmin, -time.Minute)
	if _, err := ParseHS256(expired, secret); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestParseHS256RejectsNoneAlg(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseHS256(token, secret); err == nil {
		t.Fatal("expected none alg to be rejected")
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(secret, RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ClaimsFromContext(r.Context()); !ok {
			t.Error("claims missing from context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	admin, _ := SignHS256(secret, "owner", RoleAdmin, time.Hour)
	viewer, _ := SignHS256(secret, "someone", "viewer", time.Hour)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Token abc", http.StatusUnauthorized},
		{"invalid", "Bearer nope", http.StatusUnauthorized},
		{"wrong role", "Bearer " + viewer, http.StatusForbidden},
		{"admin", "Bearer " + admin, http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/appointments", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, rec.Code)
		}
	}
}
