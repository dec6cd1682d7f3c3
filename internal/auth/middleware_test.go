package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("middleware-test-secret")

func signToken(t *testing.T, role string, secret []byte) string {
	t.Helper()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newTestMiddleware() *Middleware {
	return NewMiddleware(testSecret, NewDefaultPolicy("/healthz", "/metrics"))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(m *Middleware, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	m.Wrap(okHandler()).ServeHTTP(rec, req)
	return rec
}

func TestMiddlewareExemptPath(t *testing.T) {
	m := newTestMiddleware()
	rec := doRequest(m, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("exempt path status = %d, want 200", rec.Code)
	}
}

func TestMiddlewareMissingToken(t *testing.T) {
	m := newTestMiddleware()
	rec := doRequest(m, http.MethodPost, "/api/ingest/workbook", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d, want 401", rec.Code)
	}
}

func TestMiddlewareInvalidToken(t *testing.T) {
	m := newTestMiddleware()
	bad := signToken(t, "operator", []byte("wrong-secret"))
	rec := doRequest(m, http.MethodPost, "/api/ingest/workbook", bad)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("invalid token status = %d, want 401", rec.Code)
	}
}

func TestMiddlewareRoleEnforcement(t *testing.T) {
	m := newTestMiddleware()

	cases := []struct {
		name   string
		role   string
		method string
		path   string
		want   int
	}{
		{"viewer cannot ingest", "viewer", http.MethodPost, "/api/ingest/workbook", http.StatusForbidden},
		{"operator can ingest", "operator", http.MethodPost, "/api/ingest/workbook", http.StatusOK},
		{"admin can ingest", "admin", http.MethodPost, "/api/ingest/workbook", http.StatusOK},
		{"viewer can export", "viewer", http.MethodGet, "/api/reports/export", http.StatusOK},
		{"operator can export", "operator", http.MethodGet, "/api/reports/export", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token := signToken(t, tc.role, testSecret)
			rec := doRequest(m, tc.method, tc.path, token)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestMiddlewareExpiredToken(t *testing.T) {
	claims := &Claims{
		Role: "operator",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	m := newTestMiddleware()
	rec := doRequest(m, http.MethodPost, "/api/ingest/workbook", signed)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired token status = %d, want 401", rec.Code)
	}
}

func TestMiddlewareIdentityInContext(t *testing.T) {
	m := newTestMiddleware()
	var gotRole Role
	var gotSubject string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRole = RoleFromContext(r.Context())
		gotSubject = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/reports/export", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "viewer", testSecret))
	rec := httptest.NewRecorder()
	m.Wrap(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotRole != RoleViewer {
		t.Errorf("role in context = %q, want viewer", gotRole)
	}
	if gotSubject != "user-1" {
		t.Errorf("subject in context = %q, want user-1", gotSubject)
	}
}

func TestMiddlewareRejectsInvalidRoleClaim(t *testing.T) {
	token := signToken(t, "superuser", testSecret)
	m := newTestMiddleware()
	rec := doRequest(m, http.MethodPost, "/api/ingest/workbook", token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("invalid role status = %d, want 401", rec.Code)
	}
}
