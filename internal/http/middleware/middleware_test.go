package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"subject": c.GetString(subjectKey)}) }
	r.GET("/ok", ok)
	r.POST("/ok", ok)
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func signToken(t *testing.T, secret string, claims jwt.RegisteredClaims, method jwt.SigningMethod) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	r := newEngine(RequestID())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("expected incoming id to be reused, got %q", rec.Header().Get(RequestIDHeader))
	}
}

func TestErrorHandlerRecoversPanics(t *testing.T) {
	r := newEngine(RequestID(), ErrorHandler(zap.NewNop()))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"detail":"Internal server error"}` {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newEngine(CORS())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/ok", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("expected wildcard origin")
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := newEngine(SecurityHeaders())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" || rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("missing security headers: %v", rec.Header())
	}
}

func TestRequireJSON(t *testing.T) {
	r := newEngine(RequireJSON())

	req := httptest.NewRequest(http.MethodPost, "/ok", strings.NewReader("image_url=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/ok", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestJWTAuthDisabledWithoutSecret(t *testing.T) {
	r := newEngine(JWTAuth("", ""))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestJWTAuth(t *testing.T) {
	const secret = "super-secret"
	r := newEngine(JWTAuth(secret, "authenticated"))
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other", jwt.RegisteredClaims{Subject: "u1", Audience: jwt.ClaimStrings{"authenticated"}, ExpiresAt: future}, jwt.SigningMethodHS256), http.StatusUnauthorized},
		{"wrong audience", "Bearer " + signToken(t, secret, jwt.RegisteredClaims{Subject: "u1", Audience: jwt.ClaimStrings{"anon"}, ExpiresAt: future}, jwt.SigningMethodHS256), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, secret, jwt.RegisteredClaims{Subject: "u1", Audience: jwt.ClaimStrings{"authenticated"}, ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}, jwt.SigningMethodHS256), http.StatusUnauthorized},
		{"valid", "Bearer " + signToken(t, secret, jwt.RegisteredClaims{Subject: "u1", Audience: jwt.ClaimStrings{"authenticated"}, ExpiresAt: future}, jwt.SigningMethodHS256), http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ok", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d (%s)", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}
