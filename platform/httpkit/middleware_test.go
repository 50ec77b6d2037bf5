package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"workmarket_sdr/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type testJWTConfig struct{ secret string }

func (c testJWTConfig) GetJWTAccessSecret() string { return c.secret }

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newAdminEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/admin", AuthRequired(testJWTConfig{secret: testSecret}), RequireRole("admin"), func(c *gin.Context) {
		c.String(http.StatusOK, GetIdentity(c).Subject())
	})
	return engine
}

func TestAuthRequired(t *testing.T) {
	engine := newAdminEngine()
	exp := time.Now().Add(time.Hour).Unix()

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other", jwt.MapClaims{"sub": "ops", "type": "access", "roles": []string{"admin"}, "exp": exp}), http.StatusUnauthorized},
		{"refresh token", "Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": "ops", "type": "refresh", "roles": []string{"admin"}, "exp": exp}), http.StatusUnauthorized},
		{"missing role", "Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": "ops", "type": "access", "roles": []string{"viewer"}, "exp": exp}), http.StatusForbidden},
		{"admin", "Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": "ops", "type": "access", "roles": []string{"admin"}, "exp": exp}), http.StatusOK},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		if rec.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.name, rec.Code, tc.want)
		}
		if tc.want == http.StatusOK && rec.Body.String() != "ops" {
			t.Errorf("%s: expected subject in body, got %q", tc.name, rec.Body.String())
		}
	}
}

func TestAuthRequiredWithoutSecretRejectsEverything(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/admin", AuthRequired(testJWTConfig{}), func(c *gin.Context) { c.Status(http.StatusOK) })

	token := signToken(t, "unused", jwt.MapClaims{"sub": "ops", "type": "access"})
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when no secret is configured, got %d", rec.Code)
	}
}

func TestRateLimitPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewPerMinuteRateLimiter(2, logger.Discard())
	engine := gin.New()
	engine.POST("/chat", limiter.RateLimit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/chat", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}

	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected a different IP to have its own budget, got %d", rec.Code)
	}
}

func TestRequestIDPropagates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) {
		id, _ := c.Request.Context().Value(logger.RequestIDKey).(string)
		c.String(http.StatusOK, id)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Body.String() != "abc-123" || rec.Header().Get(HeaderRequestID) != "abc-123" {
		t.Fatalf("expected inbound request id to be reused, body=%q header=%q", rec.Body.String(), rec.Header().Get(HeaderRequestID))
	}
}
