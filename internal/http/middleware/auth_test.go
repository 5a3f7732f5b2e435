package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/learnhub-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
)

const testSecret = "test-secret"

func signed(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func authRouter(cfg AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewAuthMiddleware(logger.Nop(), cfg).RequireAuth())
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.UserID(c.Request.Context()))
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	future := time.Now().Add(time.Hour).Unix()
	valid := signed(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "user-1", "exp": future})
	expired := signed(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(-time.Hour).Unix()})
	noExp := signed(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "user-1"})
	wrongKey := signed(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "user-1", "exp": future})
	noSub := signed(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"exp": future})
	hs512 := signed(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{"sub": "user-1", "exp": future})

	cases := []struct {
		name    string
		cfg     AuthConfig
		headers map[string]string
		want    int
		user    string
	}{
		{name: "valid token", cfg: AuthConfig{JWTSecret: testSecret}, headers: map[string]string{"Authorization": "Bearer " + valid}, want: http.StatusOK, user: "user-1"},
		{name: "lowercase bearer", cfg: AuthConfig{JWTSecret: testSecret}, headers: map[string]string{"Authorization": "bearer " + valid}, want: http.StatusOK, user: "user-1"},
		{name: "expired", cfg: AuthConfig{JWTSecret: testSecret}, headers: map[string]string{"Authorization": "Bearer " + expired}, want: http.StatusUnauthorized},
		{name: "no exp", cfg: AuthConfig{JWTSecret: testSecret}, headers: map[string]string{"Authorization": "Bearer " + noExp}, want: http.StatusUnauthorized},
		{name: "wrong key", cfg: AuthConfig{JWTSecret: testSecret}, headers: map[string]string{"Authorization": "Bearer " + wrongKey}, want: http.StatusUnauthorized},
		{name: "no subject", cfg: AuthConfig{JWTSecret: testSecret}, headers: map[string]string{"Authorization": "Bearer " + noSub}, want: http.StatusUnauthorized},
		{name: "other alg", cfg: AuthConfig{JWTSecret: testSecret}, headers: map[string]string{"Authorization": "Bearer " + hs512}, want: http.StatusUnauthorized},
		{name: "token without secret", cfg: AuthConfig{}, headers: map[string]string{"Authorization": "Bearer " + valid}, want: http.StatusUnauthorized},
		{name: "missing", cfg: AuthConfig{JWTSecret: testSecret}, want: http.StatusUnauthorized},
		{name: "header ignored by default", cfg: AuthConfig{JWTSecret: testSecret}, headers: map[string]string{"X-User-Id": "dev"}, want: http.StatusUnauthorized},
		{name: "header allowed", cfg: AuthConfig{AllowUserHeader: true}, headers: map[string]string{"X-User-Id": " dev "}, want: http.StatusOK, user: "dev"},
		{name: "token wins over header", cfg: AuthConfig{JWTSecret: testSecret, AllowUserHeader: true}, headers: map[string]string{"Authorization": "Bearer " + valid, "X-User-Id": "dev"}, want: http.StatusOK, user: "user-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			authRouter(tc.cfg).ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status: got=%d want=%d body=%s", rec.Code, tc.want, rec.Body.String())
			}
			if tc.want == http.StatusOK && rec.Body.String() != tc.user {
				t.Fatalf("user: got=%q want=%q", rec.Body.String(), tc.user)
			}
		})
	}
}
