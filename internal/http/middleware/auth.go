package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/learnhub-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
)

const headerUserID = "X-User-Id"

type AuthConfig struct {
	// JWTSecret verifies HS256 bearer tokens; the subject claim is the user id.
	JWTSecret string
	// AllowUserHeader trusts X-User-Id when no token is sent. Local development only.
	AllowUserHeader bool
}

type AuthMiddleware struct {
	log    *logger.Logger
	secret []byte
	header bool
}

func NewAuthMiddleware(log *logger.Logger, cfg AuthConfig) *AuthMiddleware {
	middlewareLogger := log.With("Middleware", "AuthMiddleware")
	return &AuthMiddleware{
		log:    middlewareLogger,
		secret: []byte(strings.TrimSpace(cfg.JWTSecret)),
		header: cfg.AllowUserHeader,
	}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := am.identify(c)
		if err != nil {
			am.log.Debug("Rejected request", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": err.Error(), "code": "unauthorized"},
			})
			return
		}
		ctx, req := ctxutil.Ensure(c.Request.Context())
		req.UserID = userID
		c.Request = c.Request.WithContext(ctx)
		c.Set("user_id", userID)
		c.Next()
	}
}

func (am *AuthMiddleware) identify(c *gin.Context) (string, error) {
	if token := extractToken(c); token != "" {
		if len(am.secret) == 0 {
			return "", errors.New("token auth is not configured")
		}
		return am.subject(token)
	}
	if am.header {
		if id := strings.TrimSpace(c.GetHeader(headerUserID)); id != "" {
			return id, nil
		}
	}
	return "", errors.New("missing or invalid token")
}

func (am *AuthMiddleware) subject(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return am.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(sub) == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
