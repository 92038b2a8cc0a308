package auth

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/memberimport/internal/logging"
)

// Context keys for values set by the middleware.
const (
	ContextKeyAuthType = "auth_type"
)

// AuthType identifies how a request was authenticated.
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeBearer AuthType = "bearer"
)

// Middleware checks the shared bearer token of the backend API.
type Middleware struct {
	token   string
	limiter *RateLimiter
	logger  *zap.Logger
}

// NewMiddleware creates the middleware. limiter may be nil to disable
// lockouts. An empty token rejects every request.
func NewMiddleware(token string, limiter *RateLimiter, logger *zap.Logger) *Middleware {
	return &Middleware{
		token:   token,
		limiter: limiter,
		logger:  logging.OrNop(logger).Named("auth"),
	}
}

// Handler returns the Gin middleware function.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if m.limiter != nil {
			if allowed, retryAfter := m.limiter.Allow(ip); !allowed {
				c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(retryAfter)))
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
					"error":       "too many failed authentication attempts",
					"retry_after": retryAfter.String(),
				})
				return
			}
		}

		if !m.validToken(c.GetHeader("Authorization")) {
			if m.limiter != nil {
				if locked, _ := m.limiter.RecordFailure(ip); locked {
					m.logger.Warn("client locked out after failed attempts", zap.String("ip", ip))
				}
			}
			m.logger.Debug("rejected backend API request",
				zap.String("ip", ip),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		if m.limiter != nil {
			m.limiter.RecordSuccess(ip)
		}
		c.Set(ContextKeyAuthType, AuthTypeBearer)
		c.Next()
	}
}

func (m *Middleware) validToken(header string) bool {
	if m.token == "" {
		return false
	}
	token, ok := bearerToken(header)
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(m.token)) == 1
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func retryAfterSeconds(d time.Duration) int {
	seconds := int(d / time.Second)
	if d%time.Second != 0 {
		seconds++
	}
	return max(seconds, 1)
}
