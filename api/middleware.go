package api

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ContextEmailKey is where the auth middleware stores the authenticated email.
const ContextEmailKey = "auth_email"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// RequireAuth validates the bearer token and injects the caller's email into
// the request context. Both "Bearer <t>" and the legacy "Token <t>" prefix
// are accepted.
func RequireAuth(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		email, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ContextEmailKey, email)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	for _, prefix := range []string{"Bearer ", "Token "} {
		if strings.HasPrefix(header, prefix) {
			return strings.TrimPrefix(header, prefix)
		}
	}
	return ""
}

// rateLimitIdleEviction is how long a client IP may stay quiet before its
// bucket is dropped. Keeps the limiter map from growing for the process
// lifetime under address-diverse traffic.
const rateLimitIdleEviction = 10 * time.Minute

// RateLimit gives each client IP its own token bucket. Used on the auth
// endpoints to slow down credential stuffing.
func RateLimit(perMinute int) gin.HandlerFunc {
	type bucket struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}
	var (
		mu        sync.Mutex
		buckets   = make(map[string]*bucket)
		lastSweep = time.Now()
	)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		if now.Sub(lastSweep) > rateLimitIdleEviction {
			for addr, b := range buckets {
				if now.Sub(b.lastSeen) > rateLimitIdleEviction {
					delete(buckets, addr)
				}
			}
			lastSweep = now
		}
		b, ok := buckets[ip]
		if !ok {
			b = &bucket{limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)}
			buckets[ip] = b
		}
		b.lastSeen = now
		mu.Unlock()

		if !b.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
