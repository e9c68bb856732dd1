package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/taskboard/server/internal/module/throttle"
	"github.com/taskboard/server/internal/shared/metrics"
)

const (
	// RateLimitRemaining is the header for remaining requests.
	RateLimitRemaining = "X-RateLimit-Remaining"
	// RateLimitLimit is the header for the limit.
	RateLimitLimit = "X-RateLimit-Limit"
	// RetryAfter is the header for retry time.
	RetryAfter = "Retry-After"
)

// RateLimitConfig holds rate limit middleware configuration.
type RateLimitConfig struct {
	// Class labels the endpoint class in metrics.
	Class string
	// KeyFunc generates the throttle key from the request.
	// Default uses client IP.
	KeyFunc func(*gin.Context) string
}

// RateLimit returns a middleware gating requests through the given limiter.
// Throttle backend errors fail open: availability of the endpoint wins over
// strictness of the limit.
func RateLimit(limiter *throttle.Limiter, m *metrics.Metrics, cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string {
			return "ip:" + c.ClientIP()
		}
	}
	if cfg.Class == "" {
		cfg.Class = "general"
	}

	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := cfg.Class + ":" + cfg.KeyFunc(c)
		decision, err := limiter.Attempt(c.Request.Context(), key)
		if err != nil {
			c.Next()
			return
		}

		if m != nil {
			m.RecordThrottle(cfg.Class, decision.Allowed)
		}

		c.Header(RateLimitLimit, strconv.Itoa(limiter.Limit()))
		c.Header(RateLimitRemaining, strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			c.Header(RetryAfter, strconv.Itoa(int(decision.RetryAfter/time.Second)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "RATE_LIMIT_EXCEEDED",
					"message": "Too many requests, please try again later",
				},
			})
			return
		}

		c.Next()
	}
}

// RateLimitByIP limits by client IP.
func RateLimitByIP(limiter *throttle.Limiter, m *metrics.Metrics, class string) gin.HandlerFunc {
	return RateLimit(limiter, m, RateLimitConfig{Class: class})
}

// RateLimitByUser limits by authenticated user, falling back to IP for
// anonymous requests.
func RateLimitByUser(limiter *throttle.Limiter, m *metrics.Metrics, class string) gin.HandlerFunc {
	return RateLimit(limiter, m, RateLimitConfig{
		Class: class,
		KeyFunc: func(c *gin.Context) string {
			if userID := GetUserID(c); userID != uuid.Nil {
				return "user:" + userID.String()
			}
			return "ip:" + c.ClientIP()
		},
	})
}

// RateLimitAuth limits authentication endpoints by (IP, email), matching
// the 5-per-window class for credential attempts.
func RateLimitAuth(limiter *throttle.Limiter, m *metrics.Metrics) gin.HandlerFunc {
	return RateLimit(limiter, m, RateLimitConfig{
		Class: "auth",
		KeyFunc: func(c *gin.Context) string {
			return "ip:" + c.ClientIP() + ":email:" + c.PostForm("email")
		},
	})
}
