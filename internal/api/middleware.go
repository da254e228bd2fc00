package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finview/finview/internal/ratelimit"
	"github.com/finview/finview/internal/tier"
)

const (
	ctxUserID = "userID"
	ctxTier   = "tier"
)

// TierSource resolves a user's subscription tier. The user store satisfies
// this; the tier is trusted as-is.
type TierSource interface {
	Tier(userID string) tier.Tier
}

// RateChecker admits or denies a request. The sliding-window limiter
// satisfies this.
type RateChecker interface {
	Check(ctx context.Context, class ratelimit.Class, identity string, t tier.Tier) ratelimit.Decision
}

// RequestID tags every request with a unique ID for log correlation.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// Identity resolves the caller from the X-User-ID header (populated by the
// authentication layer in front of this service) and attaches their tier.
func Identity(tiers TierSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
			return
		}
		c.Set(ctxUserID, userID)
		c.Set(ctxTier, tiers.Tier(userID))
		c.Next()
	}
}

// RateLimit enforces the sliding-window budget for one limit class. Denials
// answer 429 with standard rate-limit headers; the limiter itself fails
// open, so an unreachable counter store never blocks the request here.
func RateLimit(limiter RateChecker, class ratelimit.Class) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ctxUserID)
		t := currentTier(c)

		decision := limiter.Check(c.Request.Context(), class, userID, t)
		setRateLimitHeaders(c, decision)

		if !decision.Success {
			retryAfter := int(time.Until(decision.Reset).Seconds()) + 1
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "rate limit exceeded",
				"retryAfter": retryAfter,
				"limit":      decision.Limit,
			})
			return
		}
		c.Next()
	}
}

func setRateLimitHeaders(c *gin.Context, d ratelimit.Decision) {
	c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", d.Limit))
	c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", d.Remaining))
	c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", d.Reset.UnixMilli()))
}

func currentTier(c *gin.Context) tier.Tier {
	if v, ok := c.Get(ctxTier); ok {
		if t, ok := v.(tier.Tier); ok {
			return t
		}
	}
	return tier.Free
}
