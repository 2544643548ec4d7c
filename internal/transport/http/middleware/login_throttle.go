package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arklim/project-planner/internal/core/port"
	"github.com/arklim/project-planner/internal/infra/logger"
	"github.com/arklim/project-planner/internal/transport/http/handlers"
)

// LoginThrottle limits login attempts per client IP over a sliding window.
// It complements the per-credential lockout: the lockout protects a single
// account, the throttle slows an IP probing many accounts. Store failures
// fail open so a Redis outage cannot take logins down with it.
type LoginThrottle struct {
	store  port.LoginAttemptStore
	limit  int
	window time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewLoginThrottle builds a throttle allowing limit attempts per window.
func NewLoginThrottle(store port.LoginAttemptStore, limit int, window time.Duration, log *zap.Logger) *LoginThrottle {
	if log == nil {
		log = zap.NewNop()
	}
	if window <= 0 {
		window = time.Minute
	}
	return &LoginThrottle{
		store:  store,
		limit:  limit,
		window: window,
		logger: log,
		now:    time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (t *LoginThrottle) WithClock(now func() time.Time) *LoginThrottle {
	if now != nil {
		t.now = now
	}
	return t
}

// Handler returns the gin middleware enforcing the throttle.
func (t *LoginThrottle) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if t.store == nil || t.limit <= 0 {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		if clientIP == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		now := t.now()
		cutoff := now.Add(-t.window)

		if err := t.store.PruneBefore(ctx, clientIP, cutoff); err != nil {
			t.failOpen(c, err)
			return
		}

		count, oldest, err := t.store.AttemptsSince(ctx, clientIP, cutoff)
		if err != nil {
			t.failOpen(c, err)
			return
		}

		if count >= t.limit {
			retryAfter := oldest.Add(t.window).Sub(now)
			t.reject(c, retryAfter)
			return
		}

		if err := t.store.RecordAttempt(ctx, clientIP, now); err != nil {
			t.failOpen(c, err)
			return
		}

		c.Next()
	}
}

func (t *LoginThrottle) reject(c *gin.Context, retryAfter time.Duration) {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 0 {
		seconds = 0
	}

	c.Header("Retry-After", strconv.Itoa(seconds))
	c.AbortWithStatusJSON(http.StatusTooManyRequests,
		handlers.NewErrorResponse(c, "too many login attempts, try again later"))
}

func (t *LoginThrottle) failOpen(c *gin.Context, err error) {
	t.logger.Warn("login throttle check failed, allowing request",
		zap.String("client_ip", logger.MaskIP(c.ClientIP())),
		zap.Error(err),
	)
	c.Next()
}
