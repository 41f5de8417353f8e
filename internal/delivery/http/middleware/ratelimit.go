package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"daysoff/config"
	"daysoff/internal/delivery/http/metrics"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const limiterCleanupInterval = 5 * time.Minute

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter applies a per-client token bucket to the auth routes. Keyed by
// client IP since these requests run before any identity is established.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	logger  *slog.Logger
	metrics *metrics.Collector

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewRateLimiter is the constructor for RateLimiter. It starts a background
// cleanup of idle client entries.
func NewRateLimiter(cfg *config.Config, logger *slog.Logger, collector *metrics.Collector) *RateLimiter {
	limit := rate.Limit(2)
	burst := 10
	if cfg.RateLimit != nil {
		if cfg.RateLimit.RequestsPerSecond > 0 {
			limit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		}
		if cfg.RateLimit.Burst > 0 {
			burst = cfg.RateLimit.Burst
		}
	}

	rl := &RateLimiter{
		limit:    limit,
		burst:    burst,
		logger:   logger,
		metrics:  collector,
		limiters: make(map[string]*clientLimiter),
		stopCh:   make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop ends the background cleanup.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCh)
	})
}

// Limit rejects requests exceeding the per-client rate with 429 and a
// Retry-After hint.
func (rl *RateLimiter) Limit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !rl.allow(c.RealIP()) {
			rl.metrics.RecordRateLimited()
			rl.logger.Warn("Rate limit exceeded",
				slog.String("remote_ip", c.RealIP()),
				slog.String("path", c.Request().URL.Path),
			)

			retryAfter := int(math.Ceil(1.0 / float64(rl.limit)))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))

			return c.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "Too many requests. Please try again later.",
			})
		}

		return next(c)
	}
}

func (rl *RateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	entry, ok := rl.limiters[clientIP]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[clientIP] = entry
	}
	entry.lastAccess = time.Now()
	rl.mu.Unlock()

	return entry.limiter.Allow()
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	ttl := limiterCleanupInterval * 2
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for clientIP, entry := range rl.limiters {
		if now.Sub(entry.lastAccess) > ttl {
			delete(rl.limiters, clientIP)
		}
	}
}
