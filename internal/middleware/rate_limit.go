package middleware

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v3"
)

// RateLimitOptions configures the rate limit middleware
type RateLimitOptions struct {
	// Interval is the minimum time between two updates of one user
	Interval time.Duration
	// Burst allows short bursts above the interval
	Burst     int
	OnLimited tele.HandlerFunc
}

// RateLimit drops updates from users that exceed their per-user limiter
func RateLimit(opts RateLimitOptions, logger *zap.Logger) tele.MiddlewareFunc {
	if opts.Burst <= 0 {
		opts.Burst = 3
	}
	var (
		limiters   = make(map[int64]*rate.Limiter)
		limitersMu sync.Mutex
	)
	limiterFor := func(userID int64) *rate.Limiter {
		limitersMu.Lock()
		defer limitersMu.Unlock()

		l, ok := limiters[userID]
		if !ok {
			l = rate.NewLimiter(rate.Every(opts.Interval), opts.Burst)
			limiters[userID] = l
		}
		return l
	}

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}

			if limiterFor(user.ID).Allow() {
				return next(c)
			}

			logger.Warn("Rate limit", zap.Int64("user_id", user.ID))
			if opts.OnLimited != nil {
				return opts.OnLimited(c)
			}
			if c.Callback() != nil {
				return c.Respond(&tele.CallbackResponse{Text: "Slow down a little"})
			}
			return nil
		}
	}
}
