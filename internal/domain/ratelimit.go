package domain

import (
	"context"
	"time"
)

type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimiter counts requests per key in fixed windows. A limit <= 0 disables
// limiting for the call.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitDecision, error)
}

// RateLimitKey builds the counter key for a client hitting a route.
func RateLimitKey(route, client string) string {
	return "fairpass:ratelimit:" + route + ":" + client
}
