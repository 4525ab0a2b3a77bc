package service

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/aldianriski/portfolioapi/internal/models"
)

// UnknownClient is the identifier used when a request carries no client IP
// header. Every such client shares one bucket.
const UnknownClient = "unknown"

// RateLimitStore holds fixed-window counters. Hit counts one request for key,
// starting a new window when none is open at now. Sweep drops expired windows.
type RateLimitStore interface {
	Hit(ctx context.Context, key string, window time.Duration, now time.Time) (models.RateLimitEntry, error)
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// RateLimitConfig is the budget of one limiter
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

// RateLimitResult is the outcome of one check
type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetTime time.Time
}

// RetryAfter returns whole seconds until the window resets, rounded up
func (r RateLimitResult) RetryAfter(now time.Time) int {
	seconds := math.Ceil(r.ResetTime.Sub(now).Seconds())
	if seconds < 0 {
		return 0
	}
	return int(seconds)
}

// RateLimiter is a fixed-window limiter over a store. Keys are prefixed with
// the limiter namespace so that limiters sharing a store stay isolated.
type RateLimiter struct {
	store     RateLimitStore
	namespace string
	config    RateLimitConfig
	now       func() time.Time
}

// NewRateLimiter creates a limiter
func NewRateLimiter(store RateLimitStore, namespace string, cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		store:     store,
		namespace: namespace,
		config:    cfg,
		now:       time.Now,
	}
}

// WithClock replaces the time source
func (l *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	l.now = now
	return l
}

// Config returns the default budget
func (l *RateLimiter) Config() RateLimitConfig {
	return l.config
}

// Now returns the limiter clock
func (l *RateLimiter) Now() time.Time {
	return l.now()
}

// Check counts a request of identifier against the default budget
func (l *RateLimiter) Check(ctx context.Context, identifier string) (RateLimitResult, error) {
	return l.CheckWithConfig(ctx, identifier, l.config)
}

// CheckWithConfig counts a request of identifier against cfg. The request that
// takes the count past MaxRequests and every later one in the window are
// denied; the reset time never moves within a window.
func (l *RateLimiter) CheckWithConfig(ctx context.Context, identifier string, cfg RateLimitConfig) (RateLimitResult, error) {
	entry, err := l.store.Hit(ctx, l.namespace+":"+identifier, cfg.Window, l.now())
	if err != nil {
		return RateLimitResult{}, err
	}
	if entry.Count > cfg.MaxRequests {
		return RateLimitResult{Allowed: false, Limit: cfg.MaxRequests, Remaining: 0, ResetTime: entry.ResetTime}, nil
	}
	return RateLimitResult{
		Allowed:   true,
		Limit:     cfg.MaxRequests,
		Remaining: cfg.MaxRequests - entry.Count,
		ResetTime: entry.ResetTime,
	}, nil
}

// Sweep drops the expired windows of the store
func (l *RateLimiter) Sweep(ctx context.Context) (int, error) {
	return l.store.Sweep(ctx, l.now())
}

// ClientIdentifier returns the first X-Forwarded-For address, then
// X-Real-IP, then UnknownClient
func ClientIdentifier(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return UnknownClient
}
