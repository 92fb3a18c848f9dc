// Package ratelimit locks out clients that keep presenting bad tokens.
package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	DefaultMaxFailedAttempts = 10
	DefaultFailureWindow     = time.Minute
	DefaultLockoutDuration   = 5 * time.Minute
	MaxLockoutDuration       = time.Hour
)

type clientState struct {
	failedAttempts int
	windowStart    time.Time
	lockedUntil    time.Time
	lockoutCount   int
}

// TokenLimiter counts failed token verifications per client IP.
type TokenLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientState

	maxFailedAttempts   int
	failureWindow       time.Duration
	baseLockoutDuration time.Duration
	now                 func() time.Time
}

func NewTokenLimiter() *TokenLimiter {
	return &TokenLimiter{
		clients:             make(map[string]*clientState),
		maxFailedAttempts:   DefaultMaxFailedAttempts,
		failureWindow:       DefaultFailureWindow,
		baseLockoutDuration: DefaultLockoutDuration,
		now:                 time.Now,
	}
}

// Middleware rejects requests from locked-out clients.
func (l *TokenLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if l.IsLocked(c.RealIP()) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many invalid tokens, please try again later")
			}
			return next(c)
		}
	}
}

func (l *TokenLimiter) IsLocked(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, exists := l.clients[ip]
	return exists && l.now().Before(state.lockedUntil)
}

// RecordFailure counts a rejected token. Reaching the limit inside the
// window locks the client out; repeat lockouts grow up to MaxLockoutDuration.
func (l *TokenLimiter) RecordFailure(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	state, exists := l.clients[ip]
	if !exists {
		state = &clientState{windowStart: now}
		l.clients[ip] = state
	}

	if now.Sub(state.windowStart) > l.failureWindow {
		state.failedAttempts = 0
		state.windowStart = now
	}

	state.failedAttempts++

	if state.failedAttempts >= l.maxFailedAttempts {
		state.lockoutCount++
		duration := l.baseLockoutDuration * time.Duration(state.lockoutCount)
		if duration > MaxLockoutDuration {
			duration = MaxLockoutDuration
		}
		state.lockedUntil = now.Add(duration)
		state.failedAttempts = 0
		state.windowStart = now
	}
}

// RecordSuccess forgets the client's failures.
func (l *TokenLimiter) RecordSuccess(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.clients, ip)
}

// Cleanup drops clients that are neither locked nor inside a failure window.
func (l *TokenLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for ip, state := range l.clients {
		if now.After(state.lockedUntil) && now.Sub(state.windowStart) > l.failureWindow {
			delete(l.clients, ip)
			removed++
		}
	}
	return removed
}

func (l *TokenLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}
