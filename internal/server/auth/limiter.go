package auth

import (
	"sync"

	"golang.org/x/time/rate"
)

// loginLimiter throttles sign-on attempts per user ID so a scripted
// password guess cannot hammer a single account.
type loginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newLoginLimiter(r rate.Limit, burst int) *loginLimiter {
	return &loginLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     r,
		burst:    burst,
	}
}

func (l *loginLimiter) Allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[userID] = limiter
	}
	return limiter.Allow()
}
