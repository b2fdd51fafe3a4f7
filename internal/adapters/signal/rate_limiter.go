package signal

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxIdleClients bounds how many limiters are kept before fully refilled
// ones are pruned.
const maxIdleClients = 4096

// ClientRateLimiter allows up to limit attempts per interval for each
// client token. A non-positive limit disables it.
type ClientRateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*rate.Limiter
	limit    int
	interval time.Duration
}

func NewClientRateLimiter(limit int, interval time.Duration) *ClientRateLimiter {
	return &ClientRateLimiter{
		clients:  make(map[string]*rate.Limiter),
		limit:    limit,
		interval: interval,
	}
}

func (rl *ClientRateLimiter) Allow(client string) bool {
	if rl.limit <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	lim, ok := rl.clients[client]
	if !ok {
		if len(rl.clients) >= maxIdleClients {
			rl.pruneLocked(now)
		}
		lim = rate.NewLimiter(rate.Every(rl.interval/time.Duration(rl.limit)), rl.limit)
		rl.clients[client] = lim
	}
	return lim.AllowN(now, 1)
}

func (rl *ClientRateLimiter) pruneLocked(now time.Time) {
	for client, lim := range rl.clients {
		if lim.TokensAt(now) >= float64(rl.limit) {
			delete(rl.clients, client)
		}
	}
}
