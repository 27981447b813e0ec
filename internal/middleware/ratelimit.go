package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type RateLimiterConfig struct {
	RequestsPerMin  int
	BurstSize       int
	CleanupInterval time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP. Idle buckets are dropped
// by a background sweep so the map does not grow without bound.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	config  RateLimiterConfig
	done    chan struct{}
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientLimiter),
		config:  config,
		done:    make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

func (rl *RateLimiter) getLimiter(clientIP string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	client, exists := rl.clients[clientIP]
	if !exists {
		limit := rate.Limit(float64(rl.config.RequestsPerMin) / 60.0)
		client = &clientLimiter{limiter: rate.NewLimiter(limit, rl.config.BurstSize)}
		rl.clients[clientIP] = client
	}
	client.lastSeen = time.Now()

	return client.limiter
}

func (rl *RateLimiter) cleanupLoop() {
	interval := rl.config.CleanupInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := time.Now().Add(-interval)
			for ip, client := range rl.clients {
				if client.lastSeen.Before(cutoff) {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) Stop() {
	close(rl.done)
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.getLimiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Too many requests, please slow down",
			})
			return
		}
		c.Next()
	}
}
