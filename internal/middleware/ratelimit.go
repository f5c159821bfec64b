package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/todotofu/todotofu/backend/internal/apierror"
	"github.com/todotofu/todotofu/backend/internal/logger"
)

// idleTimeout is how long a client's bucket survives without requests
const idleTimeout = 10 * time.Minute

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	clients map[string]*client
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	name    string // identifier for logging
	stop    chan struct{}
	once    sync.Once
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing requestsPerSecond with bursts of
// burst per client. Close stops its cleanup goroutine.
func NewRateLimiter(requestsPerSecond float64, burst int, name string) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*client),
		limit:   rate.Limit(requestsPerSecond),
		burst:   burst,
		name:    name,
		stop:    make(chan struct{}),
	}

	go rl.cleanup(idleTimeout)

	logger.Debug("rate limiter initialized",
		logger.String("name", name),
		logger.Float64("requests_per_second", requestsPerSecond),
		logger.Int("burst", burst),
	)
	return rl
}

// Close stops the cleanup goroutine
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}

// cleanup drops buckets idle for longer than idle
func (rl *RateLimiter) cleanup(idle time.Duration) {
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.evict(now, idle)
		}
	}
}

func (rl *RateLimiter) evict(now time.Time, idle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cleaned := 0
	for ip, c := range rl.clients {
		if now.Sub(c.lastSeen) > idle {
			delete(rl.clients, ip)
			cleaned++
		}
	}
	if cleaned > 0 {
		logger.Debug("rate limiter cleanup completed",
			logger.String("name", rl.name),
			logger.Int("cleaned", cleaned),
			logger.Int("remaining", len(rl.clients)),
		)
	}
	return cleaned
}

// allow reports whether a request from ip may proceed
func (rl *RateLimiter) allow(ip string) bool {
	now := time.Now()

	rl.mu.Lock()
	c, ok := rl.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = now
	rl.mu.Unlock()

	return c.limiter.AllowN(now, 1)
}

// retryAfter is the whole seconds until one token refills
func (rl *RateLimiter) retryAfter() int {
	if rl.limit <= 0 {
		return 60
	}
	return int(math.Max(1, math.Ceil(1/float64(rl.limit))))
}

// RateLimit rejects clients exceeding the limiter with a 429 problem
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if !limiter.allow(ip) {
			logger.Ctx(c.Request.Context()).Warn("rate limit exceeded",
				logger.String("limiter", limiter.name),
				logger.String("client_ip", ip),
			)

			c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.burst))
			c.Header("X-RateLimit-Remaining", "0")
			apierror.AbortWithProblem(c, apierror.NewRateLimitError(apierror.GetRequestID(c), limiter.retryAfter()))
			return
		}

		c.Next()
	}
}
