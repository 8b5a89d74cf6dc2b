package middleware

import (
	"net/http"
	"sync"
	"time"

	"retailpos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Fixed-window counters keyed by client IP. All registers in a store usually
// sit behind one NAT address, so the limits are sized for a whole store, not
// a single terminal.

type window struct {
	count int
	end   time.Time
	mu    sync.Mutex
}

type ipCounter struct {
	mu      sync.Mutex
	windows map[string]*window
}

func newIPCounter() *ipCounter {
	return &ipCounter{windows: make(map[string]*window)}
}

// allow counts one hit for ip and reports whether it stays within limit.
func (c *ipCounter) allow(ip string, limit int, span time.Duration) (bool, time.Time) {
	c.mu.Lock()
	w, ok := c.windows[ip]
	if !ok {
		w = &window{}
		c.windows[ip] = w
	}
	c.mu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	if now.After(w.end) {
		w.count = 0
		w.end = now.Add(span)
	}
	w.count++
	return w.count <= limit, w.end
}

// purge drops windows that already expired and returns how many were removed.
func (c *ipCounter) purge(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	purged := 0
	for ip, w := range c.windows {
		w.mu.Lock()
		if now.After(w.end) {
			delete(c.windows, ip)
			purged++
		}
		w.mu.Unlock()
	}
	return purged
}

var (
	loginCounter = newIPCounter()
	apiCounter   = newIPCounter()
)

// LoginRateLimiter caps login attempts at 20 per minute per IP, enough for a
// full shift change but not for credential stuffing.
func LoginRateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, _ := loginCounter.allow(c.ClientIP(), 20, time.Minute)
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many login attempts, try again in 1 minute"))
			return
		}
		c.Next()
	}
}

// RateLimiter caps requests per IP across the whole API.
func RateLimiter(limit int, span time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := apiCounter.allow(c.ClientIP(), limit, span)
		if !ok {
			c.Header("Retry-After", windowEnd.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many requests, try again shortly"))
			return
		}
		c.Next()
	}
}

// Expired windows are swept every few minutes so one-off IPs do not
// accumulate in the maps forever.

const purgeInterval = 5 * time.Minute

func init() {
	go purgeLoop()
}

func purgeLoop() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		login := loginCounter.purge(now)
		api := apiCounter.purge(now)
		if login > 0 || api > 0 {
			log.Debug().
				Int("login_windows", login).
				Int("api_windows", api).
				Msg("rate limiter windows purged")
		}
	}
}
