package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimiter allows a fixed number of requests per client address in each window
type RateLimiter struct {
	name    string
	limit   int
	window  time.Duration
	message string
	now     func() time.Time

	mu        sync.Mutex
	windows   map[string]requestWindow
	lastSweep time.Time
}

type requestWindow struct {
	start time.Time
	count int
}

// NewRateLimiter creates a limiter; name labels it in metrics
func NewRateLimiter(name string, limit int, window time.Duration, message string) *RateLimiter {
	return &RateLimiter{
		name:    name,
		limit:   limit,
		window:  window,
		message: message,
		now:     time.Now,
		windows: make(map[string]requestWindow),
	}
}

// allow counts a request from key. A rejected request gets the wait until its window closes.
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.window {
		for k, w := range rl.windows {
			if now.Sub(w.start) >= rl.window {
				delete(rl.windows, k)
			}
		}
		rl.lastSweep = now
	}

	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= rl.window {
		rl.windows[key] = requestWindow{start: now, count: 1}
		return true, 0
	}
	if w.count >= rl.limit {
		return false, w.start.Add(rl.window).Sub(now)
	}
	w.count++
	rl.windows[key] = w
	return true, 0
}

// Middleware rejects requests over the limit with 429 and Retry-After
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, wait := rl.allow(c.RealIP())
			if ok {
				return next(c)
			}
			seconds := int((wait + time.Second - 1) / time.Second)
			if seconds < 1 {
				seconds = 1
			}
			rateLimitedTotal.WithLabelValues(rl.name).Inc()
			c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
			return echo.NewHTTPError(http.StatusTooManyRequests, rl.message)
		}
	}
}

// LoginRateLimiter guards setup and login: 5 per minute
var LoginRateLimiter = NewRateLimiter("login", 5, time.Minute,
	"Demasiados intentos de inicio de sesión. Espere un minuto e intente de nuevo.")

// RecoveryRateLimiter guards the password recovery flow: 3 per hour
var RecoveryRateLimiter = NewRateLimiter("recovery", 3, time.Hour,
	"Demasiadas solicitudes de recuperación. Intente más tarde.")

// APIRateLimiter covers the whole API: 300 per minute
var APIRateLimiter = NewRateLimiter("api", 300, time.Minute, "Límite de solicitudes excedido.")
