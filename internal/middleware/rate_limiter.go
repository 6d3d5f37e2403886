package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/menuvercel/mitienda-host/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// fixedWindow counts requests from one client within the current window.
type fixedWindow struct {
	count     int
	windowEnd time.Time
}

// windowLimiter is a per-key fixed-window counter.
type windowLimiter struct {
	mu      sync.Mutex
	entries map[string]*fixedWindow
	limit   int
	period  time.Duration
}

var (
	limiters   []*windowLimiter
	limitersMu sync.Mutex
)

func newWindowLimiter(limit int, period time.Duration) *windowLimiter {
	l := &windowLimiter{entries: make(map[string]*fixedWindow), limit: limit, period: period}
	limitersMu.Lock()
	limiters = append(limiters, l)
	limitersMu.Unlock()
	return l
}

// allow records one hit for key and reports whether it is within the limit,
// along with the end of the current window.
func (l *windowLimiter) allow(key string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.entries[key]
	if !ok || now.After(w.windowEnd) {
		w = &fixedWindow{windowEnd: now.Add(l.period)}
		l.entries[key] = w
	}
	w.count++
	return w.count <= l.limit, w.windowEnd
}

func (l *windowLimiter) purge(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	purged := 0
	for key, w := range l.entries {
		if now.After(w.windowEnd) {
			delete(l.entries, key)
			purged++
		}
	}
	return purged
}

// ── Login rate limiter ────────────────────────────────────────────────────────

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	l := newWindowLimiter(20, time.Minute)
	return func(c *gin.Context) {
		if ok, _ := l.allow(c.ClientIP(), time.Now()); !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiados intentos de login. Intente en 1 minuto."))
			return
		}
		c.Next()
	}
}

// ── General API rate limiter ──────────────────────────────────────────────────

// RateLimiter allows limit requests per window per IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	l := newWindowLimiter(limit, window)
	return func(c *gin.Context) {
		ok, windowEnd := l.allow(c.ClientIP(), time.Now())
		if !ok {
			c.Header("Retry-After", windowEnd.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

// ── Purge goroutine ───────────────────────────────────────────────────────────

const purgeInterval = 5 * time.Minute

// StartRateLimiterPurge removes expired windows from every limiter until ctx is done.
func StartRateLimiterPurge(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				limitersMu.Lock()
				purged := 0
				for _, l := range limiters {
					purged += l.purge(now)
				}
				limitersMu.Unlock()
				if purged > 0 {
					log.Debug().Int("entries_purged", purged).Msg("rate limiter maps purged")
				}
			}
		}
	}()
}
