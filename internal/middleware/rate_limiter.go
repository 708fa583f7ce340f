package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"crmseguros/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window limiter ──────────────────────────────────────────────────────
// Counts requests per client IP in windows of fixed length. Each middleware
// instance owns its counters. Expired entries are swept inline at most once per
// window, so no background goroutine is needed.

type ventana struct {
	count int
	fin   time.Time
}

type limitador struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	clientes  map[string]*ventana
	proxBarre time.Time
}

func nuevoLimitador(limit int, window time.Duration) *limitador {
	return &limitador{limit: limit, window: window, now: time.Now, clientes: make(map[string]*ventana)}
}

// permitir registers one request of key and reports whether it is within the
// limit, plus the end of the current window.
func (l *limitador) permitir(key string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.proxBarre) {
		l.barrer(now)
	}
	v, ok := l.clientes[key]
	if !ok || now.After(v.fin) {
		v = &ventana{fin: now.Add(l.window)}
		l.clientes[key] = v
	}
	v.count++
	return v.count <= l.limit, v.fin
}

func (l *limitador) barrer(now time.Time) {
	purged := 0
	for k, v := range l.clientes {
		if now.After(v.fin) {
			delete(l.clientes, k)
			purged++
		}
	}
	l.proxBarre = now.Add(l.window)
	if purged > 0 {
		log.Debug().Int("purged", purged).Int("remaining", len(l.clientes)).Msg("rate limiter swept")
	}
}

func (l *limitador) middleware(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, fin := l.permitir(c.ClientIP())
		if !ok {
			secs := int(time.Until(fin).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return nuevoLimitador(20, time.Minute).
		middleware("Demasiados intentos de inicio de sesión. Intente en 1 minuto.")
}

// RateLimiter limits every request to limit per window per IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return nuevoLimitador(limit, window).
		middleware("Demasiadas solicitudes. Intente nuevamente en un momento.")
}
