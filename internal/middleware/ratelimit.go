package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/octobees/nearby-assistant/internal/config"
)

// ClientIDHeader identifies a browser or terminal client for rate limiting.
const ClientIDHeader = "X-Client-ID"

// idleLimiterTTL controls when unused per-client buckets are dropped.
const idleLimiterTTL = 10 * time.Minute

// ipBurstFactor sizes the per-address bucket shared by every client id behind one IP.
const ipBurstFactor = 4

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientRateLimiter applies a token bucket per client id and a larger one per caller IP.
// A request passes only when both buckets have a token, so rotating X-Client-ID values
// cannot exceed the address budget. A zero config disables limiting.
func ClientRateLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return next(c)
			}
		}
	}

	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}

	var (
		mu      sync.Mutex
		clients = make(map[string]*clientLimiter)
		sweep   = time.Now()
	)

	bucket := func(key string, factor int, now time.Time) *rate.Limiter {
		cl, ok := clients[key]
		if !ok {
			every := perRequest / time.Duration(factor)
			cl = &clientLimiter{limiter: rate.NewLimiter(rate.Every(every), cfg.Requests*factor)}
			clients[key] = cl
		}
		cl.lastSeen = now
		return cl.limiter
	}

	allow := func(c echo.Context, now time.Time) bool {
		mu.Lock()
		defer mu.Unlock()

		if now.Sub(sweep) > idleLimiterTTL {
			for k, cl := range clients {
				if now.Sub(cl.lastSeen) > idleLimiterTTL {
					delete(clients, k)
				}
			}
			sweep = now
		}

		key := "anon:" + c.RealIP()
		if id := clientID(c); id != "" {
			key = "client:" + id
		}
		limiters := []*rate.Limiter{
			bucket("ip:"+c.RealIP(), ipBurstFactor, now),
			bucket(key, 1, now),
		}
		for _, l := range limiters {
			if l.TokensAt(now) < 1 {
				return false
			}
		}
		for _, l := range limiters {
			l.AllowN(now, 1)
		}
		return true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !allow(c, time.Now()) {
				return reject(c, http.StatusTooManyRequests, "chat rate limit exceeded")
			}
			return next(c)
		}
	}
}

func clientID(c echo.Context) string {
	return strings.TrimSpace(c.Request().Header.Get(ClientIDHeader))
}
