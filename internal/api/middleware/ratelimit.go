package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/aquario/identity-service/internal/core/domain"
	"github.com/aquario/identity-service/internal/core/ports"
	"github.com/aquario/identity-service/internal/pkg/metrics"
)

// RateLimitConfig configures one limiter instance. Instances with different
// names never share counters.
type RateLimitConfig struct {
	Name    string
	Max     int64
	Window  time.Duration
	Store   ports.CounterStore
	Log     zerolog.Logger
	Skipper echomiddleware.Skipper
}

// RateLimit counts requests per client address in fixed windows and rejects
// with domain.ErrRateLimited once Max is exceeded. When the counter store
// fails the request is let through.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Skipper == nil {
		cfg.Skipper = echomiddleware.DefaultSkipper
	}
	limit := strconv.FormatInt(cfg.Max, 10)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper(c) {
				return next(c)
			}

			client := c.RealIP()
			count, resetIn, err := cfg.Store.Increment(c.Request().Context(), cfg.Name+":"+client, cfg.Window)
			if err != nil {
				metrics.RateLimitDecisionsTotal.WithLabelValues(cfg.Name, "store_error").Inc()
				cfg.Log.Warn().Err(err).
					Str("limiter", cfg.Name).
					Str("client", client).
					Msg("rate limit store failed, allowing request")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(max(cfg.Max-count, 0), 10))
			h.Set("X-RateLimit-Reset", seconds(resetIn))

			if count > cfg.Max {
				metrics.RateLimitDecisionsTotal.WithLabelValues(cfg.Name, "limited").Inc()
				h.Set("Retry-After", seconds(resetIn))
				cfg.Log.Info().
					Str("limiter", cfg.Name).
					Str("client", client).
					Int64("count", count).
					Msg("rate limit exceeded")
				return domain.ErrRateLimited
			}

			metrics.RateLimitDecisionsTotal.WithLabelValues(cfg.Name, "allowed").Inc()
			return next(c)
		}
	}
}

// seconds rounds d up to whole seconds, minimum 1.
func seconds(d time.Duration) string {
	s := int64(math.Ceil(d.Seconds()))
	if s < 1 {
		s = 1
	}
	return strconv.FormatInt(s, 10)
}
