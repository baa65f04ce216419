package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/aquario/identity-service/docs"
	"github.com/aquario/identity-service/internal/api/handler"
	"github.com/aquario/identity-service/internal/api/middleware"
	"github.com/aquario/identity-service/internal/core/ports"
	"github.com/aquario/identity-service/internal/pkg/config"
)

// Deps are the collaborators the HTTP layer is built from. main wires the
// real adapters; tests pass in-memory ones.
type Deps struct {
	Config    *config.Config
	Log       zerolog.Logger
	Auth      ports.AuthService
	Tokens    ports.TokenIssuer
	Centers   ports.CenterDirectory
	Courses   ports.CourseDirectory
	Counters  ports.CounterStore
	Readiness map[string]handler.ReadinessCheck
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	cfg := d.Config

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()
	if cfg.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echomiddleware.BodyLimit("64K"))
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Name:    "general",
		Max:     cfg.RateLimit.GeneralMax,
		Window:  cfg.RateLimit.GeneralWindow,
		Store:   d.Counters,
		Log:     d.Log,
		Skipper: operationalPath,
	}))

	authLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Name:   "auth",
		Max:    cfg.RateLimit.AuthMax,
		Window: cfg.RateLimit.AuthWindow,
		Store:  d.Counters,
		Log:    d.Log,
	})
	authenticate := middleware.Authenticate(d.Tokens)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	e.POST("/register", authHandler.Register, authLimit)
	e.POST("/login", authHandler.Login, authLimit)
	e.GET("/me", authHandler.Me, authenticate)

	// --- Directory routes (public, read-only) ---
	dirHandler := handler.NewDirectoryHandler(d.Centers, d.Courses)
	e.GET("/centros", dirHandler.ListCenters)
	e.GET("/centros/:id/cursos", dirHandler.ListCourses)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler(d.Readiness, cfg.StoreTimeout)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// operationalPath keeps probes and scrapes out of the general limiter.
func operationalPath(c echo.Context) bool {
	p := c.Request().URL.Path
	return p == "/metrics" || p == "/health" || strings.HasPrefix(p, "/health/")
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
