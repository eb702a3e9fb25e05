package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/scoresync/account-service/docs"
	"github.com/scoresync/account-service/internal/api/handler"
	"github.com/scoresync/account-service/internal/api/middleware"
	"github.com/scoresync/account-service/internal/core/ports"
)

const metricsSubsystem = "http"

// Dependencies are the collaborators the HTTP layer needs. The caller owns
// their lifecycle.
type Dependencies struct {
	Accounts ports.AccountService
	Checks   []handler.DependencyCheck
	Log      zerolog.Logger
	// Registry receives the HTTP metrics and backs /metrics. Nil selects the
	// default Prometheus registry, where the service metrics live.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	registerer, gatherer := prometheus.DefaultRegisterer, prometheus.DefaultGatherer
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  metricsSubsystem,
		Registerer: registerer,
	}))

	// --- Account routes, served at the root and under the legacy /auth prefix ---
	accounts := handler.NewAccountHandler(deps.Accounts)
	registerAccountRoutes(e.Group(""), accounts)
	registerAccountRoutes(e.Group("/auth"), accounts)

	// --- Health probes (no auth required) ---
	health := handler.NewHealthHandler(deps.Checks...)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func registerAccountRoutes(g *echo.Group, h *handler.AccountHandler) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/reset_password", h.ResetPassword)

	authed := middleware.RequireToken()
	g.GET("/logout", h.Logout, authed)
	g.POST("/sync_enabled", h.SyncEnabled, authed)
	g.POST("/edit_user_info", h.EditUserInfo, authed)
}

// requestLogger writes one zerolog event per request. Headers and bodies are
// never logged since they carry passwords and tokens.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
