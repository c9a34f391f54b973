package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/99minutos/account-service/internal/api/handler"
	"github.com/99minutos/account-service/internal/api/middleware"
	"github.com/99minutos/account-service/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer needs; cmd/accounts
// builds them from configuration.
type Dependencies struct {
	Accounts     ports.AccountService
	Tokens       ports.TokenService
	Directory    ports.AccountDirectory
	PasswordRule handler.PasswordRule
	Readiness    map[string]handler.PingFunc
	Log          zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator(deps.PasswordRule)
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(middleware.Metrics())
	e.Use(middleware.Authenticate(deps.Tokens, deps.Directory, deps.Log))

	// --- Account routes ---
	accountHandler := handler.NewAccountHandler(deps.Accounts)
	requireIdentity := middleware.RequireIdentity()

	accounts := e.Group("/accounts")
	accounts.POST("/login", accountHandler.Login)
	accounts.POST("/register", accountHandler.Register)
	accounts.GET("", accountHandler.List, requireIdentity)
	accounts.GET("/:id", accountHandler.Get, requireIdentity)
	accounts.DELETE("/:id", accountHandler.Delete, requireIdentity)
	accounts.PATCH("/:id", accountHandler.Patch, requireIdentity)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			// Causes of 5xx responses are logged by the error handler.
			event := log.Info()
			if v.Status >= 500 {
				event = log.Error()
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
