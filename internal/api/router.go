package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/agendaav/room-booking/internal/api/handler"
	"github.com/agendaav/room-booking/internal/api/middleware"
	"github.com/agendaav/room-booking/internal/core/domain"
	"github.com/agendaav/room-booking/internal/core/ports"
)

// Deps bundles everything the router wires together.
type Deps struct {
	Log           zerolog.Logger
	Authenticator ports.Authenticator

	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	Rooms        *handler.RoomHandler
	Reservations *handler.ReservationHandler
	Maintenance  *handler.MaintenanceHandler
	Health       *handler.HealthHandler
	Readiness    *handler.HealthDependenciesHandler

	// Registry receives the HTTP metrics. Nil means the default registry,
	// which also holds the domain collectors.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger(d.Log))

	metricsMW, metricsHandler := prometheusHooks(d.Registry)
	e.Use(metricsMW)

	auth := middleware.Auth(d.Authenticator)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/login", d.Auth.Login)
	e.POST("/auth/logout", d.Auth.Logout, auth)

	// --- Users ---
	users := e.Group("/users")
	users.POST("/register", d.Auth.Register)
	users.GET("/user/me", d.Users.Me, auth)
	users.GET("", d.Users.List, auth)
	users.GET("/:id", d.Users.Get, auth)
	users.PUT("/:id", d.Users.Update, auth)
	users.DELETE("/:id", d.Users.Delete, auth)

	// --- Rooms (reads are public) ---
	rooms := e.Group("/rooms")
	rooms.GET("", d.Rooms.List)
	rooms.GET("/:id", d.Rooms.Get)
	rooms.POST("", d.Rooms.Create, auth)
	rooms.PUT("/:id", d.Rooms.Update, auth)
	rooms.DELETE("/:id", d.Rooms.Delete, auth)

	// --- Reservations (reads are public) ---
	reservations := e.Group("/reservations")
	reservations.GET("", d.Reservations.List)
	reservations.GET("/:id", d.Reservations.Get)
	reservations.GET("/:id/history", d.Reservations.History, auth)
	reservations.POST("", d.Reservations.Create, auth)
	reservations.PUT("/:id", d.Reservations.Update, auth)
	reservations.DELETE("/:id", d.Reservations.Delete, auth)

	// --- Admin ---
	admin := e.Group("/admin", auth, adminOnly)
	admin.POST("/maintenance/purge-revoked", d.Maintenance.PurgeRevoked)

	// --- Health probes (no auth required) ---
	e.GET("/health", d.Health.Liveness)          // liveness  – is the process alive?
	e.GET("/health/ready", d.Readiness.Readiness) // readiness – are dependencies up?

	// --- Observability ---
	e.GET("/metrics", metricsHandler)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func prometheusHooks(reg *prometheus.Registry) (echo.MiddlewareFunc, echo.HandlerFunc) {
	if reg == nil {
		return echoprometheus.NewMiddleware("booking"), echoprometheus.NewHandler()
	}
	mw := echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "booking",
		Registerer: reg,
	})
	return mw, echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
