package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/adminflow/adminflow-api/docs"
	"github.com/adminflow/adminflow-api/internal/api/handler"
	"github.com/adminflow/adminflow-api/internal/api/middleware"
	"github.com/adminflow/adminflow-api/internal/core/domain"
	"github.com/adminflow/adminflow-api/internal/infrastructure/http/handlers"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	Registrations *handler.RegistrationHandler
	Sync          *handler.SyncHandler
	AnnualUpdate  *handler.AnnualUpdateHandler
	Teams         *handler.TeamHandler
	Health        *handlers.HealthHandler
	Readiness     *handlers.HealthDependenciesHandler
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(h Handlers, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("adminflow"))

	// --- Ops ---
	e.GET("/health", h.Health.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", h.Readiness.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Public routes ---
	e.POST("/auth/login", h.Auth.Login)

	v1 := e.Group("/v1")
	v1.POST("/registrations", h.Registrations.Register)
	v1.POST("/annual-update/confirm", h.AnnualUpdate.Confirm)
	v1.GET("/teams", h.Teams.List)

	// --- Admin routes ---
	admin := v1.Group("/admin", middleware.Auth(jwtSecret), middleware.RBAC(domain.RoleAdmin))

	admin.GET("/registrations", h.Registrations.List)
	admin.PATCH("/registrations/:id", h.Registrations.Review)

	admin.GET("/sync", h.Sync.Directories)
	admin.POST("/sync", h.Sync.SyncAll)
	admin.GET("/sync/runs", h.Sync.Runs)
	admin.POST("/sync/:directory", h.Sync.Sync)

	admin.POST("/annual-update", h.AnnualUpdate.Start)
	admin.GET("/annual-update", h.AnnualUpdate.Status)

	admin.POST("/teams", h.Teams.Create)

	return e
}
