// Package router registers the HTTP routes of the API on an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/incident-report-tracker/internal/config"
	"github.com/iliyamo/incident-report-tracker/internal/handler"
	"github.com/iliyamo/incident-report-tracker/internal/middleware"
	"github.com/iliyamo/incident-report-tracker/internal/model"
)

// New returns an Echo instance with the shared middleware and validator
// installed.  Routes are added with the Register functions.
func New() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Use(middleware.RequestLogger())
	return e
}

// RegisterRoutes registers the operational endpoints: health check and
// Prometheus metrics.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers the authentication routes.  Register and login are
// rate limited when Redis is available; the rest require a session token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, v middleware.TokenVerifier, rl config.RateLimitConfig, rdb *redis.Client) {
	public := e.Group("/auth", middleware.RateLimit(rl, rdb))
	public.POST("/register", a.Register)
	public.POST("/login", a.Login)

	jwt := middleware.JWTAuth(v)
	e.POST("/auth/push-token", a.UpdatePushToken, jwt)
	e.GET("/auth/profile", a.Profile, jwt)
	e.GET("/users/admins", a.ListAdmins, jwt, middleware.RequireRole(model.RoleAdmin))
}
