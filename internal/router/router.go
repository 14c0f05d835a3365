package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/volunteer-credits/internal/handler"
	"github.com/iliyamo/volunteer-credits/internal/middleware"
	"github.com/iliyamo/volunteer-credits/internal/model"
)

var (
	police  = string(model.UserTypePolice)
	citizen = string(model.UserTypeCitizen)
)

// RegisterRoutes registers the unauthenticated operational endpoints.
func RegisterRoutes(e *echo.Echo, metrics http.Handler) {
	e.GET("/healthz", handler.Health)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}
}

// RegisterAuth wires register/login/refresh/logout and the current-user
// endpoint.  Logout authenticates itself so it also works with only a
// refresh token.
func RegisterAuth(api *echo.Group, a *handler.AuthHandler, jwtSecret string) {
	api.POST("/register", a.Register)
	api.POST("/login", a.Login)
	api.POST("/refresh", a.Refresh)
	api.POST("/logout", a.Logout)
	api.GET("/user", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterOpportunities wires the public listing and police management.
// The listing goes through the response cache.
func RegisterOpportunities(api *echo.Group, o *handler.OpportunityHandler, jwtSecret string) {
	api.GET("/opportunities", o.List, o.Cache.Middleware())

	g := api.Group("/opportunities", middleware.JWTAuth(jwtSecret), middleware.RequireRole(police))
	g.POST("", o.Create)
	g.GET("/my", o.Mine)
	g.PATCH("/:id", o.Update)
	g.GET("/:id/applications", o.Applications)
}

// RegisterApplications wires citizen applications and police status changes.
func RegisterApplications(api *echo.Group, a *handler.ApplicationHandler, jwtSecret string) {
	g := api.Group("/applications", middleware.JWTAuth(jwtSecret))
	g.POST("", a.Apply, middleware.RequireRole(citizen))
	g.GET("/my", a.Mine)
	g.PATCH("/:id/status", a.UpdateStatus, middleware.RequireRole(police))
}

// RegisterRewards wires the catalog (cached) and redemption.
func RegisterRewards(api *echo.Group, r *handler.RewardHandler, cache *middleware.ResponseCache, jwtSecret string) {
	api.GET("/rewards", r.List, cache.Middleware())
	api.GET("/rewards/featured", r.Featured, cache.Middleware())
	api.POST("/rewards/:id/redeem", r.Redeem, middleware.JWTAuth(jwtSecret))
}

// RegisterAccount wires the per-user ledger and the police dashboard.
func RegisterAccount(api *echo.Group, t *handler.TransactionHandler, s *handler.StatsHandler, jwtSecret string) {
	api.GET("/transactions/my", t.Mine, middleware.JWTAuth(jwtSecret))
	api.GET("/police/stats", s.Police, middleware.JWTAuth(jwtSecret), middleware.RequireRole(police))
}

// RegisterSeed exposes catalog seeding.  Callers must not register it in
// production.
func RegisterSeed(api *echo.Group, s *handler.SeedHandler, jwtSecret string) {
	api.POST("/seed-rewards", s.SeedRewards, middleware.JWTAuth(jwtSecret), middleware.RequireRole(police))
}
