package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/event-registration/internal/config"
    "github.com/iliyamo/event-registration/internal/handler"
    "github.com/iliyamo/event-registration/internal/middleware"
)

// Deps carries everything the route table needs.  Redis may be nil, in
// which case caching and rate limiting are skipped.
type Deps struct {
    JWTSecret string
    Redis     *redis.Client
    Cache     config.CacheConfig
    RateLimit config.RateLimitConfig
    DB        handler.Pinger

    Auth          *handler.AuthHandler
    Events        *handler.EventHandler
    Registrations *handler.RegistrationHandler
    Contact       *handler.ContactHandler
}

// RegisterRoutes wires the whole API onto e.
func RegisterRoutes(e *echo.Echo, d Deps) {
    e.GET("/healthz", handler.Health(d.DB))
    RegisterAuth(e, d.Auth, d.JWTSecret)
    RegisterPublic(e, d)
    RegisterAdmin(e, d)
}

// RegisterAuth registers the back-office login endpoints.  Login, refresh
// and logout need no session; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/login", a.Login)
    g.POST("/refresh", a.Refresh)
    g.POST("/logout", a.Logout)

    e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic registers the anonymous endpoints.  Reads are served
// through the Redis response cache; writes are rate limited and, since a
// registration changes an event's occupancy, they invalidate the cache.
func RegisterPublic(e *echo.Echo, d Deps) {
    cache := middleware.NewRedisCache(d.Cache, d.Redis)
    e.GET("/v1/events", d.Events.List, cache)
    e.GET("/v1/events/:id", d.Events.Get, cache)

    limit := middleware.NewTokenBucket(d.RateLimit, d.Redis)
    invalidate := middleware.InvalidateCache(d.Cache, d.Redis)
    e.POST("/v1/events/:id/registrations", d.Registrations.Create, limit, invalidate)
    e.POST("/v1/contact-messages", d.Contact.Create, limit)
}
