package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-registration/internal/middleware"
    "github.com/iliyamo/event-registration/internal/model"
)

// RegisterAdmin registers the back-office endpoints.  Every route requires
// a valid JWT with the ADMIN role, and every successful write drops the
// cached public event pages.
func RegisterAdmin(e *echo.Echo, d Deps) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(d.JWTSecret),
        middleware.RequireRole(model.RoleAdmin),
        middleware.InvalidateCache(d.Cache, d.Redis),
    )

    // Events: drafts are only visible here.
    g.GET("/admin/events", d.Events.AdminList)
    g.GET("/admin/events/:id", d.Events.AdminGet)
    g.POST("/events", d.Events.Create)
    g.PATCH("/events/:id", d.Events.Update)
    g.DELETE("/events/:id", d.Events.Delete)

    // Registrations carry registrant PII, so reads are admin-only too.
    g.GET("/registrations", d.Registrations.List)
    g.GET("/registrations/:id", d.Registrations.Get)
    g.PATCH("/registrations/:id", d.Registrations.UpdateStatus)

    g.GET("/contact-messages", d.Contact.List)
    g.DELETE("/contact-messages/:id", d.Contact.Delete)
}
