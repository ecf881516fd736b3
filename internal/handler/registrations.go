package handler

import (
    "context"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-registration/internal/model"
    "github.com/iliyamo/event-registration/internal/repository"
    "github.com/iliyamo/event-registration/internal/service"
)

// ReservationAPI is the reservation service as seen by the HTTP layer.
type ReservationAPI interface {
    Register(ctx context.Context, eventID uint64, in service.Registrant) (*model.Registration, error)
    SetStatus(ctx context.Context, id uint64, status string) (*model.Registration, error)
    Get(ctx context.Context, id uint64) (*model.Registration, error)
    List(ctx context.Context, f repository.RegistrationFilter) ([]model.Registration, int64, error)
}

type RegistrationHandler struct {
    Reservations ReservationAPI
}

func NewRegistrationHandler(r ReservationAPI) *RegistrationHandler {
    if r == nil {
        panic("nil reservation service passed to NewRegistrationHandler")
    }
    return &RegistrationHandler{Reservations: r}
}

type registerReq struct {
    Name  string `json:"name" validate:"required,max=255"`
    Email string `json:"email" validate:"required,email,max=190"`
}

type statusReq struct {
    Status string `json:"status" validate:"required,oneof=pending confirmed cancelled"`
}

// Create handles POST /v1/events/:id/registrations.  It answers
// 201 {registrationId} once the seat is claimed.
func (h *RegistrationHandler) Create(c echo.Context) error {
    eventID, ok := pathID(c, "id")
    if !ok {
        return writeError(c, http.StatusBadRequest, "validation_error", "invalid event id")
    }
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return writeError(c, http.StatusBadRequest, "invalid_body", "invalid request body")
    }
    req.Name = strings.TrimSpace(req.Name)
    req.Email = strings.TrimSpace(req.Email)
    if err := c.Validate(&req); err != nil {
        return writeServiceError(c, err)
    }

    ctx, cancel := reqCtx(c)
    defer cancel()
    reg, err := h.Reservations.Register(ctx, eventID, service.Registrant{Name: req.Name, Email: req.Email})
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"registrationId": reg.ID})
}

// List handles GET /v1/registrations?eventId=&status=&q= (admin).
func (h *RegistrationHandler) List(c echo.Context) error {
    var f repository.RegistrationFilter
    b := echo.QueryParamsBinder(c).
        Uint64("eventId", &f.EventID).
        String("status", &f.Status).
        String("q", &f.Q)
    f.Page = bindPage(b)
    if err := b.BindError(); err != nil {
        return writeError(c, http.StatusBadRequest, "validation_error", "invalid query parameters")
    }
    f.Status = strings.ToLower(strings.TrimSpace(f.Status))

    ctx, cancel := reqCtx(c)
    defer cancel()
    items, total, err := h.Reservations.List(ctx, f)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, newListResp(items, f.Page, total))
}

// Get handles GET /v1/registrations/:id (admin).
func (h *RegistrationHandler) Get(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return writeError(c, http.StatusBadRequest, "validation_error", "invalid registration id")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    reg, err := h.Reservations.Get(ctx, id)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, reg)
}

// UpdateStatus handles PATCH /v1/registrations/:id {status} (admin).
func (h *RegistrationHandler) UpdateStatus(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return writeError(c, http.StatusBadRequest, "validation_error", "invalid registration id")
    }
    var req statusReq
    if ok, err := bindValid(c, &req); !ok {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    reg, err := h.Reservations.SetStatus(ctx, id, strings.ToLower(req.Status))
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, reg)
}
