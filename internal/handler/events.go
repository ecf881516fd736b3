package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-registration/internal/model"
    "github.com/iliyamo/event-registration/internal/repository"
    "github.com/iliyamo/event-registration/internal/service"
)

// EventAPI is the event service as seen by the HTTP layer.
type EventAPI interface {
    Create(ctx context.Context, in service.EventInput) (*model.Event, error)
    Update(ctx context.Context, id uint64, p service.EventPatch) (*model.Event, error)
    Delete(ctx context.Context, id uint64) error
    Get(ctx context.Context, id uint64) (*model.Event, error)
    List(ctx context.Context, f repository.EventFilter) ([]model.Event, int64, error)
}

type EventHandler struct {
    Events EventAPI
}

func NewEventHandler(events EventAPI) *EventHandler {
    if events == nil {
        panic("nil event service passed to NewEventHandler")
    }
    return &EventHandler{Events: events}
}

type eventReq struct {
    Title       string    `json:"title" validate:"required,max=200"`
    Description string    `json:"description" validate:"required"`
    Location    string    `json:"location" validate:"required,max=255"`
    StartTime   time.Time `json:"startTime" validate:"required"`
    TotalSeats  uint32    `json:"totalSeats"`
    Status      string    `json:"status" validate:"omitempty,oneof=draft published cancelled completed"`
    ImageRef    string    `json:"imageRef" validate:"max=500"`
}

type eventPatchReq struct {
    Title         *string    `json:"title"`
    Description   *string    `json:"description"`
    Location      *string    `json:"location"`
    StartTime     *time.Time `json:"startTime"`
    ImageRef      *string    `json:"imageRef"`
    TotalSeats    *uint32    `json:"totalSeats"`
    Status        *string    `json:"status"`
    OccupiedSeats *uint32    `json:"occupiedSeats"` // read-only; rejected when present
}

// publicStatuses are the listing filters open to anonymous callers.
var publicStatuses = map[string]bool{
    model.EventPublished: true,
    model.EventCancelled: true,
    model.EventCompleted: true,
}

// List handles GET /v1/events.  Drafts are never listed publicly; the
// status filter defaults to published.
func (h *EventHandler) List(c echo.Context) error {
    f, err := bindEventFilter(c)
    if err != nil {
        return writeError(c, http.StatusBadRequest, "validation_error", "invalid query parameters")
    }
    if f.Status == "" {
        f.Status = model.EventPublished
    }
    if !publicStatuses[f.Status] {
        return writeError(c, http.StatusBadRequest, "validation_error", "status must be one of: published cancelled completed")
    }
    return h.list(c, f)
}

// AdminList handles GET /v1/admin/events with every status visible.
func (h *EventHandler) AdminList(c echo.Context) error {
    f, err := bindEventFilter(c)
    if err != nil {
        return writeError(c, http.StatusBadRequest, "validation_error", "invalid query parameters")
    }
    if f.Status != "" && !model.ValidEventStatus(f.Status) {
        return writeError(c, http.StatusBadRequest, "validation_error", "unknown status")
    }
    return h.list(c, f)
}

func bindEventFilter(c echo.Context) (repository.EventFilter, error) {
    var f repository.EventFilter
    b := echo.QueryParamsBinder(c).String("q", &f.Q).String("status", &f.Status)
    f.Page = bindPage(b)
    f.Status = strings.ToLower(strings.TrimSpace(f.Status))
    return f, b.BindError()
}

func (h *EventHandler) list(c echo.Context, f repository.EventFilter) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    items, total, err := h.Events.List(ctx, f)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, newListResp(items, f.Page, total))
}

// Get handles GET /v1/events/:id.  Draft events answer 404 publicly.
func (h *EventHandler) Get(c echo.Context) error {
    return h.get(c, false)
}

// AdminGet handles GET /v1/admin/events/:id.
func (h *EventHandler) AdminGet(c echo.Context) error {
    return h.get(c, true)
}

func (h *EventHandler) get(c echo.Context, withDrafts bool) error {
    id, ok := pathID(c, "id")
    if !ok {
        return writeError(c, http.StatusBadRequest, "validation_error", "invalid event id")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    ev, err := h.Events.Get(ctx, id)
    if err != nil {
        return writeServiceError(c, err)
    }
    if !withDrafts && ev.Status == model.EventDraft {
        return writeServiceError(c, service.ErrEventNotFound)
    }
    return c.JSON(http.StatusOK, ev)
}

// Create handles POST /v1/events (admin).
func (h *EventHandler) Create(c echo.Context) error {
    var req eventReq
    if ok, err := bindValid(c, &req); !ok {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    ev, err := h.Events.Create(ctx, service.EventInput{
        Title:       req.Title,
        Description: req.Description,
        Location:    req.Location,
        StartTime:   req.StartTime,
        TotalSeats:  req.TotalSeats,
        Status:      req.Status,
        ImageRef:    req.ImageRef,
    })
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusCreated, ev)
}

// Update handles PATCH /v1/events/:id (admin).
func (h *EventHandler) Update(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return writeError(c, http.StatusBadRequest, "validation_error", "invalid event id")
    }
    var req eventPatchReq
    if err := c.Bind(&req); err != nil {
        return writeError(c, http.StatusBadRequest, "invalid_body", "invalid request body")
    }
    if req.OccupiedSeats != nil {
        return writeError(c, http.StatusBadRequest, "validation_error", "occupiedSeats is read-only")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    ev, err := h.Events.Update(ctx, id, service.EventPatch{
        Title:       req.Title,
        Description: req.Description,
        Location:    req.Location,
        StartTime:   req.StartTime,
        ImageRef:    req.ImageRef,
        TotalSeats:  req.TotalSeats,
        Status:      req.Status,
    })
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, ev)
}

// Delete handles DELETE /v1/events/:id (admin).  Events that already have
// registrations answer 409; cancel them instead.
func (h *EventHandler) Delete(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return writeError(c, http.StatusBadRequest, "validation_error", "invalid event id")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Events.Delete(ctx, id); err != nil {
        return writeServiceError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
