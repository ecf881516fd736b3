package handler

import (
    "context"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-registration/internal/model"
    "github.com/iliyamo/event-registration/internal/repository"
)

// ContactStore persists contact form messages.
type ContactStore interface {
    Create(ctx context.Context, m *model.ContactMessage) error
    List(ctx context.Context, f repository.ContactFilter) ([]model.ContactMessage, int64, error)
    Delete(ctx context.Context, id uint64) error
}

type ContactHandler struct {
    Messages ContactStore
}

func NewContactHandler(s ContactStore) *ContactHandler { return &ContactHandler{Messages: s} }

type contactReq struct {
    Name    string `json:"name" validate:"required,max=120"`
    Email   string `json:"email" validate:"required,email,max=190"`
    Message string `json:"message" validate:"required,max=5000"`
}

// Create handles POST /v1/contact-messages.
func (h *ContactHandler) Create(c echo.Context) error {
    var req contactReq
    if err := c.Bind(&req); err != nil {
        return writeError(c, http.StatusBadRequest, "invalid_body", "invalid request body")
    }
    req.Name = strings.TrimSpace(req.Name)
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    req.Message = strings.TrimSpace(req.Message)
    if err := c.Validate(&req); err != nil {
        return writeServiceError(c, err)
    }

    ctx, cancel := reqCtx(c)
    defer cancel()
    m := &model.ContactMessage{Name: req.Name, Email: req.Email, Message: req.Message}
    if err := h.Messages.Create(ctx, m); err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusCreated, m)
}

// List handles GET /v1/contact-messages (admin), newest first.
func (h *ContactHandler) List(c echo.Context) error {
    var f repository.ContactFilter
    b := echo.QueryParamsBinder(c).String("q", &f.Q)
    f.Page = bindPage(b)
    if err := b.BindError(); err != nil {
        return writeError(c, http.StatusBadRequest, "validation_error", "invalid query parameters")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    items, total, err := h.Messages.List(ctx, f)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, newListResp(items, f.Page, total))
}

// Delete handles DELETE /v1/contact-messages/:id (admin).
func (h *ContactHandler) Delete(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return writeError(c, http.StatusBadRequest, "validation_error", "invalid message id")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    if err := h.Messages.Delete(ctx, id); err != nil {
        return writeServiceError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}
