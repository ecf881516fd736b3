package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-registration/internal/repository"
    "github.com/iliyamo/event-registration/internal/service"
)

// dbTimeout bounds the store calls made on behalf of one request.
const dbTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// requestValidator plugs the shared struct-tag rules into echo's c.Validate.
type requestValidator struct{}

func (requestValidator) Validate(i interface{}) error { return service.Validate(i) }

// NewValidator returns the echo.Validator used by every handler.
func NewValidator() echo.Validator { return requestValidator{} }

// errorBody is the JSON envelope of every failed request.
type errorBody struct {
    Error   string `json:"error"`
    Message string `json:"message"`
}

func writeError(c echo.Context, status int, code, msg string) error {
    return c.JSON(status, errorBody{Error: code, Message: msg})
}

// writeServiceError translates service and repository sentinels into HTTP
// responses.  Anything unrecognised is logged and reported as 500.
func writeServiceError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, service.ErrValidation):
        return writeError(c, http.StatusBadRequest, "validation_error", err.Error())
    case errors.Is(err, service.ErrEventNotFound):
        return writeError(c, http.StatusNotFound, "event_not_found", "event not found")
    case errors.Is(err, service.ErrRegistrationNotFound):
        return writeError(c, http.StatusNotFound, "registration_not_found", "registration not found")
    case errors.Is(err, repository.ErrNotFound):
        return writeError(c, http.StatusNotFound, "not_found", "resource not found")
    case errors.Is(err, service.ErrEventNotPublished):
        return writeError(c, http.StatusBadRequest, "event_not_published", "event is not open for registration")
    case errors.Is(err, service.ErrCapacityExceeded):
        return writeError(c, http.StatusConflict, "capacity_exceeded", "no seats left for this event")
    case errors.Is(err, service.ErrInvalidTransition):
        return writeError(c, http.StatusConflict, "invalid_transition", err.Error())
    case errors.Is(err, service.ErrInvalidCapacity):
        return writeError(c, http.StatusConflict, "invalid_capacity", err.Error())
    case errors.Is(err, service.ErrConflict):
        return writeError(c, http.StatusConflict, "conflict", "concurrent update, please retry")
    case errors.Is(err, repository.ErrConflict):
        return writeError(c, http.StatusConflict, "conflict", "resource has dependent records")
    case errors.Is(err, repository.ErrForbidden):
        return writeError(c, http.StatusForbidden, "forbidden", "not allowed")
    case errors.Is(err, context.DeadlineExceeded):
        return writeError(c, http.StatusServiceUnavailable, "timeout", "storage did not answer in time")
    }
    c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
    return writeError(c, http.StatusInternalServerError, "internal_error", "internal error")
}

// bindValid binds the request body into dst and runs the validator.  When
// it reports false the error response has already been written.
func bindValid(c echo.Context, dst interface{}) (bool, error) {
    if err := c.Bind(dst); err != nil {
        return false, writeError(c, http.StatusBadRequest, "invalid_body", "invalid request body")
    }
    if err := c.Validate(dst); err != nil {
        return false, writeServiceError(c, err)
    }
    return true, nil
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    return id, err == nil && id > 0
}

// getUserID extracts the user_id stored by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
    switch t := c.Get("user_id").(type) {
    case uint64:
        return t, nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// bindPage reads ?page= and ?page_size=.  Bounds are clamped by the
// repository.
func bindPage(b *echo.ValueBinder) repository.Page {
    var p repository.Page
    b.Int("page", &p.Page).Int("page_size", &p.PageSize)
    return p
}

// listResp is the envelope of every paginated listing.
type listResp[T any] struct {
    Items    []T   `json:"items"`
    Page     int   `json:"page"`
    PageSize int   `json:"pageSize"`
    Total    int64 `json:"total"`
}

func newListResp[T any](items []T, p repository.Page, total int64) listResp[T] {
    p = p.Normalize()
    if items == nil {
        items = []T{}
    }
    return listResp[T]{Items: items, Page: p.Page, PageSize: p.PageSize, Total: total}
}
