package handler

import (
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/mock"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/event-registration/internal/model"
    "github.com/iliyamo/event-registration/internal/repository"
    "github.com/iliyamo/event-registration/internal/service"
)

type mockEvents struct{ mock.Mock }

func (m *mockEvents) Create(ctx context.Context, in service.EventInput) (*model.Event, error) {
    args := m.Called(ctx, in)
    ev, _ := args.Get(0).(*model.Event)
    return ev, args.Error(1)
}

func (m *mockEvents) Update(ctx context.Context, id uint64, p service.EventPatch) (*model.Event, error) {
    args := m.Called(ctx, id, p)
    ev, _ := args.Get(0).(*model.Event)
    return ev, args.Error(1)
}

func (m *mockEvents) Delete(ctx context.Context, id uint64) error {
    return m.Called(ctx, id).Error(0)
}

func (m *mockEvents) Get(ctx context.Context, id uint64) (*model.Event, error) {
    args := m.Called(ctx, id)
    ev, _ := args.Get(0).(*model.Event)
    return ev, args.Error(1)
}

func (m *mockEvents) List(ctx context.Context, f repository.EventFilter) ([]model.Event, int64, error) {
    args := m.Called(ctx, f)
    items, _ := args.Get(0).([]model.Event)
    return items, args.Get(1).(int64), args.Error(2)
}

func newEventServer(api EventAPI) *echo.Echo {
    e := echo.New()
    e.Validator = NewValidator()
    h := NewEventHandler(api)
    e.GET("/v1/events", h.List)
    e.GET("/v1/events/:id", h.Get)
    e.GET("/v1/admin/events", h.AdminList)
    e.GET("/v1/admin/events/:id", h.AdminGet)
    e.POST("/v1/events", h.Create)
    e.PATCH("/v1/events/:id", h.Update)
    e.DELETE("/v1/events/:id", h.Delete)
    return e
}

func sampleEvent(id uint64, status string) *model.Event {
    return &model.Event{
        ID:          id,
        Title:       "Jazz night",
        Description: "Live quartet",
        Location:    "Hall A",
        StartTime:   time.Date(2026, 11, 1, 19, 0, 0, 0, time.UTC),
        TotalSeats:  50,
        Status:      status,
        Version:     1,
    }
}

func TestPublicListDefaultsToPublished(t *testing.T) {
    m := new(mockEvents)
    m.On("List", mock.Anything, mock.MatchedBy(func(f repository.EventFilter) bool {
        return f.Status == model.EventPublished && f.Q == "jazz" && f.Page.Page == 2
    })).Return([]model.Event{*sampleEvent(1, model.EventPublished)}, int64(21), nil).Once()

    rec := doJSON(newEventServer(m), http.MethodGet, "/v1/events?q=jazz&page=2", "")
    require.Equal(t, http.StatusOK, rec.Code)
    var body listResp[model.Event]
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
    assert.Equal(t, int64(21), body.Total)
    assert.Equal(t, 2, body.Page)
    require.Len(t, body.Items, 1)
    assert.Equal(t, "Jazz night", body.Items[0].Title)
    m.AssertExpectations(t)
}

func TestPublicListRejectsDrafts(t *testing.T) {
    m := new(mockEvents)
    e := newEventServer(m)

    rec := doJSON(e, http.MethodGet, "/v1/events?status=draft", "")
    assert.Equal(t, http.StatusBadRequest, rec.Code)

    rec = doJSON(e, http.MethodGet, "/v1/events?page=abc", "")
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    m.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestAdminListSeesDrafts(t *testing.T) {
    m := new(mockEvents)
    m.On("List", mock.Anything, mock.MatchedBy(func(f repository.EventFilter) bool {
        return f.Status == model.EventDraft
    })).Return([]model.Event(nil), int64(0), nil).Once()

    rec := doJSON(newEventServer(m), http.MethodGet, "/v1/admin/events?status=DRAFT", "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"items":[],"page":1,"pageSize":20,"total":0}`, rec.Body.String())
    m.AssertExpectations(t)
}

func TestGetHidesDraftsPublicly(t *testing.T) {
    m := new(mockEvents)
    m.On("Get", mock.Anything, uint64(4)).Return(sampleEvent(4, model.EventDraft), nil)
    m.On("Get", mock.Anything, uint64(5)).Return(nil, service.ErrEventNotFound)
    e := newEventServer(m)

    rec := doJSON(e, http.MethodGet, "/v1/events/4", "")
    assert.Equal(t, http.StatusNotFound, rec.Code)
    assert.Equal(t, "event_not_found", errorCode(t, rec))

    rec = doJSON(e, http.MethodGet, "/v1/admin/events/4", "")
    require.Equal(t, http.StatusOK, rec.Code)
    var ev model.Event
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ev))
    assert.Equal(t, model.EventDraft, ev.Status)

    rec = doJSON(e, http.MethodGet, "/v1/events/5", "")
    assert.Equal(t, http.StatusNotFound, rec.Code)

    rec = doJSON(e, http.MethodGet, "/v1/events/0", "")
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEvent(t *testing.T) {
    m := new(mockEvents)
    m.On("Create", mock.Anything, mock.MatchedBy(func(in service.EventInput) bool {
        return in.Title == "Jazz night" && in.TotalSeats == 50 && in.StartTime.Equal(sampleEvent(0, "").StartTime)
    })).Return(sampleEvent(1, model.EventDraft), nil).Once()
    e := newEventServer(m)

    rec := doJSON(e, http.MethodPost, "/v1/events",
        `{"title":"Jazz night","description":"Live quartet","location":"Hall A","startTime":"2026-11-01T19:00:00Z","totalSeats":50}`)
    require.Equal(t, http.StatusCreated, rec.Code)
    m.AssertExpectations(t)

    rec = doJSON(e, http.MethodPost, "/v1/events", `{"title":"Jazz night","location":"Hall A","startTime":"2026-11-01T19:00:00Z"}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Equal(t, "validation_error", errorCode(t, rec))
}

func TestPatchEventRejectsOccupiedSeats(t *testing.T) {
    m := new(mockEvents)
    rec := doJSON(newEventServer(m), http.MethodPatch, "/v1/events/1", `{"occupiedSeats":3}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    m.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestPatchEventErrorMapping(t *testing.T) {
    cases := []struct {
        err    error
        status int
        code   string
    }{
        {fmt.Errorf("%w: totalSeats 3 below occupied 5", service.ErrInvalidCapacity), http.StatusConflict, "invalid_capacity"},
        {fmt.Errorf("%w: cancelled -> published", service.ErrInvalidTransition), http.StatusConflict, "invalid_transition"},
        {service.ErrConflict, http.StatusConflict, "conflict"},
        {service.ErrEventNotFound, http.StatusNotFound, "event_not_found"},
    }
    for _, tc := range cases {
        m := new(mockEvents)
        m.On("Update", mock.Anything, uint64(1), mock.Anything).Return(nil, tc.err).Once()
        rec := doJSON(newEventServer(m), http.MethodPatch, "/v1/events/1", `{"totalSeats":3}`)
        assert.Equal(t, tc.status, rec.Code, tc.code)
        assert.Equal(t, tc.code, errorCode(t, rec))
    }
}

func TestPatchEventPassesFields(t *testing.T) {
    m := new(mockEvents)
    m.On("Update", mock.Anything, uint64(1), mock.MatchedBy(func(p service.EventPatch) bool {
        return p.Status != nil && *p.Status == model.EventPublished && p.Title == nil && p.TotalSeats == nil
    })).Return(sampleEvent(1, model.EventPublished), nil).Once()

    rec := doJSON(newEventServer(m), http.MethodPatch, "/v1/events/1", `{"status":"published"}`)
    require.Equal(t, http.StatusOK, rec.Code)
    m.AssertExpectations(t)
}

func TestDeleteEvent(t *testing.T) {
    m := new(mockEvents)
    m.On("Delete", mock.Anything, uint64(1)).Return(nil).Once()
    m.On("Delete", mock.Anything, uint64(2)).Return(repository.ErrConflict).Once()
    e := newEventServer(m)

    rec := doJSON(e, http.MethodDelete, "/v1/events/1", "")
    assert.Equal(t, http.StatusNoContent, rec.Code)

    rec = doJSON(e, http.MethodDelete, "/v1/events/2", "")
    assert.Equal(t, http.StatusConflict, rec.Code)
    assert.Equal(t, "conflict", errorCode(t, rec))
    m.AssertExpectations(t)
}

func TestListClampsHugePage(t *testing.T) {
    m := new(mockEvents)
    m.On("List", mock.Anything, mock.Anything).Return([]model.Event(nil), int64(0), nil).Once()

    rec := doJSON(newEventServer(m), http.MethodGet, "/v1/events?page=9223372036854775807", "")
    require.Equal(t, http.StatusOK, rec.Code)
    var body listResp[model.Event]
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
    assert.Equal(t, repository.MaxPage, body.Page)
}
