package handler

import (
    "context"
    "encoding/json"
    "net/http"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/event-registration/internal/model"
    "github.com/iliyamo/event-registration/internal/repository"
)

type memContacts struct {
    items []model.ContactMessage
}

func (m *memContacts) Create(_ context.Context, msg *model.ContactMessage) error {
    msg.ID = uint64(len(m.items) + 1)
    m.items = append(m.items, *msg)
    return nil
}

func (m *memContacts) List(_ context.Context, _ repository.ContactFilter) ([]model.ContactMessage, int64, error) {
    return m.items, int64(len(m.items)), nil
}

func (m *memContacts) Delete(_ context.Context, id uint64) error {
    for i, it := range m.items {
        if it.ID == id {
            m.items = append(m.items[:i], m.items[i+1:]...)
            return nil
        }
    }
    return repository.ErrNotFound
}

func TestContactMessages(t *testing.T) {
    store := &memContacts{}
    e := echo.New()
    e.Validator = NewValidator()
    h := NewContactHandler(store)
    e.POST("/v1/contact-messages", h.Create)
    e.GET("/v1/contact-messages", h.List)
    e.DELETE("/v1/contact-messages/:id", h.Delete)

    rec := doJSON(e, http.MethodPost, "/v1/contact-messages",
        `{"name":"Ana","email":"ANA@example.com","message":"  Is there parking?  "}`)
    require.Equal(t, http.StatusCreated, rec.Code)
    var msg model.ContactMessage
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
    assert.Equal(t, "ana@example.com", msg.Email)
    assert.Equal(t, "Is there parking?", msg.Message)

    rec = doJSON(e, http.MethodPost, "/v1/contact-messages", `{"name":"Ana","email":"ana@example.com"}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)

    rec = doJSON(e, http.MethodGet, "/v1/contact-messages", "")
    require.Equal(t, http.StatusOK, rec.Code)
    var list listResp[model.ContactMessage]
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
    assert.Equal(t, int64(1), list.Total)

    assert.Equal(t, http.StatusNoContent, doJSON(e, http.MethodDelete, "/v1/contact-messages/1", "").Code)
    rec = doJSON(e, http.MethodDelete, "/v1/contact-messages/1", "")
    assert.Equal(t, http.StatusNotFound, rec.Code)
}
