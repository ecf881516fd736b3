package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/event-registration/internal/utils"
)

const testSecret = "test-secret"

func adminServer() *echo.Echo {
    e := echo.New()
    e.GET("/admin", func(c echo.Context) error {
        return c.String(http.StatusOK, currentUserID(c))
    }, JWTAuth(testSecret), RequireRole("ADMIN"))
    return e
}

func call(e *echo.Echo, bearer string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(http.MethodGet, "/admin", nil)
    if bearer != "" {
        req.Header.Set("Authorization", "Bearer "+bearer)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func TestJWTAuthAcceptsAdmin(t *testing.T) {
    tok, err := utils.NewAccessToken(testSecret, 7, "ADMIN", 5)
    require.NoError(t, err)

    rec := call(adminServer(), tok.Token)
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "7", rec.Body.String())
}

func TestJWTAuthRejections(t *testing.T) {
    e := adminServer()

    rec := call(e, "")
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.JSONEq(t, `{"error":"unauthorized","message":"missing bearer token"}`, rec.Body.String())

    wrongKey, err := utils.NewAccessToken("other-secret", 7, "ADMIN", 5)
    require.NoError(t, err)
    assert.Equal(t, http.StatusUnauthorized, call(e, wrongKey.Token).Code)

    expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
        "sub": 7, "role": "ADMIN", "exp": time.Now().Add(-time.Minute).Unix(),
    })
    signed, err := expired.SignedString([]byte(testSecret))
    require.NoError(t, err)
    assert.Equal(t, http.StatusUnauthorized, call(e, signed).Code)

    hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
        "sub": 7, "role": "ADMIN", "exp": time.Now().Add(time.Minute).Unix(),
    })
    signed, err = hs512.SignedString([]byte(testSecret))
    require.NoError(t, err)
    assert.Equal(t, http.StatusUnauthorized, call(e, signed).Code)
}

func TestRequireRoleForbidsOtherRoles(t *testing.T) {
    tok, err := utils.NewAccessToken(testSecret, 7, "VIEWER", 5)
    require.NoError(t, err)

    rec := call(adminServer(), tok.Token)
    assert.Equal(t, http.StatusForbidden, rec.Code)
    assert.Contains(t, rec.Body.String(), `"forbidden"`)
}
