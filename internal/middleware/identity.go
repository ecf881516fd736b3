package middleware

import (
    "fmt"

    "github.com/labstack/echo/v4"
)

// currentUserID renders the authenticated subject stored by JWTAuth as a
// string for use in Redis keys.  Anonymous callers map to "anon".
func currentUserID(c echo.Context) string {
    switch v := c.Get(CtxUserID).(type) {
    case string:
        if v != "" {
            return v
        }
    case float64:
        return fmt.Sprintf("%.0f", v)
    case uint64, int64, int:
        return fmt.Sprint(v)
    }
    return "anon"
}
