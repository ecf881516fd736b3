package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-registration/internal/config"
    "github.com/iliyamo/event-registration/internal/model"
    "github.com/iliyamo/event-registration/internal/repository"
    "github.com/iliyamo/event-registration/internal/utils"
)

// UserStore is the account lookup the auth endpoints need.
type UserStore interface {
    GetByEmail(ctx context.Context, email string) (model.User, error)
    GetByID(ctx context.Context, id uint64) (model.User, error)
}

// TokenStore persists hashed refresh tokens.
type TokenStore interface {
    StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
    ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
    RevokeByHash(ctx context.Context, tokenHash string) error
    RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AuthHandler bundles dependencies for the back-office auth endpoints.
// There is no public sign-up: admin accounts are bootstrapped from config.
type AuthHandler struct {
    Cfg    config.Config
    Users  UserStore
    Tokens TokenStore
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenStore) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type loginReq struct {
    Email    string `json:"email" validate:"required,email"`
    Password string `json:"password" validate:"required"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type userPart struct {
    ID    uint64 `json:"id"`
    Email string `json:"email"`
    Role  string `json:"role"`
}
type authResp struct {
    User    userPart  `json:"user"`
    Access  tokenPart `json:"access"`
    Refresh tokenPart `json:"refresh"`
}

// issue mints a fresh access/refresh pair and stores the refresh hash.
func (h *AuthHandler) issue(ctx context.Context, u model.User) (authResp, error) {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return authResp{}, err
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return authResp{}, err
    }
    if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return authResp{}, err
    }
    return authResp{
        User:    userPart{ID: u.ID, Email: u.Email, Role: u.Role},
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
    }, nil
}

// Login: verify credentials and return a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return writeError(c, http.StatusBadRequest, "invalid_body", "invalid request body")
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if err := c.Validate(&req); err != nil {
        return writeServiceError(c, err)
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if errors.Is(err, repository.ErrNotFound) {
        return writeError(c, http.StatusUnauthorized, "unauthorized", "invalid credentials")
    }
    if err != nil {
        return writeServiceError(c, err)
    }
    if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return writeError(c, http.StatusUnauthorized, "unauthorized", "invalid credentials")
    }

    resp, err := h.issue(ctx, u)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, resp)
}

// Refresh: validate by hash, revoke old, issue a rotated pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return writeError(c, http.StatusBadRequest, "validation_error", "refresh_token required")
    }
    hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

    ctx, cancel := reqCtx(c)
    defer cancel()

    userID, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        return writeError(c, http.StatusUnauthorized, "unauthorized", "invalid refresh token")
    }
    // Revoking is the claim on the token: when a concurrent refresh got
    // there first, this one is refused.
    if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return writeError(c, http.StatusUnauthorized, "unauthorized", "invalid refresh token")
        }
        return writeServiceError(c, err)
    }

    u, err := h.Users.GetByID(ctx, userID)
    if errors.Is(err, repository.ErrNotFound) || (err == nil && !u.IsActive) {
        _ = h.Tokens.RevokeAllForUser(ctx, userID)
        return writeError(c, http.StatusUnauthorized, "unauthorized", "invalid refresh token")
    }
    if err != nil {
        return writeServiceError(c, err)
    }

    resp, err := h.issue(ctx, u)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, resp)
}

// Logout revokes the refresh token in the body.  Without one, a valid
// bearer access token logs the caller out of every session.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req refreshReq
    _ = c.Bind(&req)
    refreshToken := strings.TrimSpace(req.RefreshToken)

    ctx, cancel := reqCtx(c)
    defer cancel()

    if refreshToken != "" {
        hash := utils.HashRefreshRaw(refreshToken)
        if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
            return writeError(c, http.StatusUnauthorized, "unauthorized", "invalid refresh token")
        }
        if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
            if errors.Is(err, repository.ErrNotFound) {
                return writeError(c, http.StatusUnauthorized, "unauthorized", "invalid refresh token")
            }
            return writeServiceError(c, err)
        }
        return c.NoContent(http.StatusNoContent)
    }

    auth := c.Request().Header.Get("Authorization")
    if strings.HasPrefix(auth, "Bearer ") {
        id, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer "))
        if err != nil || id.UserID == 0 {
            return writeError(c, http.StatusUnauthorized, "unauthorized", "invalid token")
        }
        if err := h.Tokens.RevokeAllForUser(ctx, id.UserID); err != nil {
            return writeServiceError(c, err)
        }
        return c.NoContent(http.StatusNoContent)
    }
    return writeError(c, http.StatusBadRequest, "validation_error", "provide Authorization header or refresh_token")
}

// Me returns the caller's account (protected).
func (h *AuthHandler) Me(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return writeError(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    u, err := h.Users.GetByID(ctx, uid)
    if err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, userPart{ID: u.ID, Email: u.Email, Role: u.Role})
}
