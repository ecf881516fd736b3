package model

import "time"

// RoleAdmin is the only role issued by this service.  Every back-office
// route requires it.
const RoleAdmin = "ADMIN"

// User represents a back-office account as stored in the `users` table.
// The plain password is never stored; only its bcrypt hash.
type User struct {
    ID           uint64    // users.id
    Email        string    // users.email (lower-cased, unique)
    PasswordHash string    // users.password_hash
    Role         string    // users.role
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA‑256 hash of the token value is stored.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
