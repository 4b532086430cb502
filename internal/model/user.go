package model

import "time"

// User represents a shop customer as stored in the `users` table.  The
// json tags are omitted because these structs are used internally by the
// repository layer; handlers define separate response types with the
// Spanish field names expected by the SPA frontend.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique, lowercased email address.
//	PasswordHash – bcrypt hashed password.
//	Nombre       – display name.
//	Rol          – role string, defaults to "usuario".
//	Telefono     – contact phone, may be empty.
//	UltimoLogin  – timestamp of the last successful login.
//	EsActivo     – whether the account is active.
//	CreatedAt    – timestamp of creation (immutable).
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Nombre       string    // users.nombre
	Rol          string    // users.rol
	Telefono     string    // users.telefono
	UltimoLogin  time.Time // users.ultimo_login
	EsActivo     bool      // users.es_activo
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and carries expiry and revocation
// metadata.  The token itself is a signed JWT; only its SHA-256 hash is
// stored.  Rotation revokes the presented row and inserts a new one, so a
// rotated-out token can never be replayed.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – owner of the token.
//	TokenHash – SHA-256 hex digest of the token value.
//	ExpiresAt – expiration timestamp of the token.
//	RevokedAt – when the token was revoked (null if still active).
//	CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
