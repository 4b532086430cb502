package utils // package utils provides helpers for token creation and hashing

import (
	"crypto/sha256" // SHA-256 hashing for stored refresh tokens
	"encoding/hex"  // hex encoding of digests
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidToken is returned when a token fails signature or expiry
// verification, or when its claims do not have the expected shape.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken is a signed HS256 JWT authorizing API calls.  Its payload
// carries the user id plus the name and email shown in the frontend header,
// mirroring what the SPA decodes from localStorage.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// RefreshToken is the longer-lived credential exchanged for a new token
// pair.  It is also a signed JWT, but with a separate secret and only the
// user id in its payload.  The database stores a SHA-256 hash of the raw
// string, never the token itself.
type RefreshToken struct {
	Raw string    // signed JWT returned to the client
	Exp time.Time // UTC expiration time
}

// AccessClaims is the decoded payload of an access token.
type AccessClaims struct {
	UserID uint64
	Nombre string
	Email  string
}

// NewAccessToken builds and signs an HS256 access token.  The claims use
// the Spanish names the frontend expects: idUsuario, nombre and email,
// plus standard exp/iat.
func NewAccessToken(secret string, userID uint64, nombre, email string, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"idUsuario": userID,
		"nombre":    nombre,
		"email":     email,
		"exp":       exp.Unix(),
		"iat":       time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken builds and signs a refresh token with the refresh secret.
// Only the user id is embedded; name and email would go stale across
// profile edits.
func NewRefreshToken(secret string, userID uint64, ttlMin int) (RefreshToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"idUsuario": userID,
		"exp":       exp.Unix(),
		"iat":       time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{Raw: signed, Exp: exp}, nil
}

// ParseAccessToken verifies an access token and returns its claims.
func ParseAccessToken(secret, raw string) (AccessClaims, error) {
	claims, err := parseHS256(secret, raw)
	if err != nil {
		return AccessClaims{}, err
	}
	uid, ok := claimUserID(claims)
	if !ok {
		return AccessClaims{}, ErrInvalidToken
	}
	out := AccessClaims{UserID: uid}
	if v, ok := claims["nombre"].(string); ok {
		out.Nombre = v
	}
	if v, ok := claims["email"].(string); ok {
		out.Email = v
	}
	return out, nil
}

// ParseRefreshToken verifies a refresh token against the refresh secret and
// returns the embedded user id.  Signature mismatch, expiry and malformed
// claims all collapse into ErrInvalidToken; callers still have to check the
// stored hash before accepting the token.
func ParseRefreshToken(secret, raw string) (uint64, error) {
	claims, err := parseHS256(secret, raw)
	if err != nil {
		return 0, err
	}
	uid, ok := claimUserID(claims)
	if !ok {
		return 0, ErrInvalidToken
	}
	return uid, nil
}

// HashRefreshRaw returns the SHA-256 hash of the raw refresh token as a hex
// string.  Storing only the hash prevents stolen database rows from being
// replayed as live sessions.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func parseHS256(secret, raw string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// claimUserID pulls the idUsuario claim out of a decoded payload.  JSON
// numbers decode as float64.
func claimUserID(claims jwt.MapClaims) (uint64, bool) {
	switch v := claims["idUsuario"].(type) {
	case float64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
