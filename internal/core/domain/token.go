package domain

import "time"

// TokenClaims is what a verified bearer token asserts.
type TokenClaims struct {
	UserID    string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RevokedToken marks a token as unusable before its natural expiry.
type RevokedToken struct {
	Token     string
	RevokedAt time.Time
	// ExpiresAt is the token's own expiry; after it the record can be purged.
	ExpiresAt time.Time
}
