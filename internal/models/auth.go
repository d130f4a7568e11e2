package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest holds the payload for creating a new account.
type RegisterRequest struct {
	FullName   string      `json:"name" validate:"required"`
	Email      string      `json:"email" validate:"required,email"`
	Password   string      `json:"password" validate:"required,min=6"`
	Role       AccountRole `json:"role" validate:"required,oneof=ADMIN STAFF STUDENT"`
	Department string      `json:"department"`
	IP         string      `json:"-"`
	UserAgent  string      `json:"-"`
}

// LoginRequest holds credentials for authenticating an account.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// SessionResponse returns the issued tokens and account info.
type SessionResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
	Account      AccountInfo `json:"account"`
	IssuedAt     time.Time   `json:"issued_at"`
}

// RefreshTokenRequest exchanges a refresh token for a new access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
	IP           string `json:"-"`
	UserAgent    string `json:"-"`
}

// RefreshTokenResponse returns the refreshed tokens.
type RefreshTokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
}

// AccountInfo describes the authenticated account in responses.
type AccountInfo struct {
	ID         string      `json:"id"`
	Email      string      `json:"email"`
	FullName   string      `json:"full_name"`
	Role       AccountRole `json:"role"`
	Department string      `json:"department,omitempty"`
}

// JWTClaims represents the JWT payload for access tokens. Department travels
// in the token so staff routing never needs an extra lookup.
type JWTClaims struct {
	AccountID  string      `json:"account_id"`
	Role       AccountRole `json:"role"`
	Email      string      `json:"email"`
	FullName   string      `json:"full_name"`
	Department string      `json:"department,omitempty"`
	jwt.RegisteredClaims
}
