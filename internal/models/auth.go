package models

import "github.com/golang-jwt/jwt/v5"

// WizardClaims binds a token to a single wizard session.
type WizardClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// AdminPrincipal identifies the caller of admin routes by their backend token.
type AdminPrincipal struct {
	Token string
	Actor string
}
