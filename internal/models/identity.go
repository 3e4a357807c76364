package models

import "github.com/golang-jwt/jwt/v4"

// Identity is the caller identity extracted from a verified bearer token.
type Identity struct {
	SubjectID string
	Email     string
	Name      string
	Avatar    string
}

// TokenClaims are the claims we read from the identity provider's tokens,
// extending the standard registered claims.
type TokenClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// Identity converts the raw claims into the caller identity handlers use.
func (c *TokenClaims) Identity() Identity {
	return Identity{
		SubjectID: c.Subject,
		Email:     c.Email,
		Name:      c.Name,
		Avatar:    c.Picture,
	}
}
