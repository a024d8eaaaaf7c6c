package shared

import "github.com/golang-jwt/jwt/v5"

// shared types across the application

// TokenTypeAccess is the only token type the API issues.
const TokenTypeAccess = "access"

// AuthClaims is the JWT payload of an access token.
type AuthClaims struct {
	UserID   string `json:"user_id"`  // user identifier(UUID)
	UserName string `json:"username"` // username at issue time
	Role     string `json:"role"`     // role at issue time, the middleware reloads the user anyway
	Type     string `json:"type"`
	jwt.RegisteredClaims
}
