package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/procurehub/portal/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.Role
	// JTI ties the token to its refresh session; one is generated when empty.
	JTI string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID uuid.UUID  `json:"user_id"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}
