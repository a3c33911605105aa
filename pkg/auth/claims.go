package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tmoreno/bulkbridge-backend/pkg/enums"
)

// AccessTokenClaims is the typed JWT the external identity provider issues.
// Buyers carry only a user id; sellers additionally carry the shop they act
// for.
type AccessTokenClaims struct {
	UserID uuid.UUID       `json:"user_id"`
	ShopID *uuid.UUID      `json:"shop_id,omitempty"`
	Role   enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}
