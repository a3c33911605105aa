package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tmoreno/bulkbridge-backend/pkg/config"
	"github.com/tmoreno/bulkbridge-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "bulkbridge-test", ExpirationMinutes: 30}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	shopID := uuid.New()
	payload := TokenPayload{UserID: uuid.New(), ShopID: &shopID, Role: enums.ActorRoleSeller}

	signed, err := MintAccessToken(cfg, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != payload.UserID {
		t.Fatalf("user id = %s, want %s", claims.UserID, payload.UserID)
	}
	if claims.ShopID == nil || *claims.ShopID != shopID {
		t.Fatalf("shop id = %v, want %s", claims.ShopID, shopID)
	}
	if claims.Role != enums.ActorRoleSeller {
		t.Fatalf("role = %s", claims.Role)
	}
}

func TestMintRejectsSellerWithoutShop(t *testing.T) {
	_, err := MintAccessToken(testJWTConfig(), time.Now(), TokenPayload{UserID: uuid.New(), Role: enums.ActorRoleSeller})
	if err == nil {
		t.Fatal("expected error for seller token without shop id")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), TokenPayload{UserID: uuid.New(), Role: enums.ActorRoleBuyer})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), TokenPayload{UserID: uuid.New(), Role: enums.ActorRoleBuyer})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, signed); err == nil {
		t.Fatal("expected issuer mismatch to be rejected")
	}
}
