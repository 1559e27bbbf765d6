package testhelpers

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/surepeps/negotiation-service/internal/middleware"
)

// CreateWebJWT creates a JWT for web clients with an IP-based claim.
func (h *TestHelper) CreateWebJWT(userID uuid.UUID, ipAddress string) string {
	now := time.Now().Unix()
	claims := jwt.MapClaims{
		"iss": middleware.TokenIssuer,
		"sub": userID.String(),
		"iat": now,
		"exp": now + 15*60,
		"ip":  ipAddress,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(h.PrivateKey)
	require.NoError(h.T, err, "Failed to sign test JWT (web style)")
	return signed
}

// CreateMobileJWT creates a JWT for mobile clients with a device-ID claim.
func (h *TestHelper) CreateMobileJWT(userID uuid.UUID, deviceID string) string {
	now := time.Now().Unix()
	claims := jwt.MapClaims{
		"iss":       middleware.TokenIssuer,
		"sub":       userID.String(),
		"iat":       now,
		"exp":       now + 15*60,
		"device_id": deviceID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(h.PrivateKey)
	require.NoError(h.T, err, "Failed to sign test JWT (mobile style)")
	return signed
}
