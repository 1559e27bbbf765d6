package middleware

import (
	"context"
	"crypto/rsa"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/surepeps/negotiation-service/internal/utils"
)

type contextKey string

const (
	ContextKeyUserID = contextKey("userID")

	// Cookie names follow the __Host- prefix rule (no Domain attribute allowed)
	AccessTokenCookieName = "__Host-accessToken"
)

// AuthMiddleware protects the negotiation endpoints. Missing or invalid
// tokens return 401.
//   - If platform == web  => the JWT is read from the AccessTokenCookieName
//   - If platform != web  => the JWT is read from Authorization: Bearer ...
func AuthMiddleware(pub *rsa.PublicKey) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			platform := utils.GetClientPlatform(r)
			clientID := utils.GetClientIdentifier(r, platform)

			tokenStr, err := extractAccessToken(r, platform)
			if err != nil {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), nil,
				)
				return
			}

			tok, vErr := ValidateToken(r.Context(), tokenStr, clientID, pub, platform)
			if vErr != nil || !tok.Valid {
				if errors.Is(vErr, jwt.ErrTokenExpired) {
					utils.RespondErrorWithCode(
						w, http.StatusUnauthorized, utils.ErrCodeTokenExpired, "Token expired", nil, vErr,
					)
					return
				}
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid token", nil, vErr,
				)
				return
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid claims", nil,
				)
				return
			}
			sub, ok := claims["sub"].(string)
			if !ok {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing subject", nil,
				)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext reads the authenticated user ID set by AuthMiddleware.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	raw, ok := ctx.Value(ContextKeyUserID).(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// helper: read the token from cookie if web, or from Bearer if android/ios
func extractAccessToken(r *http.Request, p utils.PlatformType) (string, error) {
	if p == utils.PlatformWeb {
		c, err := r.Cookie(AccessTokenCookieName)
		if err != nil || c.Value == "" {
			return "", errors.New("missing access_token cookie")
		}
		return c.Value, nil
	}

	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", errors.New("missing Authorization header")
	}
	return strings.TrimPrefix(h, "Bearer "), nil
}
