package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Montinou/stratixV2-sub007/config"
	"github.com/Montinou/stratixV2-sub007/internal/delivery/http/response"
	"github.com/Montinou/stratixV2-sub007/internal/domain"
	"github.com/Montinou/stratixV2-sub007/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware validates the Bearer token and ensures the caller's profile
// row exists before any handler runs. Both signing paths of the identity
// provider are accepted: HS256 with the shared secret and RS256 via JWKS.
func AuthMiddleware(jwksProvider *auth.Provider, cfg *config.Config, profileUC domain.ProfileUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		var tokenString string

		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		} else {
			cookie, err := c.Cookie("auth_token")
			if err == nil && cookie != "" {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
				if cfg.AuthJWTSecret == "" {
					return nil, fmt.Errorf("HS256 token received but AUTH_JWT_SECRET is not configured")
				}
				return []byte(cfg.AuthJWTSecret), nil
			}
			if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
				return jwksProvider.KeyFunc(token)
			}
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		})
		if err != nil || !token.Valid {
			slog.Debug("token validation failed", "error", err)
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Invalid claims", nil)
			c.Abort()
			return
		}

		sub, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		if sub == "" {
			response.Error(c, http.StatusUnauthorized, "Token missing subject", nil)
			c.Abort()
			return
		}

		// Upsert-on-first-touch: the profile row is the local source of truth
		// for role and company, never the token claims
		profile, err := profileUC.EnsureProfile(c.Request.Context(), &domain.Profile{
			ID:       sub,
			Email:    email,
			FullName: email,
		})
		if err != nil {
			slog.Error("failed to ensure profile", "error", err, "user_id", sub)
			response.Error(c, http.StatusUnauthorized, "User profile unavailable", nil)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyUserID), sub)
		c.Set(string(domain.KeyUserEmail), email)
		c.Set(string(domain.KeyUserRole), string(profile.Role))

		c.Next()
	}
}
