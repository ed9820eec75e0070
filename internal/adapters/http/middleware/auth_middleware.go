package middleware

import (
	"strings"

	"swearjar-backend/internal/config"
	"swearjar-backend/internal/pkg/jwt"
	"swearjar-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates the bearer token issued by the external
// identity provider and puts the opaque user id in the request context
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		authHeader := c.Get("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			accessToken = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if accessToken == "" {
			accessToken = c.Cookies("access_token")
		}
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		c.Locals("userID", claims.UserID)
		c.Locals("email", claims.Email)

		return c.Next()
	}
}

// ActorID extracts the authenticated user id from the request context
func ActorID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}

// SettlementAuthMiddleware guards the settlement callback endpoint with
// a shared secret header, since the provider does not hold user tokens
func SettlementAuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" || c.Get("X-Settlement-Secret") != secret {
			return response.Unauthorized(c, "Invalid settlement credentials")
		}
		return c.Next()
	}
}
