package handlers

import (
	"swearjar-backend/internal/config"
	"swearjar-backend/internal/pkg/jwt"
	"swearjar-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DevTokenHandler issues short-lived tokens for local development,
// where no external identity provider is running. Only mounted in
// dev mode.
type DevTokenHandler struct {
	cfg *config.Config
}

// NewDevTokenHandler creates a new dev token handler
func NewDevTokenHandler(cfg *config.Config) *DevTokenHandler {
	return &DevTokenHandler{cfg: cfg}
}

// DevTokenRequest represents dev token request
type DevTokenRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

// Issue issues a development access token
func (h *DevTokenHandler) Issue(c *fiber.Ctx) error {
	var req DevTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.UserID == "" {
		return response.BadRequest(c, "user_id is required")
	}

	token, err := jwt.GenerateDevToken(req.UserID, req.Email, h.cfg.JWT.Secret, h.cfg.JWT.DevTokenMinutes)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate token")
	}

	return response.Success(c, "Development token issued", fiber.Map{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   h.cfg.JWT.DevTokenMinutes * 60,
	})
}
