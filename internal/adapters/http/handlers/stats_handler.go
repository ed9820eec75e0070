package handlers

import (
	"swearjar-backend/internal/adapters/http/middleware"
	"swearjar-backend/internal/core/services"
	"swearjar-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// StatsHandler handles statistics and dashboard endpoints
type StatsHandler struct {
	statsService *services.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// JarSummary returns the dashboard view for one jar
func (h *StatsHandler) JarSummary(c *fiber.Ctx) error {
	jarID, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid jar ID")
	}

	summary, err := h.statsService.JarSummary(c.Context(), middleware.ActorID(c), jarID)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Jar summary retrieved successfully", fiber.Map{"summary": summary})
}

// UserSummary returns the cross-jar view for the calling user
func (h *StatsHandler) UserSummary(c *fiber.Ctx) error {
	summary, err := h.statsService.UserSummary(c.Context(), middleware.ActorID(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to build user summary")
	}

	return response.Success(c, "User summary retrieved successfully", fiber.Map{"summary": summary})
}
