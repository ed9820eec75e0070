package handlers

import (
	"errors"
	"strconv"

	"swearjar-backend/internal/adapters/http/middleware"
	"swearjar-backend/internal/core/services"
	"swearjar-backend/internal/pkg/pagination"
	"swearjar-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// JarHandler handles jar endpoints
type JarHandler struct {
	jarService *services.JarService
}

// NewJarHandler creates a new jar handler
func NewJarHandler(jarService *services.JarService) *JarHandler {
	return &JarHandler{jarService: jarService}
}

// parseID parses a numeric path parameter
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// Create creates a new jar with the caller as owner
func (h *JarHandler) Create(c *fiber.Ctx) error {
	var req services.CreateJarInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Name == "" {
		return response.BadRequest(c, "Jar name is required")
	}
	if req.Currency == "" {
		return response.BadRequest(c, "Currency is required")
	}

	jar, err := h.jarService.Create(c.Context(), middleware.ActorID(c), &req)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Created(c, "Jar created successfully", fiber.Map{"jar": jar})
}

// List lists the caller's jars
func (h *JarHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	jars, total, err := h.jarService.ListForUser(c.Context(), middleware.ActorID(c), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list jars")
	}

	return response.Success(c, "Jars retrieved successfully", pagination.NewResponse(jars, params, total))
}

// Get gets a jar by ID
func (h *JarHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid jar ID")
	}

	jar, err := h.jarService.Get(c.Context(), middleware.ActorID(c), id)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Jar retrieved successfully", fiber.Map{"jar": jar})
}

// UpdateSettings updates jar settings
func (h *JarHandler) UpdateSettings(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid jar ID")
	}

	var req services.UpdateSettingsInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	jar, err := h.jarService.UpdateSettings(c.Context(), middleware.ActorID(c), id, &req)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Jar updated successfully", fiber.Map{"jar": jar})
}

// Delete soft deletes a jar (owner only, zero balance)
func (h *JarHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid jar ID")
	}

	if err := h.jarService.Delete(c.Context(), middleware.ActorID(c), id); err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Jar deleted successfully", nil)
}

// AddMember adds a member to a jar
func (h *JarHandler) AddMember(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid jar ID")
	}

	var req services.AddMemberInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.UserID == "" {
		return response.BadRequest(c, "User ID is required")
	}

	membership, err := h.jarService.AddMember(c.Context(), middleware.ActorID(c), id, &req)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Created(c, "Member added successfully", fiber.Map{"membership": membership})
}

// ListMembers lists a jar's members
func (h *JarHandler) ListMembers(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid jar ID")
	}

	members, err := h.jarService.ListMembers(c.Context(), middleware.ActorID(c), id)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Members retrieved successfully", fiber.Map{"members": members})
}

// UpdateMember changes a member's role or permission flags
func (h *JarHandler) UpdateMember(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid jar ID")
	}
	userID := c.Params("userId")
	if userID == "" {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req services.UpdateMemberInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	membership, err := h.jarService.UpdateMember(c.Context(), middleware.ActorID(c), id, userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrOwnerImmutable) {
			return response.Conflict(c, "The owner's membership cannot be changed")
		}
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Member updated successfully", fiber.Map{"membership": membership})
}

// RemoveMember removes a member from a jar
func (h *JarHandler) RemoveMember(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid jar ID")
	}
	userID := c.Params("userId")
	if userID == "" {
		return response.BadRequest(c, "Invalid user ID")
	}

	if err := h.jarService.RemoveMember(c.Context(), middleware.ActorID(c), id, userID); err != nil {
		if errors.Is(err, services.ErrOwnerImmutable) {
			return response.Conflict(c, "The owner cannot be removed")
		}
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Member removed successfully", nil)
}
