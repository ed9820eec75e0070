package handlers

import (
	"swearjar-backend/internal/adapters/http/middleware"
	"swearjar-backend/internal/core/services"
	"swearjar-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BankAccountHandler handles linked bank account endpoints
type BankAccountHandler struct {
	bankAccountService *services.BankAccountService
}

// NewBankAccountHandler creates a new bank account handler
func NewBankAccountHandler(bankAccountService *services.BankAccountService) *BankAccountHandler {
	return &BankAccountHandler{bankAccountService: bankAccountService}
}

// Link records a newly linked bank account
func (h *BankAccountHandler) Link(c *fiber.Ctx) error {
	var req services.LinkInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.InstitutionName == "" {
		return response.BadRequest(c, "Institution name is required")
	}

	account, err := h.bankAccountService.Link(c.Context(), middleware.ActorID(c), &req)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Created(c, "Bank account linked", fiber.Map{"bank_account": account})
}

// List lists the caller's linked bank accounts
func (h *BankAccountHandler) List(c *fiber.Ctx) error {
	accounts, err := h.bankAccountService.List(c.Context(), middleware.ActorID(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to list bank accounts")
	}

	return response.Success(c, "Bank accounts retrieved successfully", fiber.Map{"bank_accounts": accounts})
}

// VerifyRequest represents the verification outcome report
type VerifyRequest struct {
	WithdrawalsEnabled bool `json:"withdrawals_enabled"`
}

// Verify records the provider's verification outcome for an account
func (h *BankAccountHandler) Verify(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid bank account ID")
	}

	var req VerifyRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return response.BadRequest(c, "Invalid request body")
	}

	account, err := h.bankAccountService.MarkVerified(c.Context(), middleware.ActorID(c), id, req.WithdrawalsEnabled)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Bank account verified", fiber.Map{"bank_account": account})
}

// Unlink removes a linked bank account
func (h *BankAccountHandler) Unlink(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid bank account ID")
	}

	if err := h.bankAccountService.Unlink(c.Context(), middleware.ActorID(c), id); err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Bank account unlinked", nil)
}
