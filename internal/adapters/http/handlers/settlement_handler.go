package handlers

import (
	"swearjar-backend/internal/core/services"
	"swearjar-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SettlementHandler is the inbound half of the external bank-transfer
// boundary: the provider reports transfer outcomes here, keyed by the
// transaction reference it was given in the intent.
type SettlementHandler struct {
	transactionService *services.TransactionService
}

// NewSettlementHandler creates a new settlement handler
func NewSettlementHandler(transactionService *services.TransactionService) *SettlementHandler {
	return &SettlementHandler{transactionService: transactionService}
}

// CallbackRequest represents the provider's outcome report
type CallbackRequest struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
}

// Callback resolves a pending bank-backed transaction
func (h *SettlementHandler) Callback(c *fiber.Ctx) error {
	var req CallbackRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Reference == "" {
		return response.BadRequest(c, "Transaction reference is required")
	}

	switch req.Status {
	case "completed":
		tx, jar, err := h.transactionService.CompleteSettlement(c.Context(), req.Reference)
		if err != nil {
			return response.FromDomainError(c, err)
		}
		return response.Success(c, "Settlement completed", fiber.Map{
			"transaction": tx,
			"balance":     jar.Balance,
		})
	case "failed":
		tx, _, err := h.transactionService.FailSettlement(c.Context(), req.Reference)
		if err != nil {
			return response.FromDomainError(c, err)
		}
		return response.Success(c, "Settlement failure recorded", fiber.Map{"transaction": tx})
	default:
		return response.BadRequest(c, "Status must be 'completed' or 'failed'")
	}
}
