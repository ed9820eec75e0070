package handlers

import (
	"errors"

	"swearjar-backend/internal/adapters/http/middleware"
	"swearjar-backend/internal/core/services"
	"swearjar-backend/internal/pkg/pagination"
	"swearjar-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// TransactionHandler handles transaction endpoints
type TransactionHandler struct {
	transactionService *services.TransactionService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactionService *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// Deposit adds money to a jar
func (h *TransactionHandler) Deposit(c *fiber.Ctx) error {
	jarID, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid jar ID")
	}

	var req services.DepositInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.JarID = jarID
	if !req.Amount.IsPositive() {
		return response.BadRequest(c, "Amount must be greater than 0")
	}

	tx, jar, err := h.transactionService.Deposit(c.Context(), middleware.ActorID(c), &req)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Created(c, "Deposit recorded", fiber.Map{
		"transaction": tx,
		"balance":     jar.Balance,
	})
}

// Withdraw moves money out of a jar
func (h *TransactionHandler) Withdraw(c *fiber.Ctx) error {
	jarID, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid jar ID")
	}

	var req services.WithdrawInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.JarID = jarID
	if !req.Amount.IsPositive() {
		return response.BadRequest(c, "Amount must be greater than 0")
	}

	tx, jar, err := h.transactionService.Withdraw(c.Context(), middleware.ActorID(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBankAccountRequired):
			return response.BadRequest(c, "A linked bank account is required for withdrawals")
		case errors.Is(err, services.ErrBankAccountNotVerified):
			return response.UnprocessableEntity(c, "Bank account is not verified for withdrawals")
		default:
			return response.FromDomainError(c, err)
		}
	}

	return response.Created(c, "Withdrawal recorded", fiber.Map{
		"transaction": tx,
		"balance":     jar.Balance,
	})
}

// Penalty charges a penalty into a jar
func (h *TransactionHandler) Penalty(c *fiber.Ctx) error {
	jarID, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid jar ID")
	}

	var req services.PenaltyInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.JarID = jarID

	tx, jar, err := h.transactionService.Penalty(c.Context(), middleware.ActorID(c), &req)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Created(c, "Penalty recorded", fiber.Map{
		"transaction": tx,
		"balance":     jar.Balance,
	})
}

// History lists a jar's transactions
func (h *TransactionHandler) History(c *fiber.Ctx) error {
	jarID, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid jar ID")
	}

	params := pagination.GetParams(c)
	txs, total, err := h.transactionService.History(c.Context(), middleware.ActorID(c), jarID, params.Offset, params.Limit)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Transactions retrieved successfully", pagination.NewResponse(txs, params, total))
}

// Get gets a single transaction
func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	txID, err := parseID(c, "txId")
	if err != nil {
		return response.BadRequest(c, "Invalid transaction ID")
	}

	tx, err := h.transactionService.Get(c.Context(), middleware.ActorID(c), txID)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Transaction retrieved successfully", fiber.Map{"transaction": tx})
}

// Approve completes a pending withdrawal
func (h *TransactionHandler) Approve(c *fiber.Ctx) error {
	txID, err := parseID(c, "txId")
	if err != nil {
		return response.BadRequest(c, "Invalid transaction ID")
	}

	tx, jar, err := h.transactionService.Approve(c.Context(), middleware.ActorID(c), txID)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Withdrawal approved", fiber.Map{
		"transaction": tx,
		"balance":     jar.Balance,
	})
}

// Cancel cancels a pending transaction
func (h *TransactionHandler) Cancel(c *fiber.Ctx) error {
	txID, err := parseID(c, "txId")
	if err != nil {
		return response.BadRequest(c, "Invalid transaction ID")
	}

	tx, _, err := h.transactionService.Cancel(c.Context(), middleware.ActorID(c), txID)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Success(c, "Transaction cancelled", fiber.Map{"transaction": tx})
}

// ReverseRequest represents reverse transaction request
type ReverseRequest struct {
	Description string `json:"description,omitempty"`
}

// Reverse creates a compensating refund for a completed deposit or penalty
func (h *TransactionHandler) Reverse(c *fiber.Ctx) error {
	txID, err := parseID(c, "txId")
	if err != nil {
		return response.BadRequest(c, "Invalid transaction ID")
	}

	var req ReverseRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return response.BadRequest(c, "Invalid request body")
	}

	tx, jar, err := h.transactionService.Reverse(c.Context(), middleware.ActorID(c), txID, req.Description)
	if err != nil {
		return response.FromDomainError(c, err)
	}

	return response.Created(c, "Transaction reversed", fiber.Map{
		"transaction": tx,
		"balance":     jar.Balance,
	})
}
