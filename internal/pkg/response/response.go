package response

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"swearjar-backend/internal/core/domain"
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a success response
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created sends a 201 created response
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends an error response
func Error(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error:   message,
	})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

// Forbidden sends a 403 forbidden response
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, message)
}

// NotFound sends a 404 not found response
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// Conflict sends a 409 conflict response
func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, message)
}

// UnprocessableEntity sends a 422 response
func UnprocessableEntity(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnprocessableEntity, message)
}

// InternalServerError sends a 500 internal server error response
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

// FromDomainError maps the ledger error taxonomy to HTTP responses.
// Unrecognized errors become a generic 500.
func FromDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return NotFound(c, "Resource not found")
	case errors.Is(err, domain.ErrAccessDenied):
		return Forbidden(c, "You don't have permission to perform this operation")
	case errors.Is(err, domain.ErrInvalidAmount):
		return BadRequest(c, "Amount must be at least 0.01")
	case errors.Is(err, domain.ErrLimitExceeded):
		return UnprocessableEntity(c, "Amount is outside the jar's deposit limits")
	case errors.Is(err, domain.ErrInsufficientFunds):
		return UnprocessableEntity(c, "Insufficient funds")
	case errors.Is(err, domain.ErrInvalidState):
		return Conflict(c, "Transaction is not in the required status")
	case errors.Is(err, domain.ErrAlreadyMember):
		return Conflict(c, "User is already a member of this jar")
	case errors.Is(err, domain.ErrNotAMember):
		return NotFound(c, "User is not a member of this jar")
	case errors.Is(err, domain.ErrJarNotEmpty):
		return UnprocessableEntity(c, "Jar balance must be zero before deletion")
	case errors.Is(err, domain.ErrSettlementFailed):
		return UnprocessableEntity(c, "External settlement failed")
	case errors.Is(err, domain.ErrConflict):
		return Conflict(c, "Concurrent update conflict, please retry")
	case errors.Is(err, domain.ErrInvalidCurrency):
		return BadRequest(c, "Unsupported currency")
	case errors.Is(err, domain.ErrInvalidRole):
		return BadRequest(c, "Invalid role")
	case errors.Is(err, domain.ErrInvalidInput):
		return BadRequest(c, "Invalid request")
	default:
		return InternalServerError(c, "Internal server error")
	}
}
