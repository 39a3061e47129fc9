package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wallet-ledger-engine/internal/api/middleware"
	"github.com/wallet-ledger-engine/internal/api/service"
	"github.com/wallet-ledger-engine/internal/domain/account"
	"github.com/wallet-ledger-engine/internal/domain/ledger"
	"github.com/wallet-ledger-engine/internal/engine"
)

// MovementHandler handles HTTP requests for money movements. All endpoints
// require authentication; withdrawals and transfers always act on the
// caller's own account.
type MovementHandler struct {
	engine         engine.Service
	accountService service.AccountService
	logger         *slog.Logger
}

// NewMovementHandler creates a new movement handler
func NewMovementHandler(logger *slog.Logger, eng engine.Service, accountService service.AccountService) *MovementHandler {
	return &MovementHandler{
		engine:         eng,
		accountService: accountService,
		logger:         logger,
	}
}

// Deposit credits an account. Without an explicit account_id the caller's
// own account is credited.
func (h *MovementHandler) Deposit(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	var accountID uuid.UUID
	if req.AccountID != "" {
		id, err := uuid.Parse(req.AccountID)
		if err != nil {
			RespondBadRequest(c, "Invalid account ID")
			return
		}
		accountID = id
	} else {
		acc, ok := h.callerAccount(c)
		if !ok {
			return
		}
		accountID = acc.ID
	}

	movement, err := h.engine.Deposit(c.Request.Context(), accountID, req.Amount)
	if err != nil {
		h.respondMovementError(c, err)
		return
	}

	RespondCreated(c, mapMovementToResponse(movement))
}

// Withdraw debits the caller's account
func (h *MovementHandler) Withdraw(c *gin.Context) {
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, ok := h.callerAccount(c)
	if !ok {
		return
	}

	movement, err := h.engine.Withdraw(c.Request.Context(), acc.ID, req.Amount)
	if err != nil {
		h.respondMovementError(c, err)
		return
	}

	RespondCreated(c, mapMovementToResponse(movement))
}

// Transfer moves money from the caller's account to the recipient account
func (h *MovementHandler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	recipientID, err := uuid.Parse(req.RecipientAccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid recipient account ID")
		return
	}

	acc, ok := h.callerAccount(c)
	if !ok {
		return
	}

	movement, err := h.engine.Transfer(c.Request.Context(), acc.ID, recipientID, req.Amount, ledger.PurposeTransfer)
	if err != nil {
		h.respondMovementError(c, err)
		return
	}

	RespondCreated(c, mapMovementToResponse(movement))
}

// Reverse appends the inverse of a committed movement
func (h *MovementHandler) Reverse(c *gin.Context) {
	var req ReversalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	reference, err := uuid.Parse(req.Reference)
	if err != nil {
		RespondBadRequest(c, "Invalid movement reference")
		return
	}

	movement, err := h.engine.Reverse(c.Request.Context(), reference)
	if err != nil {
		h.respondMovementError(c, err)
		return
	}

	RespondCreated(c, mapMovementToResponse(movement))
}

// callerAccount resolves the authenticated user's account. Responds with an
// error and returns false when the account cannot be resolved.
func (h *MovementHandler) callerAccount(c *gin.Context) (*account.Account, bool) {
	userID, ok := middleware.GetAuthUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return nil, false
	}

	acc, err := h.accountService.GetAccountByOwner(c.Request.Context(), userID)
	if err != nil {
		var accNotFound account.ErrAccountNotFound
		if errors.As(err, &accNotFound) {
			RespondNotFound(c, "Account not found")
			return nil, false
		}
		h.logger.Error("Failed to resolve caller account", "user_id", userID.String(), "error", err)
		RespondInternalError(c)
		return nil, false
	}

	return acc, true
}

// respondMovementError maps engine and store errors to HTTP statuses
func (h *MovementHandler) respondMovementError(c *gin.Context, err error) {
	var validationErr engine.ValidationError
	if errors.As(err, &validationErr) {
		RespondBadRequest(c, validationErr.Error())
		return
	}

	var accNotFound account.ErrAccountNotFound
	if errors.As(err, &accNotFound) {
		RespondNotFound(c, "Account not found")
		return
	}

	var refNotFound ledger.ErrReferenceNotFound
	if errors.As(err, &refNotFound) {
		RespondNotFound(c, "Movement not found")
		return
	}

	if errors.Is(err, account.ErrInsufficientFunds) {
		RespondUnprocessable(c, "INSUFFICIENT_FUNDS", "Insufficient funds")
		return
	}

	var legFailure engine.ReversalLegFailure
	if errors.As(err, &legFailure) {
		RespondWithErrorDetails(c, http.StatusUnprocessableEntity, "REVERSAL_REJECTED", "Reversal would break an invariant", legFailure.Legs)
		return
	}

	var concurrentErr account.ErrConcurrentModification
	if errors.As(err, &concurrentErr) {
		RespondConflict(c, "Concurrent modification, retry the operation")
		return
	}

	h.logger.Error("Movement failed", "error", err)
	RespondInternalError(c)
}

// mapMovementToResponse maps a committed movement to a response DTO
func mapMovementToResponse(m *engine.Movement) MovementResponse {
	entries := make([]EntryResponse, 0, len(m.Entries))
	for _, entry := range m.Entries {
		entries = append(entries, mapEntryToResponse(entry))
	}

	return MovementResponse{
		Reference:   m.Reference.String(),
		Purpose:     string(m.Purpose),
		Entries:     entries,
		CommittedAt: m.CommittedAt.Format(time.RFC3339),
	}
}
