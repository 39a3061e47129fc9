package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wallet-ledger-engine/internal/api/service"
	"github.com/wallet-ledger-engine/internal/domain/account"
	"github.com/wallet-ledger-engine/internal/domain/ledger"
)

// AccountHandler handles HTTP requests for account and entry-history reads
type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// GetByID retrieves an account by its ID, returning 404 if not found
func (h *AccountHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid account ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	acc, err := h.accountService.GetAccountByID(c.Request.Context(), id)
	if err != nil {
		var accNotFound account.ErrAccountNotFound
		if errors.As(err, &accNotFound) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to get account", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// GetEntries retrieves paginated entry history for an account from the archive
func (h *AccountHandler) GetEntries(c *gin.Context) {
	accountIDParam := c.Param("id")
	accountID, err := uuid.Parse(accountIDParam)
	if err != nil {
		h.logger.Error("Invalid account ID", "account_id", accountIDParam, "error", err)
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	entries, total, err := h.accountService.GetEntriesByAccountID(
		c.Request.Context(),
		accountID,
		pagination.Page,
		pagination.PerPage,
	)
	if err != nil {
		h.logger.Error("Failed to get entries", "account_id", accountIDParam, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]EntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, mapEntryToResponse(entry))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, pagination.Page, pagination.PerPage, int(total))
}

// GetMovement retrieves the entries of one movement from the authoritative log
func (h *AccountHandler) GetMovement(c *gin.Context) {
	referenceParam := c.Param("reference")
	reference, err := uuid.Parse(referenceParam)
	if err != nil {
		h.logger.Error("Invalid movement reference", "reference", referenceParam, "error", err)
		RespondBadRequest(c, "Invalid movement reference")
		return
	}

	entries, err := h.accountService.GetMovementByReference(c.Request.Context(), reference)
	if err != nil {
		var refNotFound ledger.ErrReferenceNotFound
		if errors.As(err, &refNotFound) {
			RespondNotFound(c, "Movement not found")
			return
		}
		h.logger.Error("Failed to get movement", "reference", referenceParam, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]EntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, mapEntryToResponse(entry))
	}

	RespondOK(c, EntryListResponse{Entries: responses})
}

// mapEntryToResponse maps a ledger entry to an entry response DTO
func mapEntryToResponse(entry *ledger.Entry) EntryResponse {
	return EntryResponse{
		ID:            entry.ID.String(),
		Reference:     entry.Reference.String(),
		AccountID:     entry.AccountID.String(),
		Direction:     string(entry.Direction),
		Purpose:       string(entry.Purpose),
		Amount:        entry.Amount,
		BalanceBefore: entry.BalanceBefore,
		BalanceAfter:  entry.BalanceAfter,
		Metadata:      entry.Metadata,
		CreatedAt:     entry.CreatedAt.Format(time.RFC3339),
	}
}
