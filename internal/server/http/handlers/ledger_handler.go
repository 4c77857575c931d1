package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainErrors "github.com/craftdeal/craftdeal/internal/domain/errors"
	"github.com/craftdeal/craftdeal/internal/domain/model"
	"github.com/craftdeal/craftdeal/internal/server/http/dto"
)

// LedgerHandler manages balance and transfer endpoints.
type LedgerHandler struct {
	facade LedgerFacade
}

// NewLedgerHandler constructs LedgerHandler.
func NewLedgerHandler(facade LedgerFacade) *LedgerHandler {
	return &LedgerHandler{facade: facade}
}

// Summary handles GET /api/balance.
func (h *LedgerHandler) Summary(c *gin.Context) {
	balance, err := h.facade.Balance(c.Request.Context(), CurrentProfileID(c), CurrentRole(c))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.JSON(http.StatusOK, dto.BalanceResponse{})
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{
		Available: balance.Available,
		Pending:   balance.Pending,
		Withdrawn: balance.Withdrawn,
		Earned:    balance.Earned,
		Received:  balance.Received,
		Refunded:  balance.Refunded,
	})
}

// Transfer handles POST /api/balance/transfer.
func (h *LedgerHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	destinationID, err := uuid.Parse(req.DestinationID)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	destination := model.Subject{Type: model.SubjectType(req.DestinationType), ID: destinationID}

	entry, err := h.facade.Transfer(c.Request.Context(), CurrentProfileID(c), CurrentRole(c), destination, req.Amount, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidAmount):
			c.Status(http.StatusUnprocessableEntity)
		case errors.Is(err, domainErrors.ErrInsufficientBalance):
			c.Status(http.StatusPaymentRequired)
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.JSON(http.StatusOK, toLedgerEntryResponse(*entry))
}

// History handles GET /api/balance/history.
func (h *LedgerHandler) History(c *gin.Context) {
	entries, err := h.facade.LedgerHistory(c.Request.Context(), CurrentProfileID(c), CurrentRole(c))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNoContent)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(entries) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		response = append(response, toLedgerEntryResponse(e))
	}
	c.JSON(http.StatusOK, response)
}

func toLedgerEntryResponse(entry model.LedgerEntry) dto.LedgerEntryResponse {
	resp := dto.LedgerEntryResponse{
		ID:              entry.ID.String(),
		DestinationType: string(entry.Destination.Type),
		DestinationID:   entry.Destination.ID.String(),
		Amount:          entry.Amount,
		Reason:          string(entry.Reason),
		Note:            entry.Note,
		CreatedAt:       entry.CreatedAt,
	}
	if entry.Source != nil {
		resp.SourceType = string(entry.Source.Type)
		resp.SourceID = entry.Source.ID.String()
	}
	return resp
}
