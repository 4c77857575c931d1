package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/craftdeal/craftdeal/internal/domain/errors"
	"github.com/craftdeal/craftdeal/internal/domain/model"
	"github.com/craftdeal/craftdeal/internal/server/http/dto"
)

// RefundHandler manages escrow and refund endpoints.
type RefundHandler struct {
	facade RefundFacade
}

// NewRefundHandler constructs RefundHandler.
func NewRefundHandler(facade RefundFacade) *RefundHandler {
	return &RefundHandler{facade: facade}
}

// Escrow handles GET /api/orders/:id/escrow.
func (h *RefundHandler) Escrow(c *gin.Context) {
	orderID, ok := pathUUID(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	escrow, err := h.facade.OrderEscrow(c.Request.Context(), CurrentProfileID(c), orderID)
	if err != nil {
		h.writeRefundError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.EscrowResponse{
		OrderID:    escrow.OrderID.String(),
		Amount:     escrow.Amount,
		Status:     string(escrow.Status),
		ReleasedAt: escrow.ReleasedAt,
	})
}

// Request handles POST /api/orders/:id/refunds.
func (h *RefundHandler) Request(c *gin.Context) {
	orderID, ok := pathUUID(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	var req dto.RefundRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	refund, err := h.facade.RequestRefund(c.Request.Context(), CurrentProfileID(c), orderID, req.Amount, req.Reason)
	if err != nil {
		h.writeRefundError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRefundResponse(*refund))
}

// ListByOrder handles GET /api/orders/:id/refunds.
func (h *RefundHandler) ListByOrder(c *gin.Context) {
	orderID, ok := pathUUID(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	refunds, err := h.facade.OrderRefunds(c.Request.Context(), CurrentProfileID(c), orderID)
	if err != nil {
		h.writeRefundError(c, err)
		return
	}
	if len(refunds) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.RefundResponse, 0, len(refunds))
	for _, r := range refunds {
		response = append(response, toRefundResponse(r))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/refunds/:id.
func (h *RefundHandler) Get(c *gin.Context) {
	requestID, ok := pathUUID(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	refund, err := h.facade.Refund(c.Request.Context(), CurrentProfileID(c), requestID)
	if err != nil {
		h.writeRefundError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRefundResponse(*refund))
}

// Resolve handles POST /api/refunds/:id/resolve. Admin only.
func (h *RefundHandler) Resolve(c *gin.Context) {
	requestID, ok := pathUUID(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	var req dto.RefundResolvePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	refund, err := h.facade.ResolveRefund(c.Request.Context(), CurrentProfileID(c), requestID, req.Approved, req.AdminNotes)
	if err != nil {
		h.writeRefundError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRefundResponse(*refund))
}

func (h *RefundHandler) writeRefundError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		c.Status(http.StatusNotFound)
	case errors.Is(err, domainErrors.ErrAccessDenied):
		c.Status(http.StatusForbidden)
	case errors.Is(err, domainErrors.ErrInvalidAmount):
		c.Status(http.StatusUnprocessableEntity)
	case errors.Is(err, domainErrors.ErrInsufficientBalance):
		c.Status(http.StatusPaymentRequired)
	case errors.Is(err, domainErrors.ErrAlreadyResolved):
		c.Status(http.StatusConflict)
	default:
		c.Status(http.StatusInternalServerError)
	}
}

func toRefundResponse(r model.RefundRequest) dto.RefundResponse {
	return dto.RefundResponse{
		ID:         r.ID.String(),
		OrderID:    r.OrderID.String(),
		Amount:     r.Amount,
		Reason:     r.Reason,
		Status:     string(r.Status),
		AdminNotes: r.AdminNotes,
		CreatedAt:  r.CreatedAt,
		ResolvedAt: r.ResolvedAt,
	}
}
