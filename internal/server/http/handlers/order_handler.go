package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainErrors "github.com/craftdeal/craftdeal/internal/domain/errors"
	"github.com/craftdeal/craftdeal/internal/domain/model"
	"github.com/craftdeal/craftdeal/internal/server/http/dto"
	"github.com/craftdeal/craftdeal/internal/usecase"
)

// OrderHandler manages order lifecycle endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	clientID := CurrentProfileID(c)

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	providerID, err := uuid.Parse(req.ProviderID)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.CreateOrder(c.Request.Context(), clientID, providerID, req.Title, req.Amount, req.Currency, req.ChargeRef)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidAmount):
			c.Status(http.StatusUnprocessableEntity)
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrInsufficientBalance):
			c.Status(http.StatusPaymentRequired)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.facade.Orders(c.Request.Context(), CurrentProfileID(c), CurrentRole(c))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNoContent)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := pathUUID(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.Order(c.Request.Context(), CurrentProfileID(c), orderID)
	if err != nil {
		h.writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Apply handles POST /api/orders/:id/actions.
func (h *OrderHandler) Apply(c *gin.Context) {
	orderID, ok := pathUUID(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	var req dto.OrderActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	params := usecase.ActionParams{Message: req.Message, FileRef: req.FileRef, Reason: req.Reason}
	order, err := h.facade.ApplyOrderAction(c.Request.Context(), CurrentProfileID(c), orderID, model.OrderAction(req.Action), params)
	if err != nil {
		h.writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Deliveries handles GET /api/orders/:id/deliveries.
func (h *OrderHandler) Deliveries(c *gin.Context) {
	orderID, ok := pathUUID(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	deliveries, err := h.facade.OrderDeliveries(c.Request.Context(), CurrentProfileID(c), orderID)
	if err != nil {
		h.writeOrderError(c, err)
		return
	}
	if len(deliveries) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.DeliveryResponse, 0, len(deliveries))
	for _, d := range deliveries {
		response = append(response, dto.DeliveryResponse{
			Number:      d.Number,
			Message:     d.Message,
			FileRef:     d.FileRef,
			DeliveredAt: d.DeliveredAt,
		})
	}
	c.JSON(http.StatusOK, response)
}

func (h *OrderHandler) writeOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		c.Status(http.StatusNotFound)
	case errors.Is(err, domainErrors.ErrAccessDenied):
		c.Status(http.StatusForbidden)
	case errors.Is(err, domainErrors.ErrInvalidTransition):
		c.Status(http.StatusBadRequest)
	case errors.Is(err, domainErrors.ErrAlreadyResolved):
		c.Status(http.StatusConflict)
	default:
		c.Status(http.StatusInternalServerError)
	}
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:               order.ID.String(),
		ClientID:         order.ClientID.String(),
		ProviderID:       order.ProviderID.String(),
		Status:           string(order.Status),
		Title:            order.Title,
		Amount:           order.TotalAmount,
		Currency:         order.Currency,
		RevisionCount:    order.RevisionCount,
		CompletionReason: string(order.CompletionReason),
		CreatedAt:        order.CreatedAt,
		CompletedAt:      order.CompletedAt,
	}
}
