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

// DisputeHandler manages dispute and mediation endpoints.
type DisputeHandler struct {
	facade DisputeFacade
}

// NewDisputeHandler constructs DisputeHandler.
func NewDisputeHandler(facade DisputeFacade) *DisputeHandler {
	return &DisputeHandler{facade: facade}
}

// File handles POST /api/disputes.
func (h *DisputeHandler) File(c *gin.Context) {
	var req dto.FileDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	dispute, err := h.facade.FileDispute(c.Request.Context(), CurrentProfileID(c), orderID, req.Reason, req.Details)
	if err != nil {
		h.writeDisputeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toDisputeResponse(*dispute))
}

// Get handles GET /api/disputes/:id.
func (h *DisputeHandler) Get(c *gin.Context) {
	disputeID, ok := pathUUID(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	dispute, err := h.facade.Dispute(c.Request.Context(), CurrentProfileID(c), disputeID)
	if err != nil {
		h.writeDisputeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDisputeResponse(*dispute))
}

// AcceptRules handles POST /api/disputes/:id/rules.
func (h *DisputeHandler) AcceptRules(c *gin.Context) {
	disputeID, ok := pathUUID(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	dispute, err := h.facade.AcceptDisputeRules(c.Request.Context(), CurrentProfileID(c), disputeID)
	if err != nil {
		h.writeDisputeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDisputeResponse(*dispute))
}

// Join handles POST /api/disputes/:id/join.
func (h *DisputeHandler) Join(c *gin.Context) {
	disputeID, ok := pathUUID(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.facade.JoinDispute(c.Request.Context(), CurrentProfileID(c), disputeID); err != nil {
		h.writeDisputeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Heartbeat handles POST /api/disputes/:id/heartbeat.
func (h *DisputeHandler) Heartbeat(c *gin.Context) {
	disputeID, ok := pathUUID(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.facade.DisputeHeartbeat(c.Request.Context(), CurrentProfileID(c), disputeID); err != nil {
		h.writeDisputeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Presence handles GET /api/disputes/:id/presence.
func (h *DisputeHandler) Presence(c *gin.Context) {
	disputeID, ok := pathUUID(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	view, err := h.facade.DisputePresence(c.Request.Context(), CurrentProfileID(c), disputeID)
	if err != nil {
		h.writeDisputeError(c, err)
		return
	}

	response := dto.PresenceResponse{SessionStatus: string(view.SessionStatus)}
	for _, r := range view.Roles {
		response.Roles = append(response.Roles, dto.RolePresenceResponse{
			Role:          string(r.Role),
			LastHeartbeat: r.LastHeartbeat,
			Present:       r.Present,
		})
	}
	c.JSON(http.StatusOK, response)
}

// PostMessage handles POST /api/disputes/:id/messages.
func (h *DisputeHandler) PostMessage(c *gin.Context) {
	disputeID, ok := pathUUID(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	var req dto.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	var replyTo *uuid.UUID
	if req.ReplyTo != nil {
		id, err := uuid.Parse(*req.ReplyTo)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		replyTo = &id
	}

	message, err := h.facade.PostDisputeMessage(c.Request.Context(), CurrentProfileID(c), disputeID, req.Content, req.MediaRef, replyTo)
	if err != nil {
		h.writeDisputeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toMessageResponse(*message))
}

// Messages handles GET /api/disputes/:id/messages.
func (h *DisputeHandler) Messages(c *gin.Context) {
	disputeID, ok := pathUUID(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	messages, err := h.facade.DisputeMessages(c.Request.Context(), CurrentProfileID(c), disputeID)
	if err != nil {
		h.writeDisputeError(c, err)
		return
	}
	if len(messages) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		response = append(response, toMessageResponse(m))
	}
	c.JSON(http.StatusOK, response)
}

// Close handles POST /api/disputes/:id/close. Admin only.
func (h *DisputeHandler) Close(c *gin.Context) {
	disputeID, ok := pathUUID(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.facade.CloseDispute(c.Request.Context(), CurrentProfileID(c), disputeID); err != nil {
		h.writeDisputeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *DisputeHandler) writeDisputeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		c.Status(http.StatusNotFound)
	case errors.Is(err, domainErrors.ErrAccessDenied):
		c.Status(http.StatusForbidden)
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		c.Status(http.StatusConflict)
	case errors.Is(err, domainErrors.ErrRulesNotAccepted),
		errors.Is(err, domainErrors.ErrSessionNotActive),
		errors.Is(err, domainErrors.ErrNotPresent):
		c.Status(http.StatusConflict)
	case errors.Is(err, domainErrors.ErrInvalidTransition):
		c.Status(http.StatusBadRequest)
	default:
		c.Status(http.StatusInternalServerError)
	}
}

func toDisputeResponse(d model.Dispute) dto.DisputeResponse {
	return dto.DisputeResponse{
		ID:                    d.ID.String(),
		OrderID:               d.OrderID.String(),
		Reason:                d.Reason,
		Details:               d.Details,
		ClientAcceptedRules:   d.ClientAcceptedRules,
		ProviderAcceptedRules: d.ProviderAcceptedRules,
		SessionStatus:         string(d.SessionStatus),
		CreatedAt:             d.CreatedAt,
	}
}

func toMessageResponse(m model.MediationMessage) dto.MessageResponse {
	resp := dto.MessageResponse{
		ID:        m.ID.String(),
		SenderID:  m.SenderID.String(),
		Role:      string(m.Role),
		Content:   m.Content,
		MediaRef:  m.MediaRef,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
	}
	if m.ReplyTo != nil {
		s := m.ReplyTo.String()
		resp.ReplyTo = &s
	}
	return resp
}
