package handler

import (
	"net/http"

	"workmarket_sdr/internal/conversation/service"
	"workmarket_sdr/internal/conversation/transport"
	"workmarket_sdr/platform/apperr"
	"workmarket_sdr/platform/httpkit"
	"workmarket_sdr/platform/sanitize"
	"workmarket_sdr/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler serves the chat endpoint and the admin session endpoints.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new conversation handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Chat runs one turn. Completion failures still answer 200 with the
// fallback text.
func (h *Handler) Chat(c *gin.Context) {
	var req transport.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(err.Error()))
		return
	}

	// Session ids are opaque and used verbatim.
	message := sanitize.Text(req.Message)
	if message == "" {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails("message must not be blank"))
		return
	}

	reply := h.svc.GenerateReply(c.Request.Context(), req.SessionID, message)
	httpkit.OK(c, transport.ChatResponse{
		Reply:            reply.Text,
		MeetingScheduled: reply.MeetingScheduled,
		MeetingLink:      reply.MeetingLink,
	})
}

// GetSession returns the stage, lead and history of one session.
func (h *Handler) GetSession(c *gin.Context) {
	snap, err := h.svc.Session(c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.SessionResponse{
		SessionID: snap.ID,
		Stage:     snap.Stage,
		Lead:      snap.Lead,
		History:   snap.History,
		Turns:     len(snap.History),
		LastSeen:  snap.LastSeen,
	})
}

// ClearSession forgets a session. Unknown ids answer 404.
func (h *Handler) ClearSession(c *gin.Context) {
	if httpkit.HandleError(c, h.svc.ClearSession(c.Param("id"))) {
		return
	}
	httpkit.NoContent(c)
}
