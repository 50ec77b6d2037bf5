package transport

import (
	"time"

	"workmarket_sdr/internal/conversation/domain"
)

// ChatRequest is one inbound chat message.
type ChatRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	Message   string `json:"message" validate:"required,notblank,max=4000"`
}

// ChatResponse is the reply for one turn. MeetingLink is null until a
// meeting exists.
type ChatResponse struct {
	Reply            string  `json:"reply"`
	MeetingScheduled bool    `json:"meetingScheduled"`
	MeetingLink      *string `json:"meetingLink"`
}

// SessionResponse is the admin view of a session.
type SessionResponse struct {
	SessionID string        `json:"sessionId"`
	Stage     domain.Stage  `json:"stage"`
	Lead      domain.Lead   `json:"lead"`
	History   []domain.Turn `json:"history"`
	Turns     int           `json:"turns"`
	LastSeen  time.Time     `json:"lastSeen"`
}
