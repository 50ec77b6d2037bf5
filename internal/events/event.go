// Package events defines the domain events emitted by the chat flow.
// Infrastructure (Bus, Handler) lives in platform/events.
package events

import (
	"workmarket_sdr/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// LeadSnapshot is the lead record as seen by subscribers. It is a copy; the
// session keeps its own.
type LeadSnapshot struct {
	Name              string `json:"name,omitempty"`
	Email             string `json:"email,omitempty"`
	Company           string `json:"company,omitempty"`
	Need              string `json:"need,omitempty"`
	InterestConfirmed bool   `json:"interestConfirmed"`
	MeetingLink       string `json:"meetingLink,omitempty"`
	MeetingDatetime   string `json:"meetingDatetime,omitempty"`
}

// LeadUpdated is published after a turn that wrote a lead field or confirmed interest.
type LeadUpdated struct {
	BaseEvent
	SessionID string       `json:"sessionId"`
	Stage     string       `json:"stage"`
	Field     string       `json:"field,omitempty"`
	Lead      LeadSnapshot `json:"lead"`
}

func (e LeadUpdated) EventName() string { return "conversation.lead.updated" }

// MeetingScheduled is published once per session, when its meeting link is generated.
type MeetingScheduled struct {
	BaseEvent
	SessionID   string       `json:"sessionId"`
	Stage       string       `json:"stage"`
	MeetingLink string       `json:"meetingLink"`
	Lead        LeadSnapshot `json:"lead"`
}

func (e MeetingScheduled) EventName() string { return "conversation.meeting.scheduled" }
