// Package crm pushes qualified leads to the external CRM board.
// Delivery is fire-and-forget: nothing here can fail a chat turn.
package crm

import (
	"time"

	"workmarket_sdr/internal/events"

	"github.com/google/uuid"
)

// LeadCard is the payload sent to the CRM webhook. SyncID is unique per
// delivery attempt chain and doubles as the idempotency key, so an asynq
// retry never creates a second card.
type LeadCard struct {
	SyncID            string    `json:"syncId"`
	SessionID         string    `json:"sessionId"`
	Event             string    `json:"event"`
	Stage             string    `json:"stage"`
	Name              string    `json:"name,omitempty"`
	Email             string    `json:"email,omitempty"`
	Company           string    `json:"company,omitempty"`
	Need              string    `json:"need,omitempty"`
	InterestConfirmed bool      `json:"interestConfirmed"`
	MeetingLink       string    `json:"meetingLink,omitempty"`
	MeetingDatetime   string    `json:"meetingDatetime,omitempty"`
	OccurredAt        time.Time `json:"occurredAt"`
}

// NewLeadCard copies a lead snapshot into a card with a fresh SyncID.
func NewLeadCard(sessionID, event, stage string, lead events.LeadSnapshot, occurredAt time.Time) LeadCard {
	return LeadCard{
		SyncID:            uuid.NewString(),
		SessionID:         sessionID,
		Event:             event,
		Stage:             stage,
		Name:              lead.Name,
		Email:             lead.Email,
		Company:           lead.Company,
		Need:              lead.Need,
		InterestConfirmed: lead.InterestConfirmed,
		MeetingLink:       lead.MeetingLink,
		MeetingDatetime:   lead.MeetingDatetime,
		OccurredAt:        occurredAt.UTC(),
	}
}
