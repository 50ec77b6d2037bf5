// Package notification sends e-mail in response to conversation events.
// The chat flow publishes events and never depends on e-mail delivery.
package notification

import (
	"context"
	"regexp"
	"time"

	"workmarket_sdr/internal/email"
	"workmarket_sdr/internal/events"
	"workmarket_sdr/platform/logger"
)

const sendTimeout = 20 * time.Second

// The lead e-mail field holds the whole message the address was typed in.
var addressPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// Module handles notification event subscriptions.
type Module struct {
	sender email.Sender
	log    *logger.Logger
}

func New(sender email.Sender, log *logger.Logger) *Module {
	if sender == nil {
		sender = email.NoopSender{}
	}
	return &Module{sender: sender, log: log}
}

// RegisterHandlers subscribes to the events that trigger e-mails.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.MeetingScheduled{}.EventName(), events.HandlerFunc(m.handleMeetingScheduled))
}

func (m *Module) handleMeetingScheduled(ctx context.Context, event events.Event) error {
	e, ok := event.(events.MeetingScheduled)
	if !ok {
		return nil
	}

	to, ok := ExtractAddress(e.Lead.Email)
	if !ok {
		m.log.Info("meeting confirmation skipped, no address in lead e-mail", "sessionId", e.SessionID)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	err := m.sender.SendMeetingConfirmation(ctx, to, email.MeetingConfirmation{
		Name:            e.Lead.Name,
		Company:         e.Lead.Company,
		MeetingLink:     e.MeetingLink,
		MeetingDatetime: e.Lead.MeetingDatetime,
	})
	if err != nil {
		m.log.Error("meeting confirmation e-mail failed", "sessionId", e.SessionID, "error", err)
		return nil
	}

	m.log.Info("meeting confirmation e-mail sent", "sessionId", e.SessionID)
	return nil
}

// ExtractAddress finds the first e-mail address in text.
func ExtractAddress(text string) (string, bool) {
	addr := addressPattern.FindString(text)
	return addr, addr != ""
}
