package email

import (
	"context"

	"workmarket_sdr/platform/config"
)

// MeetingConfirmation is the data rendered into the meeting e-mail.
type MeetingConfirmation struct {
	Name            string
	Company         string
	MeetingLink     string
	MeetingDatetime string
}

type Sender interface {
	SendMeetingConfirmation(ctx context.Context, toEmail string, data MeetingConfirmation) error
}

type NoopSender struct{}

func (NoopSender) SendMeetingConfirmation(context.Context, string, MeetingConfirmation) error {
	return nil
}

// NewSender returns an SMTP sender when SMTP is configured and a NoopSender otherwise.
func NewSender(cfg config.SMTPConfig) Sender {
	if !cfg.IsSMTPEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetSMTPFromAddress(),
		cfg.GetSMTPFromName(),
	)
}
