package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) SendMeetingConfirmation(ctx context.Context, toEmail string, data MeetingConfirmation) error {
	msg, err := s.buildMeetingConfirmation(toEmail, data)
	if err != nil {
		return err
	}
	return s.send(ctx, msg)
}

func (s *SMTPSender) buildMeetingConfirmation(toEmail string, data MeetingConfirmation) (*gomail.Msg, error) {
	content, err := renderEmailTemplate("meeting_confirmation.html", meetingConfirmationEmailData{
		baseEmailData: baseEmailData{
			Title:    "Reunião confirmada",
			Heading:  "Sua reunião está confirmada",
			CTALabel: "Entrar na reunião",
			CTAURL:   data.MeetingLink,
		},
		Name:            displayName(data.Name),
		Company:         data.Company,
		MeetingDatetime: formatMeetingDatetime(data.MeetingDatetime),
	})
	if err != nil {
		return nil, err
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return nil, fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subjectMeetingConfirmation)
	msg.SetBodyString(gomail.TypeTextHTML, content)
	return msg, nil
}

func (s *SMTPSender) send(ctx context.Context, msg *gomail.Msg) error {
	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}
