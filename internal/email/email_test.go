package email

import (
	"strings"
	"testing"

	gomail "github.com/wneessen/go-mail"
)

type testSMTPConfig struct{ host string }

func (c testSMTPConfig) GetSMTPHost() string        { return c.host }
func (c testSMTPConfig) GetSMTPPort() int           { return 587 }
func (c testSMTPConfig) GetSMTPUsername() string    { return "bot" }
func (c testSMTPConfig) GetSMTPPassword() string    { return "secret" }
func (c testSMTPConfig) GetSMTPFromAddress() string { return "sdr@workmarket.ai" }
func (c testSMTPConfig) GetSMTPFromName() string    { return "WorkMarket" }
func (c testSMTPConfig) IsSMTPEnabled() bool        { return c.host != "" }

func TestNewSenderFallsBackToNoop(t *testing.T) {
	if _, ok := NewSender(testSMTPConfig{}).(NoopSender); !ok {
		t.Fatalf("expected NoopSender without smtp host")
	}
	if _, ok := NewSender(testSMTPConfig{host: "smtp.example.com"}).(*SMTPSender); !ok {
		t.Fatalf("expected SMTPSender with smtp host")
	}
}

func TestRenderMeetingConfirmation(t *testing.T) {
	html, err := renderEmailTemplate("meeting_confirmation.html", meetingConfirmationEmailData{
		baseEmailData: baseEmailData{
			Title:    "Reunião confirmada",
			Heading:  "Sua reunião está confirmada",
			CTALabel: "Entrar na reunião",
			CTAURL:   "https://meet.workmarket.ai/s-1",
		},
		Name:            "Ana",
		Company:         "Loja <Central>",
		MeetingDatetime: formatMeetingDatetime("2026-05-04T14:30:00Z"),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		"Olá, Ana!",
		"https://meet.workmarket.ai/s-1",
		"04/05/2026 às 11:30",
		"Loja &lt;Central&gt;",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected rendered e-mail to contain %q", want)
		}
	}
}

func TestFormatMeetingDatetime(t *testing.T) {
	if got := formatMeetingDatetime("amanhã"); got != "amanhã" {
		t.Fatalf("expected unparseable input unchanged, got %q", got)
	}
}

func TestDisplayName(t *testing.T) {
	cases := map[string]string{
		"Ana Souza": "Ana",
		"  ":        "tudo bem",
		"Carlos":    "Carlos",
	}
	for in, want := range cases {
		if got := displayName(in); got != want {
			t.Errorf("displayName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildMeetingConfirmation(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 587, "bot", "secret", "sdr@workmarket.ai", "WorkMarket")

	msg, err := s.buildMeetingConfirmation("ana@loja.com", MeetingConfirmation{
		Name:        "Ana",
		MeetingLink: "https://meet.workmarket.ai/s-1",
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if subject := msg.GetGenHeader(gomail.HeaderSubject); len(subject) != 1 || subject[0] != subjectMeetingConfirmation {
		t.Fatalf("unexpected subject: %v", subject)
	}

	if _, err := s.buildMeetingConfirmation("not an address", MeetingConfirmation{}); err == nil {
		t.Fatalf("expected invalid recipient to be rejected")
	}
}
