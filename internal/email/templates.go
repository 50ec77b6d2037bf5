package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var saoPaulo = loadLocation("America/Sao_Paulo")

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type meetingConfirmationEmailData struct {
	baseEmailData
	Name            string
	Company         string
	MeetingDatetime string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

// displayName returns the first name used in the greeting.
func displayName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "tudo bem"
	}
	return fields[0]
}

// formatMeetingDatetime renders an RFC 3339 timestamp in Brazilian local
// time. Unparseable input is returned unchanged.
func formatMeetingDatetime(raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.In(saoPaulo).Format("02/01/2006 às 15:04")
}

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}
