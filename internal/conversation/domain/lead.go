// Package domain holds the conversation data model and the stage rules.
// It has no dependencies on transport or storage.
package domain

import "strings"

// Role identifies the author of a turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Lead is the contact record assembled from free text. Empty strings mean
// the field was never captured.
type Lead struct {
	Name              string `json:"name,omitempty"`
	Email             string `json:"email,omitempty"`
	Company           string `json:"company,omitempty"`
	Need              string `json:"need,omitempty"`
	InterestConfirmed bool   `json:"interestConfirmed"`
	MeetingLink       string `json:"meetingLink,omitempty"`
	MeetingDatetime   string `json:"meetingDatetime,omitempty"`
}

// HasContactData reports whether name, email and company are all captured,
// which is the condition for scheduling a meeting.
func (l Lead) HasContactData() bool {
	return !isBlank(l.Name) && !isBlank(l.Email) && !isBlank(l.Company)
}

// HasMeeting reports whether a meeting link was already generated.
func (l Lead) HasMeeting() bool {
	return l.MeetingLink != ""
}

// Field names a lead attribute written by extraction.
type Field string

const (
	FieldNone    Field = ""
	FieldEmail   Field = "email"
	FieldNeed    Field = "need"
	FieldName    Field = "name"
	FieldCompany Field = "company"
)

// CountAssistantTurns counts turns authored by the assistant.
func CountAssistantTurns(history []Turn) int {
	n := 0
	for _, t := range history {
		if t.Role == RoleAssistant {
			n++
		}
	}
	return n
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
