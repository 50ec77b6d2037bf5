package agent

import (
	"regexp"
	"strings"

	"workmarket_sdr/internal/conversation/domain"
)

// Patterns run against the folded message. needPattern is word-bounded; the
// name and company vocabularies match anywhere in the text.
var (
	needPattern    = regexp.MustCompile(`\b(repositor|caixa|empacotador|temporario|freela|freelancer)\b`)
	namePattern    = regexp.MustCompile(`meu nome|sou|chamo|nome e|aqui e`)
	companyPattern = regexp.MustCompile(`empresa|mercado|loja|supermercado|atacarejo`)

	// nameLeadIn strips the intro phrases from the original text. Longer
	// phrases come first so "meu nome é" goes in one piece, and a phrase must
	// end at a space so surnames like "Souza" survive.
	nameLeadIn = regexp.MustCompile(`(?i)\b(meu nome [eé]|meu nome|nome [eé]|aqui [eé]|me chamo|chamo|sou)(\s+|$)`)
)

// ApplyLeadData inspects one user message and writes at most one lead field.
// Rules are tried in order and the first match wins:
//
//	contains "@" and "."      -> Email
//	need vocabulary           -> Need
//	intro phrase              -> Name (with the intro phrases removed)
//	venue vocabulary          -> Company
//
// Values are stored trimmed; existing values are overwritten. Returns the
// field written, or FieldNone.
func ApplyLeadData(lead *domain.Lead, msg string) domain.Field {
	if lead == nil {
		return domain.FieldNone
	}
	text := strings.TrimSpace(msg)
	if text == "" {
		return domain.FieldNone
	}
	folded := fold(text)

	switch {
	case strings.Contains(text, "@") && strings.Contains(text, "."):
		lead.Email = text
		return domain.FieldEmail
	case needPattern.MatchString(folded):
		lead.Need = text
		return domain.FieldNeed
	case namePattern.MatchString(folded):
		lead.Name = strings.TrimSpace(nameLeadIn.ReplaceAllString(text, ""))
		return domain.FieldName
	case companyPattern.MatchString(folded):
		lead.Company = text
		return domain.FieldCompany
	}
	return domain.FieldNone
}
