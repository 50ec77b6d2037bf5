package agent

import (
	"regexp"
	"strings"
)

var (
	braceBlock    = regexp.MustCompile(`(?s)\{.*?\}`)
	replyField    = regexp.MustCompile(`(?is)['"]?reply['"]?\s*:\s*(?:"((?:[^"\\]|\\.)*)"|'([^']*)'|([^,}]*))`)
	envelopeWords = regexp.MustCompile(`(?i)reply|meetingScheduled|meetingLink`)
	leftovers     = regexp.MustCompile(`[{}\\]`)
	spaceRuns     = regexp.MustCompile(` +`)
)

// SanitizeReply turns raw model output into plain chat text. Models sometimes
// answer with the JSON envelope the chat API returns; when a brace block
// carries a reply field its value is kept, any other brace block is dropped.
// Envelope field names, escape sequences and stray braces are removed and
// runs of spaces collapsed.
func SanitizeReply(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	out := braceBlock.ReplaceAllStringFunc(raw, replyValue)
	out = envelopeWords.ReplaceAllString(out, "")
	out = strings.ReplaceAll(out, `\n`, "\n")
	out = strings.ReplaceAll(out, `\"`, `"`)
	out = leftovers.ReplaceAllString(out, "")
	out = spaceRuns.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

func replyValue(block string) string {
	m := replyField.FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	// Only one alternative participates; the others are empty.
	return strings.TrimSpace(m[1] + m[2] + m[3])
}
