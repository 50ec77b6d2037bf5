package agent

import "regexp"

var interestPattern = regexp.MustCompile(`\b(sim|vamos|quero|pode marcar|bora|topo|claro|ok|fechado|pode ser|interessado)\b`)

// DetectInterest reports whether the message contains an affirmative
// keyword as a whole word. It never reports a withdrawal; callers only ever
// set interest, never clear it.
func DetectInterest(msg string) bool {
	return interestPattern.MatchString(fold(msg))
}
