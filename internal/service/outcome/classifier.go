package outcome

import (
	"regexp"

	domain "github.com/davidleathers/voice-outreach-backend/internal/domain/outcome"
)

// Transcript scanning is a best-effort heuristic over unstructured speech-to-
// text output. It misclassifies; unclear results are logged for human review
// rather than guessed at.
var (
	press1Regex = regexp.MustCompile(`(?i)\bpress(?:ed)?\s+(?:1|one)\b`)
	press2Regex = regexp.MustCompile(`(?i)\bpress(?:ed)?\s+(?:2|two)\b`)
)

// Classify extracts the caller's keypad choice from an event. Priority
// order: the provider's structured user-input field wins when present, the
// transcript is scanned otherwise, and anything else is unclear.
func Classify(event domain.Event) domain.Choice {
	switch event.UserChoice {
	case "1":
		return domain.Choice1
	case "2":
		return domain.Choice2
	}

	if press1Regex.MatchString(event.Transcript) {
		return domain.Choice1
	}
	if press2Regex.MatchString(event.Transcript) {
		return domain.Choice2
	}

	return domain.ChoiceUnclear
}
