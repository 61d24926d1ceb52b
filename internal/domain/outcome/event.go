package outcome

import (
	"time"
)

// Event is the normalized form of one asynchronous outcome notification from
// the calling provider. Events are append-only: a superseding update for the
// same provider call id is a new Event, never a mutation.
type Event struct {
	ProviderCallID  string    `json:"provider_call_id"`
	Status          string    `json:"status"`
	DurationSeconds int       `json:"duration_seconds"`
	Outcome         string    `json:"outcome"`
	Transcript      string    `json:"transcript,omitempty"`
	UserChoice      string    `json:"user_choice,omitempty"` // "1" or "2" when the provider reports keypad input
	PhoneNumber     string    `json:"phone_number,omitempty"`
	ContactName     string    `json:"contact_name,omitempty"`
	ContactEmail    string    `json:"contact_email,omitempty"`
	CampaignID      string    `json:"campaign_id,omitempty"`
	ReceivedAt      time.Time `json:"received_at"`

	// Action is set after routing so that every event's disposition is
	// observable in the log, "unclear" included.
	Action string `json:"action,omitempty"`

	// Raw preserves the provider payload for fields normalization dropped.
	Raw map[string]any `json:"raw,omitempty"`
}

// Choice is the caller's in-call keypad selection as classified from an Event.
type Choice int

const (
	// ChoiceUnclear means neither a structured input field nor the
	// transcript yielded a recognizable selection.
	ChoiceUnclear Choice = iota
	Choice1
	Choice2
)

func (c Choice) String() string {
	switch c {
	case Choice1:
		return "choice_1"
	case Choice2:
		return "choice_2"
	default:
		return "unclear"
	}
}

// Statuses reported by the provider that normalization passes through.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Outcomes reported by the provider that normalization passes through.
const (
	OutcomeAnswered  = "answered"
	OutcomeVoicemail = "voicemail"
	OutcomeNoAnswer  = "no-answer"
)
