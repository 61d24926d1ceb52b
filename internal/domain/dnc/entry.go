package dnc

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/davidleathers/voice-outreach-backend/internal/domain/values"
	"github.com/davidleathers/voice-outreach-backend/internal/errors"
)

// Entry represents a phone number on the do-not-call list. Entries are
// keyed by the normalized phone number and, once added, are never removed by
// this subsystem.
type Entry struct {
	ID           uuid.UUID          `json:"id"`
	PhoneNumber  values.PhoneNumber `json:"phone_number"`
	Reason       string             `json:"reason"`
	SourceCallID string             `json:"source_call_id,omitempty"`
	AddedAt      time.Time          `json:"added_at"`
}

// NewEntry creates a new do-not-call entry with validation.
func NewEntry(phoneNumber, reason, sourceCallID string) (*Entry, error) {
	phone, err := values.NewPhoneNumber(phoneNumber)
	if err != nil {
		return nil, errors.NewValidationError("INVALID_PHONE_NUMBER", "invalid phone number format").WithCause(err)
	}

	if reason == "" {
		return nil, errors.NewValidationError("INVALID_REASON", "suppression reason cannot be empty")
	}

	return &Entry{
		ID:           uuid.New(),
		PhoneNumber:  phone,
		Reason:       reason,
		SourceCallID: sourceCallID,
		AddedAt:      time.Now().UTC(),
	}, nil
}

// Key returns the normalized phone number the set is keyed by.
func (e *Entry) Key() string {
	return e.PhoneNumber.E164()
}

// Store is the persisted do-not-call set. Add is idempotent at the set
// level: adding an already-present number reports added=false and changes
// nothing, but callers still audit-log the attempt.
type Store interface {
	Add(ctx context.Context, entry *Entry) (added bool, err error)
	Contains(ctx context.Context, phoneNumber string) (bool, error)
	Size(ctx context.Context) (int64, error)
}
