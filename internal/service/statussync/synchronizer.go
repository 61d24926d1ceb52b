package statussync

import (
	"context"
	"time"

	"go.uber.org/zap"

	domain "github.com/davidleathers/voice-outreach-backend/internal/domain/ledger"
	"github.com/davidleathers/voice-outreach-backend/internal/errors"
)

// Request is one status rewrite: exactly one lookup key plus the new column
// values for the channel.
type Request struct {
	Email   string
	Phone   string
	Channel domain.Channel
	Status  string
	Notes   string
}

// Synchronizer rewrites the matching contact's status columns in the
// external ledger and stamps a fresh timestamp. Everything else in the row
// is preserved untouched.
type Synchronizer struct {
	store  domain.Store
	clock  func() time.Time
	logger *zap.Logger
}

// NewSynchronizer creates a synchronizer over the ledger store.
func NewSynchronizer(store domain.Store, logger *zap.Logger) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{
		store:  store,
		clock:  time.Now,
		logger: logger,
	}
}

// SetClock injects a clock for tests.
func (s *Synchronizer) SetClock(clock func() time.Time) {
	s.clock = clock
}

// Update applies the request. A missing lookup key is a validation error; no
// matching row reports (false, nil), which is "nothing to do", not a
// failure.
func (s *Synchronizer) Update(ctx context.Context, req Request) (bool, error) {
	if req.Email == "" && req.Phone == "" {
		return false, errors.NewValidationError("MISSING_LOOKUP_KEY", "status update needs an email or phone number to match on")
	}
	if req.Channel == "" {
		req.Channel = domain.ChannelVoice
	}

	updated, err := s.store.Update(ctx, domain.Lookup{
		Email: req.Email,
		Phone: req.Phone,
	}, domain.StatusUpdate{
		Channel:     req.Channel,
		Status:      req.Status,
		Notes:       req.Notes,
		LastUpdated: s.clock().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return false, err
	}

	if !updated {
		s.logger.Info("no ledger row matched status update",
			zap.String("email", req.Email),
			zap.String("phone", req.Phone))
		return false, nil
	}

	s.logger.Info("ledger status updated",
		zap.String("email", req.Email),
		zap.String("phone", req.Phone),
		zap.String("channel", string(req.Channel)),
		zap.String("status", req.Status))
	return true, nil
}
