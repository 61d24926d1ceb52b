package outcome

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/davidleathers/voice-outreach-backend/internal/domain/dnc"
	domain "github.com/davidleathers/voice-outreach-backend/internal/domain/outcome"
	"github.com/davidleathers/voice-outreach-backend/internal/errors"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/eventlog"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/provider"
)

// Actions recorded on routed events.
const (
	ActionFollowUp = "follow_up"
	ActionOptOut   = "opt_out"
	ActionUnclear  = "unclear"
)

// StatusAction marks audit entries the router appends to the shared log so
// that statistics can tell them apart from call events.
const StatusAction = "action"

// Router executes the action a classified outcome implies: Choice1 schedules
// a follow-up message, Choice2 adds the number to the do-not-call set, and
// an unclear outcome is recorded for manual review. Every path appends an
// action-tagged audit entry to the shared log.
type Router struct {
	store           dnc.Store
	sender          provider.MessageSender
	log             *eventlog.Log
	fromNumber      string
	followUpMessage string
	logger          *zap.Logger
}

// NewRouter creates an action router. followUpMessage is the SMS body sent
// on Choice1; empty selects a generic default.
func NewRouter(store dnc.Store, sender provider.MessageSender, log *eventlog.Log, fromNumber, followUpMessage string, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	if followUpMessage == "" {
		followUpMessage = "Thanks for your interest. We'll reach out shortly to schedule a time."
	}
	return &Router{
		store:           store,
		sender:          sender,
		log:             log,
		fromNumber:      fromNumber,
		followUpMessage: followUpMessage,
		logger:          logger,
	}
}

// Route classifies the event and executes the implied action, returning the
// action recorded. The audit entry is appended before the side effect runs,
// so the attempt is observable even when the handoff later fails.
func (r *Router) Route(ctx context.Context, event domain.Event) (string, error) {
	switch Classify(event) {
	case domain.Choice1:
		return ActionFollowUp, r.scheduleFollowUp(ctx, event)
	case domain.Choice2:
		return ActionOptOut, r.optOut(ctx, event)
	default:
		r.audit(ctx, event, ActionUnclear, "keypad choice could not be determined, flagged for manual review")
		r.logger.Info("outcome unclear, no action taken",
			zap.String("provider_call_id", event.ProviderCallID))
		return ActionUnclear, nil
	}
}

func (r *Router) scheduleFollowUp(ctx context.Context, event domain.Event) error {
	phone := ResolvePhone(event)
	if phone == "" {
		r.audit(ctx, event, ActionFollowUp, "no phone number resolvable from event")
		return errors.NewValidationError("MISSING_PHONE", "cannot schedule follow-up without a phone number")
	}

	r.audit(ctx, event, ActionFollowUp, "follow-up message queued")

	if r.sender == nil {
		return nil
	}
	if err := r.sender.SendMessage(ctx, provider.SMSMessage{
		To:   phone,
		From: r.fromNumber,
		Body: r.followUpMessage,
	}); err != nil {
		r.logger.Warn("follow-up handoff failed",
			zap.String("provider_call_id", event.ProviderCallID),
			zap.String("phone_number", phone),
			zap.Error(err))
		return err
	}

	r.logger.Info("follow-up message sent",
		zap.String("provider_call_id", event.ProviderCallID),
		zap.String("phone_number", phone))
	return nil
}

func (r *Router) optOut(ctx context.Context, event domain.Event) error {
	phone := ResolvePhone(event)
	if phone == "" {
		r.audit(ctx, event, ActionOptOut, "no phone number resolvable from event")
		return errors.NewValidationError("MISSING_PHONE", "cannot opt out without a phone number")
	}

	entry, err := dnc.NewEntry(phone, "caller pressed 2", event.ProviderCallID)
	if err != nil {
		r.audit(ctx, event, ActionOptOut, "phone number failed validation")
		return err
	}

	added, err := r.store.Add(ctx, entry)
	if err != nil {
		r.audit(ctx, event, ActionOptOut, "do-not-call store write failed")
		return err
	}

	// The audit entry is appended whether or not the number was already
	// present; idempotence is at the set level, not the audit level.
	if added {
		r.audit(ctx, event, ActionOptOut, "number added to do-not-call list")
	} else {
		r.audit(ctx, event, ActionOptOut, "number already on do-not-call list")
	}

	r.logger.Info("opt-out processed",
		zap.String("provider_call_id", event.ProviderCallID),
		zap.String("phone_number", entry.Key()),
		zap.Bool("added", added))
	return nil
}

func (r *Router) audit(ctx context.Context, event domain.Event, action, note string) {
	if r.log == nil {
		return
	}
	record := domain.Event{
		ProviderCallID: event.ProviderCallID,
		Status:         StatusAction,
		Action:         action,
		Outcome:        note,
		PhoneNumber:    ResolvePhone(event),
		CampaignID:     event.CampaignID,
		ReceivedAt:     time.Now().UTC(),
	}
	if err := r.log.Append(ctx, record); err != nil {
		r.logger.Error("failed to append action audit entry",
			zap.String("provider_call_id", event.ProviderCallID),
			zap.Error(err))
	}
}

// ResolvePhone finds the contact's phone number for an event: the event's
// own phone field first, then the raw provider payload, then the metadata
// block. First non-empty wins.
func ResolvePhone(event domain.Event) string {
	if event.PhoneNumber != "" {
		return event.PhoneNumber
	}
	if event.Raw != nil {
		for _, key := range []string{"phone_number", "to", "called"} {
			if s, ok := event.Raw[key].(string); ok && s != "" {
				return s
			}
		}
		if meta, ok := event.Raw["metadata"].(map[string]any); ok {
			for _, key := range []string{"phone_number", "phone"} {
				if s, ok := meta[key].(string); ok && s != "" {
					return s
				}
			}
		}
	}
	return ""
}
