package ingest

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/davidleathers/voice-outreach-backend/internal/domain/outcome"
	"github.com/davidleathers/voice-outreach-backend/internal/errors"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/eventlog"
	"github.com/davidleathers/voice-outreach-backend/internal/metrics"
)

// Ingester normalizes heterogeneous provider notifications into Events and
// appends them to the shared log. One call per inbound webhook POST.
// Duplicate provider retries produce duplicate log entries; the log is a
// multiset and statistics must treat it as one.
type Ingester struct {
	log      *eventlog.Log
	registry *metrics.Registry
	logger   *zap.Logger
}

// NewIngester creates an ingester over the shared log. registry may be nil.
func NewIngester(log *eventlog.Log, registry *metrics.Registry, logger *zap.Logger) *Ingester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingester{log: log, registry: registry, logger: logger}
}

// Ingest normalizes one raw payload and appends it. A payload without a call
// identifier is rejected with a ValidationError and never logged. A durable
// write failure is returned alongside the event so the transport can surface
// it; the event is already in the in-memory window at that point.
func (i *Ingester) Ingest(ctx context.Context, raw map[string]any) (outcome.Event, error) {
	event, err := Normalize(raw)
	if err != nil {
		if i.registry != nil {
			i.registry.WebhookErrorCounter.Add(ctx, 1)
		}
		return outcome.Event{}, err
	}

	if i.registry != nil {
		i.registry.WebhookCounter.Add(ctx, 1)
	}

	appendErr := i.log.Append(ctx, event)
	if i.registry != nil {
		i.registry.SetEventLogDepth(int64(i.log.Count()))
	}

	i.logger.Info("webhook event ingested",
		zap.String("provider_call_id", event.ProviderCallID),
		zap.String("status", event.Status),
		zap.String("outcome", event.Outcome))

	if appendErr != nil {
		return event, errors.NewPersistenceError("EVENT_APPEND", "event accepted but durable write failed").WithCause(appendErr)
	}
	return event, nil
}

// Normalize maps an arbitrary provider payload onto the canonical Event
// shape. Missing optional fields default to safe values (zero duration,
// empty outcome) rather than failing the notification.
func Normalize(raw map[string]any) (outcome.Event, error) {
	callID := stringField(raw, "call_id", "callId", "provider_call_id", "call_sid", "id")
	if callID == "" {
		return outcome.Event{}, errors.NewValidationError("MISSING_CALL_ID", "webhook payload has no call identifier")
	}

	event := outcome.Event{
		ProviderCallID:  callID,
		Status:          stringField(raw, "status", "call_status"),
		DurationSeconds: intField(raw, "duration", "duration_seconds", "call_duration"),
		Outcome:         stringField(raw, "outcome", "result"),
		Transcript:      stringField(raw, "transcript", "transcription"),
		UserChoice:      choiceField(raw, "user_choice", "user_input", "digits", "dtmf"),
		PhoneNumber:     stringField(raw, "phone_number", "to", "called"),
		ReceivedAt:      time.Now().UTC(),
		Raw:             raw,
	}

	if meta, ok := raw["metadata"].(map[string]any); ok {
		event.ContactName = stringField(meta, "contactName", "contact_name", "name")
		event.ContactEmail = stringField(meta, "contactEmail", "contact_email", "email")
		event.CampaignID = stringField(meta, "campaignId", "campaign_id")
		if event.PhoneNumber == "" {
			event.PhoneNumber = stringField(meta, "phone_number", "phone")
		}
	}

	return event, nil
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			switch s := v.(type) {
			case string:
				if s != "" {
					return s
				}
			case float64:
				return strconv.FormatFloat(s, 'f', -1, 64)
			}
		}
	}
	return ""
}

func intField(m map[string]any, keys ...string) int {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return int(v)
		case int:
			return v
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
	}
	return 0
}

// choiceField only admits the two keypad selections the campaign asks for;
// anything else stays empty rather than inventing a choice.
func choiceField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			s := fmt.Sprintf("%v", v)
			if s == "1" || s == "2" {
				return s
			}
		}
	}
	return ""
}
