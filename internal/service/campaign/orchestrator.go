package campaign

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	domain "github.com/davidleathers/voice-outreach-backend/internal/domain/campaign"
	"github.com/davidleathers/voice-outreach-backend/internal/domain/contact"
)

// CallDispatcher is the single-call collaborator the orchestrator drives.
type CallDispatcher interface {
	Dispatch(ctx context.Context, req domain.CallRequest, extraDNC []string) domain.CallResult
}

// Options configures one campaign run.
type Options struct {
	CampaignID uuid.UUID
	// ScriptFor returns the rendered script for a contact. Personalization
	// itself happens upstream; the orchestrator only carries the result.
	ScriptFor func(contact.Contact) string
	DryRun    bool
	// PacingDelay is the minimum spacing between consecutive dispatches.
	// Compliance and provider rate limits are measured in wall-clock time,
	// so this is a guarantee, not a hint.
	PacingDelay time.Duration
	// ExtraDNC is an ad hoc suppression list scoped to this run.
	ExtraDNC []string
}

// Orchestrator drives an ordered contact list through the dispatcher,
// strictly one call in flight at a time. A failed contact counts as failed
// and the run moves on; re-running the campaign is the retry mechanism.
type Orchestrator struct {
	dispatcher CallDispatcher
	logger     *zap.Logger
}

// NewOrchestrator creates a campaign orchestrator.
func NewOrchestrator(dispatcher CallDispatcher, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{dispatcher: dispatcher, logger: logger}
}

// Run dispatches every contact in order, emitting one CallResult per contact.
// Cancelling ctx stops the run between iterations; it does not abort a
// dispatch already in flight. The summary reports whatever completed.
func (o *Orchestrator) Run(ctx context.Context, contacts []contact.Contact, opts Options) (domain.Summary, []domain.CallResult) {
	if opts.CampaignID == uuid.Nil {
		opts.CampaignID = uuid.New()
	}
	if opts.ScriptFor == nil {
		opts.ScriptFor = func(contact.Contact) string { return "" }
	}

	var limiter *rate.Limiter
	if opts.PacingDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.PacingDelay), 1)
	}

	o.logger.Info("campaign run starting",
		zap.String("campaign_id", opts.CampaignID.String()),
		zap.Int("contacts", len(contacts)),
		zap.Bool("dry_run", opts.DryRun),
		zap.Duration("pacing_delay", opts.PacingDelay))

	var summary domain.Summary
	results := make([]domain.CallResult, 0, len(contacts))

	for i, c := range contacts {
		if ctx.Err() != nil {
			o.logger.Warn("campaign run cancelled",
				zap.String("campaign_id", opts.CampaignID.String()),
				zap.Int("dispatched", i))
			break
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				o.logger.Warn("campaign run cancelled during pacing delay",
					zap.String("campaign_id", opts.CampaignID.String()),
					zap.Int("dispatched", i))
				break
			}
		}

		req := domain.CallRequest{
			Contact:    c,
			ScriptText: opts.ScriptFor(c),
			CampaignID: opts.CampaignID,
			DryRun:     opts.DryRun,
		}

		// An in-flight dispatch is never aborted by run cancellation.
		result := o.dispatcher.Dispatch(context.WithoutCancel(ctx), req, opts.ExtraDNC)
		results = append(results, result)
		summary.Record(result)

		o.logger.Debug("contact dispatched",
			zap.String("campaign_id", opts.CampaignID.String()),
			zap.Int("position", i+1),
			zap.String("kind", result.Kind.String()))
	}

	o.logger.Info("campaign run finished",
		zap.String("campaign_id", opts.CampaignID.String()),
		zap.String("summary", summary.String()))

	return summary, results
}
