package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davidleathers/voice-outreach-backend/internal/domain/campaign"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/config"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/provider"
	"github.com/davidleathers/voice-outreach-backend/internal/metrics"
	"github.com/davidleathers/voice-outreach-backend/internal/service/compliance"
)

// Dispatcher submits one outbound call per request through the telephony
// provider, gated by compliance. Every failure path is a CallResult value;
// nothing escapes as a panic or error.
type Dispatcher struct {
	gate     *compliance.Gate
	provider provider.CallSubmitter
	cfg      config.ProviderConfig
	registry *metrics.Registry
	logger   *zap.Logger
	clock    campaign.Clock
}

// NewDispatcher creates a dispatcher. registry may be nil.
func NewDispatcher(gate *compliance.Gate, p provider.CallSubmitter, cfg config.ProviderConfig, registry *metrics.Registry, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		gate:     gate,
		provider: p,
		cfg:      cfg,
		registry: registry,
		logger:   logger,
		clock:    campaign.RealClock{},
	}
}

// SetClock injects a clock for tests.
func (d *Dispatcher) SetClock(c campaign.Clock) {
	d.clock = c
}

// Dispatch validates, gates, and submits one call request. extraDNC is the
// campaign's ad hoc suppression list, forwarded to the compliance gate.
func (d *Dispatcher) Dispatch(ctx context.Context, req campaign.CallRequest, extraDNC []string) campaign.CallResult {
	started := time.Now()
	result := d.dispatch(ctx, req, extraDNC)
	d.record(ctx, result, time.Since(started))
	return result
}

func (d *Dispatcher) dispatch(ctx context.Context, req campaign.CallRequest, extraDNC []string) campaign.CallResult {
	if req.Contact.PhoneNumber.IsEmpty() {
		return campaign.NewRejected(req.Contact, campaign.ReasonInvalidPhone)
	}

	if req.DryRun {
		// Rehearsal: same result shape, no compliance I/O, no network.
		return campaign.NewSuccess(req.Contact, "dry-run-"+uuid.NewString(), "simulated")
	}

	if decision := d.gate.Allowed(ctx, req.Contact, d.clock.Now(), extraDNC); !decision.Allowed {
		d.logger.Info("call blocked by compliance gate",
			zap.String("contact", req.Contact.DisplayName),
			zap.String("reason", decision.Reason.String()))
		return campaign.NewRejected(req.Contact, decision.Reason)
	}

	submission := provider.CallSubmission{
		To:          req.Contact.PhoneNumber.E164(),
		From:        d.cfg.FromNumber,
		ScriptText:  req.ScriptText,
		CallbackURL: d.cfg.CallbackURL,
		Metadata: map[string]string{
			"contactName":  req.Contact.DisplayName,
			"contactEmail": req.Contact.Email.String(),
			"campaignId":   req.CampaignID.String(),
			"timestamp":    d.clock.Now().UTC().Format(time.RFC3339),
		},
	}

	timeout := d.cfg.SubmitTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	submitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := d.provider.SubmitCall(submitCtx, submission)
	if err != nil {
		var statusErr *provider.StatusError
		if errors.As(err, &statusErr) {
			d.logger.Warn("provider rejected call",
				zap.String("contact", req.Contact.DisplayName),
				zap.Int("http_status", statusErr.StatusCode),
				zap.String("message", statusErr.Message))
			return campaign.NewProviderError(req.Contact, statusErr.Message, statusErr.StatusCode)
		}
		d.logger.Warn("provider call submission failed",
			zap.String("contact", req.Contact.DisplayName),
			zap.Error(err))
		return campaign.NewProviderError(req.Contact, fmt.Sprintf("call submission failed: %v", err), 0)
	}

	d.logger.Info("call submitted",
		zap.String("contact", req.Contact.DisplayName),
		zap.String("provider_call_id", resp.CallID),
		zap.String("status", resp.Status))

	return campaign.NewSuccess(req.Contact, resp.CallID, resp.Status)
}

func (d *Dispatcher) record(ctx context.Context, result campaign.CallResult, elapsed time.Duration) {
	if d.registry == nil {
		return
	}
	d.registry.DispatchDuration.Record(ctx, float64(elapsed.Milliseconds()))
	switch result.Kind {
	case campaign.ResultSuccess:
		d.registry.CallSuccessCounter.Add(ctx, 1)
	case campaign.ResultRejected:
		d.registry.CallRejectCounter.Add(ctx, 1)
		if result.Reason != campaign.ReasonInvalidPhone {
			d.registry.ComplianceDenyCounter.Add(ctx, 1)
		}
	case campaign.ResultProviderError:
		d.registry.CallFailureCounter.Add(ctx, 1)
	}
}
