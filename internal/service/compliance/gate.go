package compliance

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/davidleathers/voice-outreach-backend/internal/domain/campaign"
	"github.com/davidleathers/voice-outreach-backend/internal/domain/contact"
	"github.com/davidleathers/voice-outreach-backend/internal/domain/dnc"
	"github.com/davidleathers/voice-outreach-backend/internal/domain/values"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/config"
)

// Decision is the gate's verdict for one contact at one instant.
type Decision struct {
	Allowed bool
	Reason  campaign.RejectReason // valid only when Allowed is false
}

var allow = Decision{Allowed: true}

func deny(reason campaign.RejectReason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Gate decides whether a specific contact may be called right now. Any
// ambiguity in timezone resolution or hours parsing denies the call: for
// legal compliance the gate fails closed, never open.
type Gate struct {
	cfg    config.ComplianceConfig
	store  dnc.Store
	logger *zap.Logger
}

// NewGate creates a compliance gate over the persisted do-not-call store.
func NewGate(cfg config.ComplianceConfig, store dnc.Store, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{cfg: cfg, store: store, logger: logger}
}

// Allowed checks business hours and do-not-call membership for the contact.
// extraList is an ad hoc per-campaign suppression list checked alongside the
// persisted store; membership in either denies.
func (g *Gate) Allowed(ctx context.Context, c contact.Contact, now time.Time, extraList []string) Decision {
	if d := g.checkCallingHours(now); !d.Allowed {
		return d
	}
	return g.checkDoNotCall(ctx, c, extraList)
}

func (g *Gate) checkCallingHours(now time.Time) Decision {
	loc, err := time.LoadLocation(g.cfg.Timezone)
	if err != nil {
		g.logger.Warn("failed to resolve compliance timezone, denying call",
			zap.String("timezone", g.cfg.Timezone),
			zap.Error(err))
		return deny(campaign.ReasonOutsideHours)
	}

	local := now.In(loc)

	// Only Monday through Friday pass.
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return deny(campaign.ReasonOutsideHours)
	}

	start, err := parseClock(g.cfg.CallHoursStart)
	if err != nil {
		g.logger.Warn("malformed call hours start, denying call",
			zap.String("value", g.cfg.CallHoursStart),
			zap.Error(err))
		return deny(campaign.ReasonOutsideHours)
	}
	end, err := parseClock(g.cfg.CallHoursEnd)
	if err != nil {
		g.logger.Warn("malformed call hours end, denying call",
			zap.String("value", g.cfg.CallHoursEnd),
			zap.Error(err))
		return deny(campaign.ReasonOutsideHours)
	}

	minutes := local.Hour()*60 + local.Minute()
	if minutes < start || minutes > end {
		return deny(campaign.ReasonOutsideHours)
	}

	return allow
}

func (g *Gate) checkDoNotCall(ctx context.Context, c contact.Contact, extraList []string) Decision {
	key := values.Normalize(c.PhoneNumber.E164())

	for _, raw := range extraList {
		if values.Normalize(raw) == key {
			return deny(campaign.ReasonDoNotCall)
		}
	}

	if g.store != nil {
		listed, err := g.store.Contains(ctx, key)
		if err != nil {
			// A store we cannot read is treated as a listing.
			g.logger.Warn("do-not-call lookup failed, denying call",
				zap.String("phone_number", key),
				zap.Error(err))
			return deny(campaign.ReasonDoNotCall)
		}
		if listed {
			return deny(campaign.ReasonDoNotCall)
		}
	}

	return allow
}

// parseClock converts "HH:MM" (24h) into minutes since midnight.
func parseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("clock value out of range: %q", s)
	}
	return hour*60 + minute, nil
}
