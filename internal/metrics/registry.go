package metrics

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Registry holds the domain metrics for the outreach backend.
type Registry struct {
	meter metric.Meter

	// Campaign metrics
	CallSuccessCounter metric.Int64Counter
	CallFailureCounter metric.Int64Counter
	CallRejectCounter  metric.Int64Counter
	DispatchDuration   metric.Float64Histogram

	// Compliance metrics
	ComplianceDenyCounter metric.Int64Counter
	DNCListSize           metric.Int64ObservableGauge

	// Webhook metrics
	WebhookCounter      metric.Int64Counter
	WebhookErrorCounter metric.Int64Counter
	EventLogDepth       metric.Int64ObservableGauge

	// API metrics
	APIRequestDuration metric.Float64Histogram
	APIRequestCounter  metric.Int64Counter

	dncListSize   atomic.Int64
	eventLogDepth atomic.Int64
}

// NewRegistry creates a metrics registry on the global meter provider.
func NewRegistry(meterName string) (*Registry, error) {
	meter := otel.Meter(meterName)
	r := &Registry{meter: meter}

	var err error

	if r.CallSuccessCounter, err = meter.Int64Counter("campaign.calls.success",
		metric.WithDescription("Calls accepted by the provider")); err != nil {
		return nil, err
	}
	if r.CallFailureCounter, err = meter.Int64Counter("campaign.calls.failure",
		metric.WithDescription("Calls rejected by the provider or failed in transport")); err != nil {
		return nil, err
	}
	if r.CallRejectCounter, err = meter.Int64Counter("campaign.calls.rejected",
		metric.WithDescription("Calls blocked before reaching the provider")); err != nil {
		return nil, err
	}
	if r.DispatchDuration, err = meter.Float64Histogram("campaign.dispatch.duration",
		metric.WithDescription("Dispatch latency in milliseconds"),
		metric.WithUnit("ms")); err != nil {
		return nil, err
	}
	if r.ComplianceDenyCounter, err = meter.Int64Counter("compliance.denials",
		metric.WithDescription("Compliance gate denials by reason")); err != nil {
		return nil, err
	}
	if r.DNCListSize, err = meter.Int64ObservableGauge("compliance.dnc.size",
		metric.WithDescription("Entries in the do-not-call set"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(r.dncListSize.Load())
			return nil
		})); err != nil {
		return nil, err
	}
	if r.WebhookCounter, err = meter.Int64Counter("webhook.events.received",
		metric.WithDescription("Webhook notifications ingested")); err != nil {
		return nil, err
	}
	if r.WebhookErrorCounter, err = meter.Int64Counter("webhook.events.rejected",
		metric.WithDescription("Webhook notifications rejected as malformed")); err != nil {
		return nil, err
	}
	if r.EventLogDepth, err = meter.Int64ObservableGauge("webhook.log.depth",
		metric.WithDescription("Events held in the in-memory log window"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(r.eventLogDepth.Load())
			return nil
		})); err != nil {
		return nil, err
	}
	if r.APIRequestDuration, err = meter.Float64Histogram("api.request.duration",
		metric.WithDescription("HTTP request latency in milliseconds"),
		metric.WithUnit("ms")); err != nil {
		return nil, err
	}
	if r.APIRequestCounter, err = meter.Int64Counter("api.request.count",
		metric.WithDescription("HTTP requests by method, path and status")); err != nil {
		return nil, err
	}

	return r, nil
}

// SetDNCListSize updates the observed do-not-call set size.
func (r *Registry) SetDNCListSize(n int64) {
	r.dncListSize.Store(n)
}

// SetEventLogDepth updates the observed in-memory log depth.
func (r *Registry) SetEventLogDepth(n int64) {
	r.eventLogDepth.Store(n)
}

// RecordAPIRequest records one HTTP request observation.
func (r *Registry) RecordAPIRequest(ctx context.Context, method, path string, status int, durationMs float64) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	)
	r.APIRequestCounter.Add(ctx, 1, attrs)
	r.APIRequestDuration.Record(ctx, durationMs, attrs)
}
