package outcome

import (
	"context"

	"go.uber.org/zap"

	domain "github.com/davidleathers/voice-outreach-backend/internal/domain/outcome"
)

// Consumer decouples action execution from the webhook handler: the handler
// enqueues classified events and returns, and a single worker drains the
// queue and runs the router. Side effects therefore never run inside the
// HTTP request path.
type Consumer struct {
	router *Router
	queue  chan domain.Event
	done   chan struct{}
	logger *zap.Logger
}

// NewConsumer creates a consumer with the given queue depth.
func NewConsumer(router *Router, buffer int, logger *zap.Logger) *Consumer {
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{
		router: router,
		queue:  make(chan domain.Event, buffer),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Enqueue hands an event to the worker. It never blocks the webhook handler;
// a full queue drops the action (the event itself is already logged) and
// reports false.
func (c *Consumer) Enqueue(event domain.Event) bool {
	select {
	case c.queue <- event:
		return true
	default:
		c.logger.Warn("action queue full, dropping routed action",
			zap.String("provider_call_id", event.ProviderCallID))
		return false
	}
}

// Start runs the worker until ctx is cancelled, then drains what is already
// queued and closes Done.
func (c *Consumer) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event := <-c.queue:
				c.route(ctx, event)
			case <-ctx.Done():
				for {
					select {
					case event := <-c.queue:
						c.route(context.WithoutCancel(ctx), event)
					default:
						return
					}
				}
			}
		}
	}()
}

// Done is closed once the worker has exited.
func (c *Consumer) Done() <-chan struct{} {
	return c.done
}

func (c *Consumer) route(ctx context.Context, event domain.Event) {
	action, err := c.router.Route(ctx, event)
	if err != nil {
		c.logger.Warn("routed action failed",
			zap.String("provider_call_id", event.ProviderCallID),
			zap.String("action", action),
			zap.Error(err))
	}
}
