package dncstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/davidleathers/voice-outreach-backend/internal/domain/dnc"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/config"
	"github.com/davidleathers/voice-outreach-backend/internal/metrics"
)

// Open selects the do-not-call backend from configuration. Every process
// that reads or writes the list goes through this switch so that opt-outs
// recorded by one binary are visible to the others. With a registry the
// store reports its size to the compliance.dnc.size gauge, at open and
// after every write.
func Open(cfg *config.Config, registry *metrics.Registry, logger *zap.Logger) (dnc.Store, error) {
	store, err := openBackend(cfg, logger)
	if err != nil || registry == nil {
		return store, err
	}

	m := &measuredStore{Store: store, registry: registry}
	m.observe(context.Background())
	return m, nil
}

func openBackend(cfg *config.Config, logger *zap.Logger) (dnc.Store, error) {
	switch cfg.DNC.Backend {
	case "redis":
		return NewRedisStore(&cfg.Redis, logger)
	case "file":
		return NewFileStore(cfg.DNC.FilePath, logger)
	default:
		return nil, fmt.Errorf("unknown do-not-call backend %q", cfg.DNC.Backend)
	}
}

// measuredStore mirrors the set size into the metrics registry.
type measuredStore struct {
	dnc.Store
	registry *metrics.Registry
}

func (s *measuredStore) Add(ctx context.Context, entry *dnc.Entry) (bool, error) {
	added, err := s.Store.Add(ctx, entry)
	if err == nil && added {
		s.observe(ctx)
	}
	return added, err
}

func (s *measuredStore) observe(ctx context.Context) {
	if n, err := s.Store.Size(ctx); err == nil {
		s.registry.SetDNCListSize(n)
	}
}
