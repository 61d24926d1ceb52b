package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/davidleathers/voice-outreach-backend/internal/domain/outcome"
	"github.com/davidleathers/voice-outreach-backend/internal/errors"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/config"
)

// PostgresSink persists webhook events to Postgres for deployments where the
// durable log outgrows a flat file. Selected by the event_log.backend config.
type PostgresSink struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresSink connects a pool and verifies the connection.
func NewPostgresSink(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*PostgresSink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("database url is required for the postgres event sink")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	logger.Info("postgres event sink initialized",
		zap.Int32("max_conns", poolCfg.MaxConns))

	return &PostgresSink{pool: pool, logger: logger}, nil
}

const insertEventSQL = `
	INSERT INTO webhook_events (
		provider_call_id, status, duration_seconds, outcome, transcript,
		user_choice, phone_number, contact_name, contact_email, campaign_id,
		action, received_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

// Persist inserts one event row.
func (s *PostgresSink) Persist(ctx context.Context, event outcome.Event) error {
	_, err := s.pool.Exec(ctx, insertEventSQL,
		event.ProviderCallID,
		event.Status,
		event.DurationSeconds,
		event.Outcome,
		event.Transcript,
		event.UserChoice,
		event.PhoneNumber,
		event.ContactName,
		event.ContactEmail,
		event.CampaignID,
		event.Action,
		event.ReceivedAt,
	)
	if err != nil {
		return errors.NewPersistenceError("EVENT_INSERT", "failed to insert webhook event").WithCause(err)
	}
	return nil
}

// Close releases the pool.
func (s *PostgresSink) Close() {
	s.pool.Close()
}
