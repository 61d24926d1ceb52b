package dncstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/davidleathers/voice-outreach-backend/internal/domain/dnc"
	"github.com/davidleathers/voice-outreach-backend/internal/errors"
	"github.com/davidleathers/voice-outreach-backend/internal/infrastructure/config"
)

const (
	// redisSetKey holds the membership set of normalized phone numbers.
	redisSetKey = "vob:dnc:numbers"
	// redisEntryPrefix holds the full entry document per number.
	redisEntryPrefix = "vob:dnc:entry:"
)

// RedisStore is the shared do-not-call set for deployments where other
// processes consume the list. Membership lives in one Redis set; the full
// entry document is kept alongside for audit.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg *config.RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		return nil, fmt.Errorf("redis config is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info("do-not-call redis store initialized",
		zap.String("addr", cfg.URL),
		zap.Int("db", cfg.DB))

	return &RedisStore{client: client, logger: logger}, nil
}

// NewRedisStoreWithClient wraps an existing client (tests use miniredis).
func NewRedisStoreWithClient(client *redis.Client, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, logger: logger}
}

// Add inserts the entry unless its number is already present. SADD settles
// concurrent adds of the same number; exactly one caller observes added=true.
func (s *RedisStore) Add(ctx context.Context, entry *dnc.Entry) (bool, error) {
	added, err := s.client.SAdd(ctx, redisSetKey, entry.Key()).Result()
	if err != nil {
		s.logger.Error("redis sadd failed", zap.String("key", entry.Key()), zap.Error(err))
		return false, errors.NewPersistenceError("DNC_REDIS_ADD", "failed to add do-not-call entry").WithCause(err)
	}
	if added == 0 {
		return false, nil
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return true, errors.NewPersistenceError("DNC_ENCODE", "failed to encode do-not-call entry").WithCause(err)
	}
	if err := s.client.Set(ctx, redisEntryPrefix+entry.Key(), raw, 0).Err(); err != nil {
		s.logger.Error("redis set failed", zap.String("key", entry.Key()), zap.Error(err))
		return true, errors.NewPersistenceError("DNC_REDIS_SET", "failed to store do-not-call entry document").WithCause(err)
	}

	return true, nil
}

// Contains tests membership by normalized phone number.
func (s *RedisStore) Contains(ctx context.Context, phoneNumber string) (bool, error) {
	listed, err := s.client.SIsMember(ctx, redisSetKey, phoneNumber).Result()
	if err != nil {
		s.logger.Error("redis sismember failed", zap.String("key", phoneNumber), zap.Error(err))
		return false, errors.NewPersistenceError("DNC_REDIS_CHECK", "failed to check do-not-call membership").WithCause(err)
	}
	return listed, nil
}

// Size reports the number of entries held.
func (s *RedisStore) Size(ctx context.Context) (int64, error) {
	return s.client.SCard(ctx, redisSetKey).Result()
}

var _ dnc.Store = (*RedisStore)(nil)
