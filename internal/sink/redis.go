package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/tradewatch/whale-data/internal/model"
)

// DefaultChannel is the pub/sub channel for live anomaly broadcast.
const DefaultChannel = "whale-alerts"

// Redis broadcasts anomalous trades over pub/sub. Subscribers that
// miss a message miss it; the postgres sink is the durable record.
type Redis struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

// NewRedis creates the redis sink from a redis:// URL.
func NewRedis(url, channel string, logger *slog.Logger) (*Redis, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if channel == "" {
		channel = DefaultChannel
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	return &Redis{
		client:  redis.NewClient(opt),
		channel: channel,
		logger:  logger,
	}, nil
}

// Start verifies the connection.
func (s *Redis) Start(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	s.logger.Info("redis sink started", "channel", s.channel)
	return nil
}

// Stop closes the client.
func (s *Redis) Stop(ctx context.Context) error {
	err := s.client.Close()
	s.logger.Info("redis sink stopped")
	return err
}

// Name identifies the sink in logs and metrics.
func (s *Redis) Name() string { return "redis" }

// Write publishes an anomalous trade to the broadcast channel.
func (s *Redis) Write(ctx context.Context, rec model.ScoredTrade) error {
	if !rec.Result.IsAnomaly {
		return nil
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal anomaly: %w", err)
	}

	return s.client.Publish(ctx, s.channel, payload).Err()
}
