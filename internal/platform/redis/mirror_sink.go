// Package redis provides the Redis-backed mirror sink. Task mutation
// documents are stored as JSON values under "<collection>:<id>" keys so
// external subscribers can watch task state without touching the
// primary database.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kavinrs01/task-manager-server/internal/config"
	"github.com/kavinrs01/task-manager-server/internal/mirror"
)

// NewClient instantiates a Redis client from the mirror configuration
// and verifies connectivity with a short ping.
func NewClient(cfg config.MirrorConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.RedisAddr, err)
	}

	return client, nil
}

// MirrorSink implements mirror.Sink on top of a Redis client.
type MirrorSink struct {
	client *redis.Client
	logger *slog.Logger
}

// NewMirrorSink creates a Redis-backed mirror sink.
func NewMirrorSink(client *redis.Client, logger *slog.Logger) *MirrorSink {
	if client == nil {
		panic("client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &MirrorSink{
		client: client,
		logger: logger.With(slog.String("component", "redis_mirror_sink")),
	}
}

// Ensure MirrorSink implements mirror.Sink
var _ mirror.Sink = (*MirrorSink)(nil)

// Upsert implements mirror.Sink. The document overwrites any previous
// one for the same key; documents carry no TTL.
func (s *MirrorSink) Upsert(ctx context.Context, collection, id string, doc mirror.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal mirror document: %w", err)
	}

	key := collection + ":" + id
	if err := s.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to write mirror document %s: %w", key, err)
	}

	s.logger.Debug("mirror document written", slog.String("key", key))
	return nil
}

// Close releases the underlying client connection.
func (s *MirrorSink) Close() error {
	return s.client.Close()
}
