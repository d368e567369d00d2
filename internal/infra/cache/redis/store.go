// Package redis implements the cache backing store on a Redis instance.
// Records are stored as JSON documents under a namespaced fingerprint key.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trustlens/trustlens/internal/domain/analysis"
)

const keyPrefix = "trustlens:analysis:"

// Store implements analysis.Store on Redis.
type Store struct {
	rdb *redis.Client
}

// New connects to Redis and verifies the connection with a bounded ping.
func New(addr, password string, db int) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	return &Store{rdb: rdb}, nil
}

// Get returns the record for a fingerprint, or analysis.ErrNotFound.
func (s *Store) Get(ctx context.Context, hash string) (*analysis.Record, error) {
	data, err := s.rdb.Get(ctx, keyPrefix+hash).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, analysis.ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var rec analysis.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("redis get: decode record: %w", err)
	}
	return &rec, nil
}

// Put upserts a record. No expiry: lifecycle is indefinite at this
// layer; eviction is the store operator's concern.
func (s *Store) Put(ctx context.Context, rec *analysis.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis put: encode record: %w", err)
	}
	if err := s.rdb.Set(ctx, keyPrefix+rec.Hash, data, 0).Err(); err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	return nil
}

// Ping probes the connection; used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close releases the client connection.
func (s *Store) Close() error {
	return s.rdb.Close()
}
