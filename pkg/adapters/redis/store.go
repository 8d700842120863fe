package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/automata/pkg/domain"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "automata:run:"

// Store implements ports.TraceStore using Redis. Each run is a JSON string
// key; a sorted set scored by creation time indexes them for List.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for runs. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for runs.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Save persists the run as JSON and indexes it by creation time.
func (s *Store) Save(ctx context.Context, run *domain.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(run.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  float64(run.CreatedAt.UnixMilli()),
		Member: run.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save run to redis: %w", err)
	}
	return nil
}

// Load retrieves the run from Redis.
func (s *Store) Load(ctx context.Context, id string) (*domain.Run, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run from redis: %w", err)
	}

	var run domain.Run
	if err := json.Unmarshal(val, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &run, nil
}

// Delete removes the run and its index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns run IDs, newest first. With a TTL, index entries older than
// the TTL are pruned first since their keys have expired.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if s.ttl > 0 {
		cutoff := time.Now().Add(-s.ttl).UnixMilli()
		err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", "("+strconv.FormatInt(cutoff, 10)).Err()
		if err != nil {
			return nil, fmt.Errorf("failed to prune expired runs: %w", err)
		}
	}

	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return ids, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
