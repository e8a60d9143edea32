package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// mongoDial establishes and verifies a client; it is a seam for tests.
var mongoDial = func(ctx context.Context, cfg *MongoConfig) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetConnectTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, nil
}

// MongoConfig holds MongoDB connection configuration
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
}

// DefaultMongoConfig returns default configuration
func DefaultMongoConfig() *MongoConfig {
	return &MongoConfig{
		URI:            "mongodb://localhost:27017",
		Database:       "fragrance_shop",
		ConnectTimeout: 10 * time.Second,
		MaxPoolSize:    100,
	}
}

// connectAttempt is a single in-flight connection attempt shared by all
// callers that arrive while it is pending.
type connectAttempt struct {
	done   chan struct{}
	client *mongo.Client
	err    error
}

// MongoDB lazily manages a single shared client. The first caller of
// Connect performs the dial; concurrent callers wait on the same attempt
// instead of opening duplicate connections. A failed attempt clears the
// cached state so a later call can retry.
type MongoDB struct {
	config *MongoConfig

	mu      sync.Mutex
	client  *mongo.Client
	attempt *connectAttempt
}

// NewMongo creates a lazy MongoDB connection manager. No connection is
// opened until Connect (or Collection) is first called.
func NewMongo(cfg *MongoConfig) *MongoDB {
	if cfg == nil {
		cfg = DefaultMongoConfig()
	}
	return &MongoDB{config: cfg}
}

// NewMongoWithClient wraps an already-established client, bypassing the
// lazy dial. Used by tests that bring their own client.
func NewMongoWithClient(client *mongo.Client, databaseName string) *MongoDB {
	cfg := DefaultMongoConfig()
	cfg.Database = databaseName
	return &MongoDB{config: cfg, client: client}
}

// Connect returns the shared client, establishing it on first use.
func (db *MongoDB) Connect(ctx context.Context) (*mongo.Client, error) {
	db.mu.Lock()
	if db.client != nil {
		client := db.client
		db.mu.Unlock()
		return client, nil
	}

	if db.attempt != nil {
		att := db.attempt
		db.mu.Unlock()
		select {
		case <-att.done:
			return att.client, att.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	att := &connectAttempt{done: make(chan struct{})}
	db.attempt = att
	db.mu.Unlock()

	client, err := mongoDial(ctx, db.config)

	db.mu.Lock()
	if err == nil {
		db.client = client
	}
	db.attempt = nil
	db.mu.Unlock()

	att.client = client
	att.err = err
	close(att.done)

	return client, err
}

// Collection returns a handle to a collection in the configured database,
// connecting first if necessary.
func (db *MongoDB) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	client, err := db.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(db.config.Database).Collection(name), nil
}

// Ping checks if the database connection is alive
func (db *MongoDB) Ping(ctx context.Context) error {
	client, err := db.Connect(ctx)
	if err != nil {
		return err
	}
	return client.Ping(ctx, readpref.Primary())
}

// HealthCheck performs a bounded health check on the database
func (db *MongoDB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Close disconnects the client if one was established
func (db *MongoDB) Close(ctx context.Context) error {
	db.mu.Lock()
	client := db.client
	db.client = nil
	db.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}
