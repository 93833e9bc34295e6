// Package database owns the single shared MongoDB connection for the
// process. The connection is established lazily on first use and cached;
// concurrent callers during startup converge on one connection attempt.
package database

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"golang.org/x/sync/singleflight"

	"github.com/imaginify/backend/config"
)

var (
	// ErrMissingURI indicates MONGODB_URL is absent from the environment.
	// Fatal configuration error; retrying cannot help.
	ErrMissingURI = errors.New("MONGODB_URL is missing")

	// ErrConnect indicates the underlying connect or ping failed.
	// Transient; the caller may retry, which triggers a fresh attempt.
	ErrConnect = errors.New("database connection failed")
)

// Dialer establishes a MongoDB client. Injectable for tests.
type Dialer func(ctx context.Context, uri string) (*mongo.Client, error)

// Gateway hands out the shared database handle. Connect is idempotent:
// the first successful attempt is cached for the process lifetime, and a
// failed attempt is cleared so a later call can retry. No automatic
// retry or backoff is performed here.
type Gateway struct {
	uri    string
	dbName string
	dial   Dialer

	group singleflight.Group

	mu     sync.Mutex
	client *mongo.Client
}

// New creates a Gateway using the real MongoDB dialer.
func New(cfg *config.Config) *Gateway {
	return NewWithDialer(cfg, dialMongo)
}

// NewWithDialer creates a Gateway with a custom dialer.
func NewWithDialer(cfg *config.Config, dial Dialer) *Gateway {
	return &Gateway{
		uri:    cfg.Database.URL,
		dbName: cfg.Database.Name,
		dial:   dial,
	}
}

// Connect returns the shared database handle, dialing on first use.
// Concurrent callers share a single in-flight attempt.
func (g *Gateway) Connect(ctx context.Context) (*mongo.Database, error) {
	if g.uri == "" {
		return nil, ErrMissingURI
	}

	g.mu.Lock()
	if g.client != nil {
		client := g.client
		g.mu.Unlock()
		return client.Database(g.dbName), nil
	}
	g.mu.Unlock()

	v, err, _ := g.group.Do("connect", func() (any, error) {
		// A concurrent attempt may have won while this call waited.
		g.mu.Lock()
		if g.client != nil {
			client := g.client
			g.mu.Unlock()
			return client, nil
		}
		g.mu.Unlock()

		log.Info().Msg("Connecting to MongoDB")
		client, err := g.dial(ctx, g.uri)
		if err != nil {
			// Nothing is cached on failure; the next Connect retries.
			return nil, fmt.Errorf("%v: %w", err, ErrConnect)
		}

		g.mu.Lock()
		g.client = client
		g.mu.Unlock()

		log.Info().Msg("Connected to MongoDB")
		return client, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*mongo.Client).Database(g.dbName), nil
}

// Close disconnects the cached client, if any. Called once at shutdown.
func (g *Gateway) Close(ctx context.Context) error {
	g.mu.Lock()
	client := g.client
	g.client = nil
	g.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

func dialMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	// The driver connects lazily; ping to surface failures now rather
	// than on the first query.
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
