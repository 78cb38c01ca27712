// Package mongo wraps the document-store client with an explicit lifecycle.
// The client is constructed once at startup and injected into stores; there is
// no lazily-populated process-global handle.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Client wraps the mongo driver client with health checking capabilities.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect establishes the connection and verifies it with a ping.
func Connect(ctx context.Context, uri, database string) (*Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb ping failed: %w", err)
	}

	return &Client{client: client, db: client.Database(database)}, nil
}

// Database returns the configured database handle. The driver multiplexes
// concurrent operations over its own pool; callers perform no locking.
func (c *Client) Database() *mongo.Database {
	return c.db
}

// Health checks if the connection is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close tears down the connection pool.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
