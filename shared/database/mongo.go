package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// MongoConfig holds the connection settings for a MongoDB deployment.
type MongoConfig struct {
	URI            string        `env:"URI"             envDefault:"mongodb://localhost:27017"`
	Database       string        `env:"DATABASE"        envDefault:"propertylisting"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
}

// NewMongoClient connects to MongoDB and pings the primary before returning.
func NewMongoClient(ctx context.Context, cfg MongoConfig) (*mongo.Client, error) {
	client, err := mongo.Connect(
		options.Client().
			ApplyURI(cfg.URI).
			SetConnectTimeout(cfg.ConnectTimeout),
	)
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
