package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func Connect(uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(25).
		SetConnectTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	// Verify the connection with a timeout
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		if dcErr := client.Disconnect(context.Background()); dcErr != nil {
			fmt.Printf("failed to disconnect after ping error: %v\n", dcErr)
		}
		return nil, fmt.Errorf("failed to ping mongo within %v: %w", timeout, err)
	}

	return client, nil
}
