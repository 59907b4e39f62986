package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectMongo opens a MongoDB client and pings it, retrying while the server comes up.
func ConnectMongo(uri string, log *zap.Logger) (*mongo.Client, error) {
	var (
		client *mongo.Client
		err    error
	)

	for attempt := 1; attempt <= connectAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err == nil {
			err = client.Ping(ctx, nil)
			if err == nil {
				cancel()
				log.Info("connected to MongoDB")
				return client, nil
			}
			_ = client.Disconnect(context.Background())
		}
		cancel()

		log.Warn("MongoDB not ready",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", connectAttempts),
			zap.Error(err),
		)
		if attempt < connectAttempts {
			time.Sleep(connectDelay)
		}
	}

	return nil, fmt.Errorf("failed to connect to MongoDB after %d attempts: %w", connectAttempts, err)
}
