package database

import (
	"context"
	"fmt"
	"shortlink-backend/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// NewMongoConnection подключается к MongoDB и проверяет соединение
func NewMongoConnection(ctx context.Context, cfg *config.Database, log *zap.Logger) (*mongo.Database, error) {
	timeout := connectTimeout(cfg)
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	log.Info("successfully connected to MongoDB", zap.String("database", cfg.MongoDatabase))

	return client.Database(cfg.MongoDatabase), nil
}

// CloseMongo закрывает клиент MongoDB
func CloseMongo(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	if err := db.Client().Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongo: %w", err)
	}

	log.Info("mongo connection closed")
	return nil
}
