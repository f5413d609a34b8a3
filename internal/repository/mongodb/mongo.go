// Package mongodb stores short URLs as MongoDB documents with clicks embedded.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"shortlink-backend/internal/domain"
	"shortlink-backend/internal/repository"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Name is reported by MongoStorage.Name.
const Name = "mongodb"

const collectionName = "short_urls"

type MongoStorage struct {
	coll *mongo.Collection
	log  *zap.Logger
}

func New(db *mongo.Database, log *zap.Logger) *MongoStorage {
	return &MongoStorage{
		coll: db.Collection(collectionName),
		log:  log,
	}
}

func (s *MongoStorage) Name() string {
	return Name
}

func (s *MongoStorage) Ping(ctx context.Context) error {
	if err := s.coll.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping failed: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique shortcode index and the expiry index used by sweeps.
func (s *MongoStorage) EnsureIndexes(ctx context.Context) error {
	names, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "shortcode", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("shortcode_unique"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("expires_at"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	s.log.Info("mongo indexes ensured", zap.Strings("indexes", names))
	return nil
}

func (s *MongoStorage) Save(ctx context.Context, url *domain.ShortURL) (*domain.ShortURL, error) {
	doc := fromDomain(url)

	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, repository.ErrShortcodeExists
		}
		s.log.Error("failed to save short url", zap.String("shortcode", url.Shortcode), zap.Error(err))
		return nil, fmt.Errorf("failed to save short url: %w", err)
	}

	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = id
	}
	return doc.toDomain(), nil
}

func (s *MongoStorage) FindByShortcode(ctx context.Context, shortcode string) (*domain.ShortURL, error) {
	var doc shortURLDocument

	err := s.coll.FindOne(ctx, bson.M{"shortcode": shortcode}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrShortcodeNotFound
	}
	if err != nil {
		s.log.Error("failed to get short url", zap.String("shortcode", shortcode), zap.Error(err))
		return nil, fmt.Errorf("failed to get short url: %w", err)
	}

	return doc.toDomain(), nil
}

// AppendClick pushes the click in a single atomic document update.
func (s *MongoStorage) AppendClick(ctx context.Context, shortcode string, click domain.Click) (*domain.ShortURL, error) {
	var doc shortURLDocument

	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"shortcode": shortcode},
		bson.M{"$push": bson.M{"clicks": clickFromDomain(click)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrShortcodeNotFound
	}
	if err != nil {
		s.log.Error("failed to append click", zap.String("shortcode", shortcode), zap.Error(err))
		return nil, fmt.Errorf("failed to append click: %w", err)
	}

	return doc.toDomain(), nil
}

func (s *MongoStorage) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": now}})
	if err != nil {
		s.log.Error("failed to sweep expired short urls", zap.Error(err))
		return 0, fmt.Errorf("failed to delete expired urls: %w", err)
	}
	return res.DeletedCount, nil
}
