package mongodb

import (
	"context"
	"fmt"
	"shortlink-backend/internal/config"
	"shortlink-backend/internal/database"
	"shortlink-backend/internal/domain"
	"shortlink-backend/internal/repository"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type MongoStorageTestSuite struct {
	suite.Suite
	container testcontainers.Container
	db        *mongo.Database
	storage   *MongoStorage
}

func TestMongoStorage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(MongoStorageTestSuite))
}

func (s *MongoStorageTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	s.Require().NoError(err)
	s.container = container

	host, err := container.Host(ctx)
	s.Require().NoError(err)
	port, err := container.MappedPort(ctx, "27017")
	s.Require().NoError(err)

	log := zap.NewNop()
	s.db, err = database.NewMongoConnection(ctx, &config.Database{
		MongoURI:       fmt.Sprintf("mongodb://%s:%s", host, port.Port()),
		MongoDatabase:  "url_shortener_test",
		ConnectTimeout: 10 * time.Second,
	}, log)
	s.Require().NoError(err)

	s.storage = New(s.db, log)
	s.Require().NoError(s.storage.EnsureIndexes(ctx))
}

func (s *MongoStorageTestSuite) TearDownSuite() {
	ctx := context.Background()
	if s.db != nil {
		_ = database.CloseMongo(ctx, s.db, zap.NewNop())
	}
	if s.container != nil {
		s.Require().NoError(s.container.Terminate(ctx))
	}
}

func (s *MongoStorageTestSuite) SetupTest() {
	_, err := s.storage.coll.DeleteMany(context.Background(), bson.M{})
	s.Require().NoError(err)
}

func newURL(code string, expiresAt time.Time) *domain.ShortURL {
	return &domain.ShortURL{
		Shortcode:       code,
		OriginalURL:     "https://example.com/" + code,
		CreatedAt:       expiresAt.Add(-30 * time.Minute).UTC().Truncate(time.Millisecond),
		ExpiresAt:       expiresAt.UTC().Truncate(time.Millisecond),
		ValidityMinutes: 30,
		IsActive:        true,
	}
}

func (s *MongoStorageTestSuite) TestPing() {
	s.NoError(s.storage.Ping(context.Background()))
}

func (s *MongoStorageTestSuite) TestSaveAndFind() {
	ctx := context.Background()
	in := newURL("abc123", time.Now().Add(time.Hour))

	saved, err := s.storage.Save(ctx, in)
	s.Require().NoError(err)
	s.NotEmpty(saved.ID)

	got, err := s.storage.FindByShortcode(ctx, "abc123")
	s.Require().NoError(err)
	s.Equal(saved.ID, got.ID)
	s.Equal(in.OriginalURL, got.OriginalURL)
	s.True(in.ExpiresAt.Equal(got.ExpiresAt))
	s.Equal(0, got.ClickCount())

	_, err = s.storage.FindByShortcode(ctx, "missing")
	s.ErrorIs(err, repository.ErrShortcodeNotFound)
}

func (s *MongoStorageTestSuite) TestEnsureIndexesRejectsDuplicateShortcodes() {
	ctx := context.Background()
	db := s.db.Client().Database("url_shortener_dupes")
	defer func() { _ = db.Drop(ctx) }()

	storage := New(db, zap.NewNop())
	_, err := storage.coll.InsertMany(ctx, []interface{}{
		bson.M{"shortcode": "same", "original_url": "https://example.com/a"},
		bson.M{"shortcode": "same", "original_url": "https://example.com/b"},
	})
	s.Require().NoError(err)

	s.Error(storage.EnsureIndexes(ctx))
}

func (s *MongoStorageTestSuite) TestSaveDuplicate() {
	ctx := context.Background()

	_, err := s.storage.Save(ctx, newURL("dup", time.Now().Add(time.Hour)))
	s.Require().NoError(err)

	_, err = s.storage.Save(ctx, newURL("dup", time.Now().Add(time.Hour)))
	s.ErrorIs(err, repository.ErrShortcodeExists)
}

func (s *MongoStorageTestSuite) TestAppendClick() {
	ctx := context.Background()

	_, err := s.storage.AppendClick(ctx, "missing", domain.Click{})
	s.ErrorIs(err, repository.ErrShortcodeNotFound)

	_, err = s.storage.Save(ctx, newURL("clicks", time.Now().Add(time.Hour)))
	s.Require().NoError(err)

	for i := 0; i < 3; i++ {
		updated, err := s.storage.AppendClick(ctx, "clicks", domain.Click{
			Timestamp: time.Now().UTC(),
			Referrer:  fmt.Sprintf("ref%d.example", i),
			Geolocation: domain.Geolocation{
				Country: "DE",
				Region:  "BE",
				City:    "Berlin",
			},
		})
		s.Require().NoError(err)
		s.Equal(i+1, updated.ClickCount())
	}

	got, err := s.storage.FindByShortcode(ctx, "clicks")
	s.Require().NoError(err)
	s.Require().Len(got.Clicks, 3)
	s.Equal("ref0.example", got.Clicks[0].Referrer)
	s.Equal("Berlin", got.Clicks[2].Geolocation.City)
}

func (s *MongoStorageTestSuite) TestDeleteExpired() {
	ctx := context.Background()
	now := time.Now()

	_, err := s.storage.Save(ctx, newURL("expired", now.Add(-time.Hour)))
	s.Require().NoError(err)
	_, err = s.storage.Save(ctx, newURL("alive", now.Add(time.Hour)))
	s.Require().NoError(err)

	deleted, err := s.storage.DeleteExpired(ctx, now)
	s.Require().NoError(err)
	s.Equal(int64(1), deleted)

	_, err = s.storage.FindByShortcode(ctx, "expired")
	s.ErrorIs(err, repository.ErrShortcodeNotFound)
	_, err = s.storage.FindByShortcode(ctx, "alive")
	s.NoError(err)
}

func TestDocumentConversion(t *testing.T) {
	now := time.Now().UTC()
	u := &domain.ShortURL{
		Shortcode:       "conv",
		OriginalURL:     "https://example.com",
		CreatedAt:       now,
		ExpiresAt:       now.Add(time.Hour),
		ValidityMinutes: 60,
		IsActive:        true,
	}

	doc := fromDomain(u)
	require.NotNil(t, doc.Clicks, "clicks must encode as an empty array")
	assert.Empty(t, doc.Clicks)

	doc.Clicks = append(doc.Clicks, clickFromDomain(domain.Click{
		Referrer:    "direct",
		Geolocation: domain.Geolocation{Coordinates: domain.Coordinates{Lat: 1.5, Lon: -2.5}},
		Device:      domain.Device{Type: "mobile"},
	}))

	back := doc.toDomain()
	assert.Equal(t, "conv", back.Shortcode)
	assert.Equal(t, 60, back.ValidityMinutes)
	require.Len(t, back.Clicks, 1)
	assert.Equal(t, 1.5, back.Clicks[0].Geolocation.Coordinates.Lat)
	assert.Equal(t, "mobile", back.Clicks[0].Device.Type)
}
