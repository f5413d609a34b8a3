package repository

import (
	"context"
	"errors"
	"shortlink-backend/internal/domain"
	"time"
)

var (
	ErrShortcodeNotFound = errors.New("shortcode not found")
	ErrShortcodeExists   = errors.New("shortcode already exists")
)

// Storage is implemented by every persistence backend.
type Storage interface {
	// Save inserts url only if its shortcode is not taken, otherwise ErrShortcodeExists.
	Save(ctx context.Context, url *domain.ShortURL) (*domain.ShortURL, error)
	FindByShortcode(ctx context.Context, shortcode string) (*domain.ShortURL, error)
	// AppendClick adds click to the end of the record's click list.
	AppendClick(ctx context.Context, shortcode string, click domain.Click) (*domain.ShortURL, error)
	// DeleteExpired removes every record with ExpiresAt before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	Name() string
}

// Durable is a Storage backed by an external database that can become unavailable.
type Durable interface {
	Storage
	Ping(ctx context.Context) error
}
