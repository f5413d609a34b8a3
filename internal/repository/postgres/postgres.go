package postgres

import (
	"context"
	"errors"
	"fmt"
	"shortlink-backend/internal/domain"
	"shortlink-backend/internal/repository"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Name is reported by PostgresStorage.Name.
const Name = "postgres"

// PostgresStorage реализует интерфейс repository.Durable для PostgreSQL
type PostgresStorage struct {
	db  *gorm.DB
	log *zap.Logger
}

// New создает новый экземпляр PostgreSQL storage
func New(db *gorm.DB, log *zap.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:  db,
		log: log,
	}
}

func (s *PostgresStorage) Name() string {
	return Name
}

// Ping проверяет доступность базы данных
func (s *PostgresStorage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// Save сохраняет новую ссылку; уникальность shortcode гарантирует индекс
func (s *PostgresStorage) Save(ctx context.Context, url *domain.ShortURL) (*domain.ShortURL, error) {
	m := fromDomain(url)

	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, repository.ErrShortcodeExists
		}
		s.log.Error("failed to save short url", zap.String("shortcode", url.Shortcode), zap.Error(err))
		return nil, fmt.Errorf("failed to save short url: %w", err)
	}

	s.log.Debug("saved new short url", zap.String("shortcode", m.Shortcode), zap.Int64("id", m.ID))
	return m.toDomain(), nil
}

// FindByShortcode получает ссылку вместе с кликами в порядке записи
func (s *PostgresStorage) FindByShortcode(ctx context.Context, shortcode string) (*domain.ShortURL, error) {
	m, err := s.find(s.db.WithContext(ctx), shortcode)
	if err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

// AppendClick записывает клик под блокировкой строки ссылки,
// поэтому клики одного shortcode сохраняются в порядке обработки
func (s *PostgresStorage) AppendClick(ctx context.Context, shortcode string, click domain.Click) (*domain.ShortURL, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var m shortURLModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("shortcode = ?", shortcode).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		tx.Rollback()
		return nil, repository.ErrShortcodeNotFound
	}
	if err != nil {
		tx.Rollback()
		s.log.Error("failed to lock short url for click recording", zap.String("shortcode", shortcode), zap.Error(err))
		return nil, fmt.Errorf("failed to get short url: %w", err)
	}

	if err := tx.Create(clickFromDomain(m.ID, click)).Error; err != nil {
		tx.Rollback()
		s.log.Error("failed to create click record", zap.String("shortcode", shortcode), zap.Error(err))
		return nil, fmt.Errorf("failed to create click: %w", err)
	}

	updated, err := s.find(tx, shortcode)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		s.log.Error("failed to commit click transaction", zap.String("shortcode", shortcode), zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return updated.toDomain(), nil
}

// DeleteExpired удаляет просроченные ссылки и их клики одной транзакцией
func (s *PostgresStorage) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var deleted int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expiredIDs := tx.Model(&shortURLModel{}).Select("id").Where("expires_at < ?", now)

		if err := tx.Where("short_url_id IN (?)", expiredIDs).Delete(&clickModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete clicks of expired urls: %w", err)
		}

		res := tx.Where("expires_at < ?", now).Delete(&shortURLModel{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete expired urls: %w", res.Error)
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		s.log.Error("failed to sweep expired short urls", zap.Error(err))
		return 0, err
	}

	return deleted, nil
}

func (s *PostgresStorage) find(db *gorm.DB, shortcode string) (*shortURLModel, error) {
	var m shortURLModel

	err := db.Preload("Clicks", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Where("shortcode = ?", shortcode).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrShortcodeNotFound
	}
	if err != nil {
		s.log.Error("failed to get short url", zap.String("shortcode", shortcode), zap.Error(err))
		return nil, fmt.Errorf("failed to get short url: %w", err)
	}

	return &m, nil
}
