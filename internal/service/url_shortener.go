package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"shortlink-backend/internal/config"
	"shortlink-backend/internal/domain"
	"shortlink-backend/internal/metrics"
	"shortlink-backend/internal/repository"
	"shortlink-backend/internal/validation"
	"shortlink-backend/pkg/geo"
	"shortlink-backend/pkg/random"
	"shortlink-backend/pkg/useragent"
	"time"

	"go.uber.org/zap"
)

const (
	defaultValidityMinutes = 30
	maxValidityMinutes     = 525600
	defaultCodeLength      = 6
	defaultMaxAttempts     = 10
)

// StorageProvider hands out the backend that should serve a call.
type StorageProvider interface {
	Active(ctx context.Context) repository.Storage
}

// GeoLocator resolves public IP addresses to a location.
type GeoLocator interface {
	Lookup(ip net.IP) (*geo.Location, bool)
}

// DeviceParser classifies User-Agent strings.
type DeviceParser interface {
	ParseUserAgent(userAgent string) useragent.DeviceInfo
}

// CreateParams is the input of CreateShortURL.
// A nil ValidityMinutes selects the default validity.
type CreateParams struct {
	OriginalURL     string
	ValidityMinutes *int
	CustomShortcode string
}

// ClickContext carries the request attributes recorded for a visit.
type ClickContext struct {
	IP        string
	Referrer  string
	UserAgent string
}

type URLShortenerService struct {
	storage StorageProvider
	geo     GeoLocator
	devices DeviceParser
	config  config.URLShortener
	log     *zap.Logger

	now      func() time.Time
	generate func(length int) (string, error)
}

// NewURLShortener creates the service. locator and devices may be nil; clicks then carry Unknown values.
func NewURLShortener(storage StorageProvider, locator GeoLocator, devices DeviceParser, cfg *config.URLShortener, log *zap.Logger) *URLShortenerService {
	c := *cfg
	if c.DefaultValidity <= 0 {
		c.DefaultValidity = defaultValidityMinutes
	}
	if c.MaxValidity <= 0 || c.MaxValidity > maxValidityMinutes {
		c.MaxValidity = maxValidityMinutes
	}
	if c.InitialCodeLength <= 0 {
		c.InitialCodeLength = defaultCodeLength
	}
	if c.MaxGenerationAttempts <= 0 {
		c.MaxGenerationAttempts = defaultMaxAttempts
	}

	return &URLShortenerService{
		storage:  storage,
		geo:      locator,
		devices:  devices,
		config:   c,
		log:      log,
		now:      time.Now,
		generate: random.NewRandomString,
	}
}

// CreateShortURL validates params and persists a new short URL.
func (s *URLShortenerService) CreateShortURL(ctx context.Context, params CreateParams) (*domain.ShortURL, error) {
	if !validation.IsValidURL(params.OriginalURL) {
		s.log.Warn("invalid url provided", zap.String("original_url", params.OriginalURL))
		return nil, ErrInvalidURL
	}

	validity := s.config.DefaultValidity
	if params.ValidityMinutes != nil {
		validity = *params.ValidityMinutes
	}
	if validity < 1 || validity > s.config.MaxValidity {
		s.log.Warn("invalid validity period", zap.Int("validity", validity))
		return nil, &ValidityRangeError{Max: s.config.MaxValidity}
	}

	now := s.now().UTC()
	url := &domain.ShortURL{
		OriginalURL:     params.OriginalURL,
		CreatedAt:       now,
		ExpiresAt:       now.Add(time.Duration(validity) * time.Minute),
		ValidityMinutes: validity,
		IsActive:        true,
	}

	storage := s.storage.Active(ctx)

	var (
		saved *domain.ShortURL
		err   error
	)
	if params.CustomShortcode != "" {
		saved, err = s.saveCustom(ctx, storage, url, params.CustomShortcode)
	} else {
		saved, err = s.saveGenerated(ctx, storage, url)
	}
	if err != nil {
		return nil, err
	}

	metrics.ShortURLsCreated.Inc()
	s.log.Info("short url created",
		zap.String("shortcode", saved.Shortcode),
		zap.String("original_url", saved.OriginalURL),
		zap.Time("expires_at", saved.ExpiresAt),
		zap.Int("validity", saved.ValidityMinutes),
		zap.String("storage", storage.Name()))

	return saved, nil
}

func (s *URLShortenerService) saveCustom(ctx context.Context, storage repository.Storage, url *domain.ShortURL, custom string) (*domain.ShortURL, error) {
	code := validation.SanitizeShortcode(custom)
	if !validation.IsValidShortcode(code) {
		s.log.Warn("invalid custom shortcode format", zap.String("custom", custom), zap.String("sanitized", code))
		return nil, ErrInvalidShortcode
	}

	_, err := storage.FindByShortcode(ctx, code)
	switch {
	case err == nil:
		s.log.Warn("shortcode already exists", zap.String("shortcode", code))
		return nil, ErrShortcodeTaken
	case !errors.Is(err, repository.ErrShortcodeNotFound):
		return nil, fmt.Errorf("failed to check shortcode existence: %w", err)
	}

	url.Shortcode = code
	saved, err := storage.Save(ctx, url)
	if errors.Is(err, repository.ErrShortcodeExists) {
		// lost the race to a concurrent request for the same code
		s.log.Warn("shortcode taken concurrently", zap.String("shortcode", code))
		return nil, ErrShortcodeTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save short url: %w", err)
	}
	return saved, nil
}

// saveGenerated grows the code by one character per collision.
func (s *URLShortenerService) saveGenerated(ctx context.Context, storage repository.Storage, url *domain.ShortURL) (*domain.ShortURL, error) {
	for attempt := 0; attempt < s.config.MaxGenerationAttempts; attempt++ {
		length := s.config.InitialCodeLength + attempt
		if length > validation.MaxShortcodeLength {
			break
		}

		code, err := s.generate(length)
		if err != nil {
			return nil, fmt.Errorf("failed to generate shortcode: %w", err)
		}

		_, err = storage.FindByShortcode(ctx, code)
		if err == nil {
			s.log.Debug("generated shortcode collision", zap.String("shortcode", code), zap.Int("attempt", attempt+1))
			continue
		}
		if !errors.Is(err, repository.ErrShortcodeNotFound) {
			return nil, fmt.Errorf("failed to check shortcode existence: %w", err)
		}

		candidate := *url
		candidate.Shortcode = code
		saved, err := storage.Save(ctx, &candidate)
		if errors.Is(err, repository.ErrShortcodeExists) {
			s.log.Debug("generated shortcode taken on save", zap.String("shortcode", code), zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to save short url: %w", err)
		}
		return saved, nil
	}

	s.log.Error("unable to generate unique shortcode", zap.Int("attempts", s.config.MaxGenerationAttempts))
	return nil, ErrGenerationExhausted
}

// ResolveAndTrack returns the original URL for code and records the visit.
// A failure to record the click never fails the redirect.
func (s *URLShortenerService) ResolveAndTrack(ctx context.Context, code string, clickCtx ClickContext) (string, error) {
	storage := s.storage.Active(ctx)

	url, err := storage.FindByShortcode(ctx, code)
	if errors.Is(err, repository.ErrShortcodeNotFound) {
		metrics.Redirects.WithLabelValues("not_found").Inc()
		s.log.Warn("shortcode not found", zap.String("shortcode", code))
		return "", ErrNotFound
	}
	if err != nil {
		metrics.Redirects.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to find short url: %w", err)
	}

	now := s.now().UTC()
	if url.IsExpired(now) {
		metrics.Redirects.WithLabelValues("expired").Inc()
		s.log.Warn("shortcode expired", zap.String("shortcode", code), zap.Time("expires_at", url.ExpiresAt))
		return "", ErrExpired
	}

	click := s.buildClick(now, clickCtx)
	updated, err := storage.AppendClick(ctx, code, click)
	if err != nil {
		metrics.ClicksTracked.WithLabelValues("failed").Inc()
		s.log.Error("failed to track click", zap.String("shortcode", code), zap.Error(err))
	} else {
		metrics.ClicksTracked.WithLabelValues("ok").Inc()
		s.log.Info("click tracked",
			zap.String("shortcode", code),
			zap.String("referrer", click.Referrer),
			zap.String("country", click.Geolocation.Country),
			zap.String("device", click.Device.Type),
			zap.Int("total_clicks", updated.ClickCount()))
	}

	metrics.Redirects.WithLabelValues("ok").Inc()
	return url.OriginalURL, nil
}

// GetStatistics returns the access summary for code. Expired URLs still report.
func (s *URLShortenerService) GetStatistics(ctx context.Context, code string) (*Stats, error) {
	url, err := s.storage.Active(ctx).FindByShortcode(ctx, code)
	if errors.Is(err, repository.ErrShortcodeNotFound) {
		s.log.Warn("shortcode not found for statistics", zap.String("shortcode", code))
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find short url: %w", err)
	}

	stats := newStats(url, s.now().UTC())
	s.log.Debug("statistics retrieved", zap.String("shortcode", code), zap.Int("total_clicks", stats.ClickCount))
	return stats, nil
}

// SweepExpired deletes every short URL whose expiry has passed.
func (s *URLShortenerService) SweepExpired(ctx context.Context) (int64, error) {
	storage := s.storage.Active(ctx)

	deleted, err := storage.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired short urls: %w", err)
	}

	metrics.ExpiredSwept.Add(float64(deleted))
	if deleted > 0 {
		s.log.Info("expired short urls cleaned up", zap.Int64("deleted", deleted), zap.String("storage", storage.Name()))
	}
	return deleted, nil
}
