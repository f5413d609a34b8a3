// Package sweeper periodically deletes expired short URLs.
package sweeper

import (
	"context"
	"shortlink-backend/internal/config"
	"time"

	"go.uber.org/zap"
)

const defaultInterval = time.Minute

// Cleaner deletes expired records and reports how many were removed.
type Cleaner interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Locker grants a lease on key for ttl to at most one caller.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type Sweeper struct {
	cleaner  Cleaner
	locker   Locker
	interval time.Duration
	lockKey  string
	lockTTL  time.Duration
	log      *zap.Logger
}

// New creates a sweeper. With a nil locker every tick sweeps.
func New(cleaner Cleaner, locker Locker, cfg config.Sweeper, log *zap.Logger) *Sweeper {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	lockTTL := cfg.LockTTL
	if lockTTL <= 0 || lockTTL >= interval {
		// the lease must lapse before the next tick
		lockTTL = interval * 5 / 6
	}

	return &Sweeper{
		cleaner:  cleaner,
		locker:   locker,
		interval: interval,
		lockKey:  cfg.LockKey,
		lockTTL:  lockTTL,
		log:      log,
	}
}

// Run sweeps once immediately and then every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	s.log.Info("expiry sweeper started",
		zap.Duration("interval", s.interval),
		zap.Bool("distributed_lock", s.locker != nil))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("expiry sweeper stopped")
			return nil
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep if this instance wins the lock.
// It reports whether a sweep was attempted.
func (s *Sweeper) RunOnce(ctx context.Context) bool {
	if s.locker != nil {
		ok, err := s.locker.TryLock(ctx, s.lockKey, s.lockTTL)
		if err != nil {
			s.log.Warn("failed to acquire sweep lock, skipping", zap.String("key", s.lockKey), zap.Error(err))
			return false
		}
		if !ok {
			s.log.Debug("sweep lock held by another instance", zap.String("key", s.lockKey))
			return false
		}
	}

	deleted, err := s.cleaner.SweepExpired(ctx)
	if err != nil {
		s.log.Error("expiry sweep failed", zap.Error(err))
		return true
	}

	s.log.Debug("expiry sweep finished", zap.Int64("deleted", deleted))
	return true
}
