package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const defaultPingTimeout = 2 * time.Second

// Selector decides which backend serves a call.
//
// The durable store is used while it answers Ping. The first time it is
// absent or unreachable a volatile store is created and pinned for the rest
// of the process lifetime; there is no switching back.
type Selector struct {
	durable     Durable
	newFallback func() Storage
	pingTimeout time.Duration
	log         *zap.Logger

	once       sync.Once
	pinned     atomic.Bool
	fallback   Storage
	onFallback []func(name string)
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithPingTimeout bounds each readiness probe of the durable store.
func WithPingTimeout(d time.Duration) SelectorOption {
	return func(s *Selector) {
		if d > 0 {
			s.pingTimeout = d
		}
	}
}

// OnFallback registers a hook called once, with the fallback backend name, when the selector pins it.
func OnFallback(fn func(name string)) SelectorOption {
	return func(s *Selector) {
		s.onFallback = append(s.onFallback, fn)
	}
}

// NewSelector creates a selector. durable may be nil, in which case the fallback is used from the first call.
func NewSelector(durable Durable, newFallback func() Storage, log *zap.Logger, opts ...SelectorOption) *Selector {
	s := &Selector{
		durable:     durable,
		newFallback: newFallback,
		pingTimeout: defaultPingTimeout,
		log:         log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Active returns the backend that should serve the current call.
func (s *Selector) Active(ctx context.Context) Storage {
	if s.pinned.Load() {
		return s.fallback
	}

	if s.durable != nil {
		// A caller that goes away must not look like a database outage.
		pingCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.pingTimeout)
		err := s.durable.Ping(pingCtx)
		cancel()
		if err == nil {
			return s.durable
		}
		s.log.Warn("durable storage is not ready",
			zap.String("backend", s.durable.Name()),
			zap.Error(err))
	}

	s.once.Do(func() {
		s.fallback = s.newFallback()
		s.pinned.Store(true)

		durableName := "none"
		if s.durable != nil {
			durableName = s.durable.Name()
		}
		s.log.Warn("switching to fallback storage for the rest of the process lifetime",
			zap.String("durable", durableName),
			zap.String("fallback", s.fallback.Name()))

		for _, fn := range s.onFallback {
			fn(s.fallback.Name())
		}
	})

	return s.fallback
}

// Current reports the name of the backend in use without probing the durable store.
func (s *Selector) Current() string {
	if s.pinned.Load() {
		return s.fallback.Name()
	}
	if s.durable == nil {
		return "none"
	}
	return s.durable.Name()
}

// Pinned reports whether the selector has fallen back to the volatile store.
func (s *Selector) Pinned() bool {
	return s.pinned.Load()
}
