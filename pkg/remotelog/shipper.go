// Package remotelog ships log entries to an HTTP collector without ever blocking the caller.
// Entries that cannot be delivered are written to a local fallback logger instead.
package remotelog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Entry is the JSON body posted to the collector.
type Entry struct {
	Stack   string `json:"stack"`
	Level   string `json:"level"`
	Package string `json:"package"`
	Message string `json:"message"`
}

// Config holds configuration for the shipper
type Config struct {
	URL             string        // Collector endpoint
	Timeout         time.Duration // Per-request timeout
	WorkerCount     int           // Number of worker goroutines
	BufferSize      int           // Size of the entry queue
	RetryAttempts   int           // Attempts per entry before falling back
	RetryDelay      time.Duration // Base delay between retries
	ShutdownTimeout time.Duration // Time to drain the queue on Stop
}

// DefaultConfig returns the defaults used for unset fields
func DefaultConfig() Config {
	return Config{
		Timeout:         5 * time.Second,
		WorkerCount:     2,
		BufferSize:      256,
		RetryAttempts:   1,
		RetryDelay:      200 * time.Millisecond,
		ShutdownTimeout: 10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = d.WorkerCount
	}
	if c.BufferSize <= 0 {
		c.BufferSize = d.BufferSize
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = d.RetryAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = d.RetryDelay
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	return c
}

// Shipper delivers entries asynchronously with a bounded queue.
type Shipper struct {
	config   Config
	client   *http.Client
	fallback *zap.Logger
	queue    chan Entry
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	stopped  bool
	mu       sync.RWMutex
}

// New creates a shipper. fallback must be a logger that does not itself ship remotely.
func New(cfg Config, fallback *zap.Logger) *Shipper {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	return &Shipper{
		config:   cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		fallback: fallback,
		queue:    make(chan Entry, cfg.BufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the workers.
func (s *Shipper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("shipper already started")
	}
	if s.stopped {
		return fmt.Errorf("shipper cannot be restarted")
	}

	for i := 0; i < s.config.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker()
	}

	s.started = true
	return nil
}

// Stop stops accepting entries and drains the queue, giving up after ShutdownTimeout.
func (s *Shipper) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return fmt.Errorf("shipper not started")
	}
	s.started = false
	s.stopped = true
	close(s.queue)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-time.After(s.config.ShutdownTimeout):
		s.cancel()
		<-done
		return fmt.Errorf("shutdown timeout reached, pending entries written locally")
	}
}

// Record enqueues an entry and returns immediately. Labels are free-form and lower-cased.
func (s *Shipper) Record(stack, level, pkg, message string) {
	e := Entry{
		Stack:   strings.ToLower(stack),
		Level:   strings.ToLower(level),
		Package: strings.ToLower(pkg),
		Message: message,
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		s.writeLocal(e, fmt.Errorf("shipper not started"))
		return
	}

	select {
	case s.queue <- e:
	default:
		s.writeLocal(e, fmt.Errorf("queue is full"))
	}
}

func (s *Shipper) worker() {
	defer s.wg.Done()

	for e := range s.queue {
		s.sendWithRetry(e)
	}
}

func (s *Shipper) sendWithRetry(e Entry) {
	var lastErr error

	for attempt := 1; attempt <= s.config.RetryAttempts; attempt++ {
		if lastErr = s.send(e); lastErr == nil {
			return
		}
		if attempt == s.config.RetryAttempts {
			break
		}

		// Exponential backoff delay
		delay := s.config.RetryDelay * time.Duration(1<<(attempt-1))
		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			s.writeLocal(e, s.ctx.Err())
			return
		}
	}

	s.writeLocal(e, lastErr)
}

func (s *Shipper) send(e Entry) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post entry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("collector responded with status %d", resp.StatusCode)
	}
	return nil
}

// writeLocal is the silent degradation path; it never reports back to the caller.
func (s *Shipper) writeLocal(e Entry, reason error) {
	lvl, err := zapcore.ParseLevel(e.Level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	// never let a fatal/panic entry terminate the process from here
	if lvl > zapcore.ErrorLevel {
		lvl = zapcore.ErrorLevel
	}

	if ce := s.fallback.Check(lvl, e.Message); ce != nil {
		ce.Write(
			zap.String("stack", e.Stack),
			zap.String("package", e.Package),
			zap.NamedError("remote_error", reason),
		)
	}
}
