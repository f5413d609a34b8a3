package memory

import (
	"context"
	"shortlink-backend/internal/domain"
	"shortlink-backend/internal/repository"
	"shortlink-backend/pkg/random"
	"sync"
	"time"
)

// Name is reported by MemStorage.Name.
const Name = "memory"

// entry guards a single record; unrelated shortcodes never contend.
type entry struct {
	mu  sync.Mutex
	url *domain.ShortURL
}

// MemStorage is the process-local fallback store. Contents are lost on restart.
type MemStorage struct {
	urls sync.Map // shortcode -> *entry
}

func New() *MemStorage {
	return &MemStorage{}
}

func (s *MemStorage) Name() string {
	return Name
}

func (s *MemStorage) Save(_ context.Context, url *domain.ShortURL) (*domain.ShortURL, error) {
	stored := url.Clone()
	if stored.ID == "" {
		id, err := random.NewID()
		if err != nil {
			return nil, err
		}
		stored.ID = id
	}
	if stored.Clicks == nil {
		stored.Clicks = []domain.Click{}
	}

	// LoadOrStore makes check-and-insert a single atomic step per shortcode.
	if _, loaded := s.urls.LoadOrStore(stored.Shortcode, &entry{url: stored}); loaded {
		return nil, repository.ErrShortcodeExists
	}

	return stored.Clone(), nil
}

func (s *MemStorage) FindByShortcode(_ context.Context, shortcode string) (*domain.ShortURL, error) {
	e, ok := s.load(shortcode)
	if !ok {
		return nil, repository.ErrShortcodeNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.url.Clone(), nil
}

func (s *MemStorage) AppendClick(_ context.Context, shortcode string, click domain.Click) (*domain.ShortURL, error) {
	e, ok := s.load(shortcode)
	if !ok {
		return nil, repository.ErrShortcodeNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.url.Clicks = append(e.url.Clicks, click)
	return e.url.Clone(), nil
}

func (s *MemStorage) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var deleted int64
	s.urls.Range(func(key, value any) bool {
		e := value.(*entry)

		e.mu.Lock()
		expired := e.url.ExpiresAt.Before(now)
		e.mu.Unlock()

		if expired && s.urls.CompareAndDelete(key, value) {
			deleted++
		}
		return true
	})
	return deleted, nil
}

// Len returns the number of stored records.
func (s *MemStorage) Len() int {
	n := 0
	s.urls.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (s *MemStorage) load(shortcode string) (*entry, bool) {
	v, ok := s.urls.Load(shortcode)
	if !ok {
		return nil, false
	}
	return v.(*entry), true
}
