package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"shortlink-backend/internal/config"
	"shortlink-backend/internal/domain"
	"shortlink-backend/internal/repository"
	"shortlink-backend/internal/repository/memory"
	"shortlink-backend/internal/service"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

const isoMillisPattern = `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`

type ServerTestSuite struct {
	suite.Suite
	store    *memory.MemStorage
	selector *repository.Selector
	server   *httptest.Server
	e        *httpexpect.Expect
}

func TestServer(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func newExpect(t *testing.T, baseURL string) *httpexpect.Expect {
	return httpexpect.WithConfig(httpexpect.Config{
		BaseURL:  baseURL,
		Reporter: httpexpect.NewAssertReporter(t),
		Client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	})
}

func newTestServer(selector *repository.Selector, baseURL string) *httptest.Server {
	log := zap.NewNop()
	urlShortener := service.NewURLShortener(selector, nil, nil, &config.URLShortener{}, log)
	srv := NewServer(urlShortener, selector, Options{BaseURL: baseURL}, log)
	return httptest.NewServer(srv.SetupRoutes())
}

func (s *ServerTestSuite) SetupTest() {
	s.store = memory.New()
	s.selector = repository.NewSelector(nil, func() repository.Storage { return s.store }, zap.NewNop())
	s.selector.Active(context.Background())

	s.server = newTestServer(s.selector, "http://sho.rt/")
	s.e = newExpect(s.T(), s.server.URL)
}

func (s *ServerTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *ServerTestSuite) saveURL(code string, expiresAt time.Time) {
	_, err := s.store.Save(context.Background(), &domain.ShortURL{
		Shortcode:       code,
		OriginalURL:     "https://example.com/" + code,
		CreatedAt:       expiresAt.Add(-time.Hour),
		ExpiresAt:       expiresAt,
		ValidityMinutes: 60,
		IsActive:        true,
	})
	s.Require().NoError(err)
}

func (s *ServerTestSuite) TestCreateShortURL() {
	const path = "/api/shorturls"

	s.Run("generated shortcode", func() {
		before := time.Now().UTC()

		resp := s.e.POST(path).
			WithJSON(map[string]interface{}{"url": "https://example.com/very/long/path"}).
			Expect().
			Status(http.StatusCreated).
			JSON().Object()

		resp.Value("shortlink").String().HasPrefix("http://sho.rt/")
		resp.Value("expiry").String().Match(isoMillisPattern)

		expiry, err := time.Parse(isoMillis, resp.Value("expiry").String().Raw())
		s.Require().NoError(err)
		s.WithinDuration(before.Add(30*time.Minute), expiry, 5*time.Second)
	})

	s.Run("custom shortcode and validity", func() {
		s.e.POST(path).
			WithJSON(map[string]interface{}{"url": "https://example.com", "validity": 120, "shortcode": "promo"}).
			Expect().
			Status(http.StatusCreated).
			JSON().Object().
			HasValue("shortlink", "http://sho.rt/promo")

		s.e.POST(path).
			WithJSON(map[string]interface{}{"url": "https://other.com", "shortcode": "promo"}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			HasValue("error", "Bad Request").
			HasValue("message", service.ErrShortcodeTaken.Error())
	})

	s.Run("zero validity uses default", func() {
		before := time.Now().UTC()

		raw := s.e.POST(path).
			WithJSON(map[string]interface{}{"url": "https://example.com", "validity": 0}).
			Expect().
			Status(http.StatusCreated).
			JSON().Object().Value("expiry").String().Raw()

		expiry, err := time.Parse(isoMillis, raw)
		s.Require().NoError(err)
		s.WithinDuration(before.Add(30*time.Minute), expiry, 5*time.Second)
	})

	s.Run("missing url", func() {
		s.e.POST(path).
			WithJSON(map[string]interface{}{"validity": 10}).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			HasValue("error", "URL is required").
			HasValue("message", "Please provide a valid URL to shorten")
	})

	s.Run("empty body", func() {
		s.e.POST(path).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			HasValue("error", "URL is required")
	})

	s.Run("malformed body", func() {
		s.e.POST(path).
			WithHeader("Content-Type", "application/json").
			WithText(`{"url": `).
			Expect().
			Status(http.StatusBadRequest).
			JSON().Object().
			HasValue("error", "Bad Request")
	})

	s.Run("service validation errors", func() {
		tests := []struct {
			body    map[string]interface{}
			message string
		}{
			{map[string]interface{}{"url": "not-a-url"}, service.ErrInvalidURL.Error()},
			{map[string]interface{}{"url": "https://example.com", "validity": -1}, service.ErrInvalidValidity.Error()},
			{map[string]interface{}{"url": "https://example.com", "validity": 525601}, service.ErrInvalidValidity.Error()},
			{map[string]interface{}{"url": "https://example.com", "shortcode": "@@@"}, service.ErrInvalidShortcode.Error()},
		}

		for _, tt := range tests {
			s.e.POST(path).
				WithJSON(tt.body).
				Expect().
				Status(http.StatusBadRequest).
				JSON().Object().
				HasValue("error", "Bad Request").
				HasValue("message", tt.message)
		}
	})
}

func (s *ServerTestSuite) TestShortlinkFromRequestHost() {
	server := newTestServer(s.selector, "")
	defer server.Close()

	e := newExpect(s.T(), server.URL)
	e.POST("/api/shorturls").
		WithJSON(map[string]interface{}{"url": "https://example.com", "shortcode": "hostbased"}).
		Expect().
		Status(http.StatusCreated).
		JSON().Object().
		HasValue("shortlink", server.URL+"/hostbased")

	// forwarded scheme is not trusted
	e.POST("/api/shorturls").
		WithHeader("X-Forwarded-Proto", "https").
		WithJSON(map[string]interface{}{"url": "https://example.com", "shortcode": "forwarded"}).
		Expect().
		Status(http.StatusCreated).
		JSON().Object().
		HasValue("shortlink", server.URL+"/forwarded")
}

func (s *ServerTestSuite) TestRedirect() {
	s.Run("success", func() {
		s.saveURL("go", time.Now().Add(time.Hour))

		s.e.GET("/go").
			Expect().
			Status(http.StatusMovedPermanently).
			Header("Location").IsEqual("https://example.com/go")
	})

	s.Run("not found", func() {
		s.e.GET("/missing").
			Expect().
			Status(http.StatusNotFound).
			JSON().Object().
			HasValue("error", "Not Found").
			HasValue("message", "Short URL not found")
	})

	s.Run("expired", func() {
		s.saveURL("gone", time.Now().Add(-time.Minute))

		s.e.GET("/gone").
			Expect().
			Status(http.StatusGone).
			JSON().Object().
			HasValue("error", "Gone").
			HasValue("message", "Short URL has expired")
	})

	s.Run("not a shortcode", func() {
		s.e.GET("/favicon.ico").
			Expect().
			Status(http.StatusNotFound).
			JSON().Object().
			HasValue("error", "Not Found")
	})
}

func (s *ServerTestSuite) TestGetStatistics() {
	s.Run("not found", func() {
		s.e.GET("/api/shorturls/missing").
			Expect().
			Status(http.StatusNotFound).
			JSON().Object().
			HasValue("message", "Short URL not found")
	})

	s.Run("clicks are reported without coordinates", func() {
		s.saveURL("tracked", time.Now().Add(time.Hour))

		s.e.GET("/tracked").
			WithHeader("Referer", "https://news.example.org/post/1").
			WithHeader("X-Forwarded-For", "10.1.2.3, 172.16.0.1").
			Expect().
			Status(http.StatusMovedPermanently)
		s.e.GET("/tracked").
			Expect().
			Status(http.StatusMovedPermanently)

		obj := s.e.GET("/api/shorturls/tracked").
			Expect().
			Status(http.StatusOK).
			JSON().Object()

		obj.HasValue("shortcode", "tracked").
			HasValue("originalUrl", "https://example.com/tracked").
			HasValue("validityMinutes", 60).
			HasValue("isExpired", false).
			HasValue("clickCount", 2)
		obj.Value("createdAt").String().Match(isoMillisPattern)
		obj.Value("expiresAt").String().Match(isoMillisPattern)

		clicks := obj.Value("clicks").Array()
		clicks.Length().IsEqual(2)

		first := clicks.Value(0).Object()
		first.HasValue("referrer", "news.example.org")
		first.Value("timestamp").String().Match(isoMillisPattern)
		first.Value("geolocation").Object().
			IsEqual(map[string]interface{}{"country": "Unknown", "region": "Unknown", "city": "Unknown"})
		first.NotContainsKey("coordinates")
		first.NotContainsKey("sourceIP")

		clicks.Value(1).Object().HasValue("referrer", "direct")

		stored, err := s.store.FindByShortcode(context.Background(), "tracked")
		s.Require().NoError(err)
		s.Equal("10.1.2.3", stored.Clicks[0].SourceIP)
	})

	s.Run("expired urls still report", func() {
		s.saveURL("stale", time.Now().Add(-time.Minute))

		s.e.GET("/api/shorturls/stale").
			Expect().
			Status(http.StatusOK).
			JSON().Object().
			HasValue("isExpired", true).
			HasValue("clickCount", 0).
			Value("clicks").Array().IsEmpty()
	})
}

func (s *ServerTestSuite) TestHealth() {
	obj := s.e.GET("/api/health").
		Expect().
		Status(http.StatusOK).
		JSON().Object()

	obj.HasValue("status", "healthy").
		HasValue("storage", memory.Name).
		HasValue("fallback", true)
	obj.Value("uptime").Number().Ge(0)
	obj.Value("timestamp").String().Match(isoMillisPattern)
}

func (s *ServerTestSuite) TestUnknownRoutes() {
	s.e.GET("/api/unknown").
		Expect().
		Status(http.StatusNotFound).
		JSON().Object().
		HasValue("error", "Not Found").
		HasValue("message", "The requested resource was not found")

	s.e.GET("/").
		Expect().
		Status(http.StatusNotFound).
		JSON().Object().
		HasValue("error", "Not Found")

	s.e.DELETE("/api/shorturls/abc").
		Expect().
		Status(http.StatusMethodNotAllowed)
}

func (s *ServerTestSuite) TestMetrics() {
	s.e.GET("/api/health").Expect().Status(http.StatusOK)

	s.e.GET("/metrics").
		Expect().
		Status(http.StatusOK).
		Body().Contains("http_requests_total")
}

func (s *ServerTestSuite) TestCORS() {
	s.e.OPTIONS("/api/shorturls").
		WithHeader("Origin", "https://app.example.com").
		WithHeader("Access-Control-Request-Method", http.MethodPost).
		Expect().
		Header("Access-Control-Allow-Origin").IsEqual("*")
}

func TestRecoverer(t *testing.T) {
	handler := recoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("database password is hunter2")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error","message":"Something went wrong"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestExtractIPAddress(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded for first entry", headers: map[string]string{"X-Forwarded-For": " 8.8.8.8 , 10.0.0.1"}, remote: "1.1.1.1:1234", want: "8.8.8.8"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "9.9.9.9"}, remote: "1.1.1.1:1234", want: "9.9.9.9"},
		{name: "client ip", headers: map[string]string{"X-Client-IP": "4.4.4.4"}, remote: "1.1.1.1:1234", want: "4.4.4.4"},
		{name: "remote addr", remote: "1.1.1.1:1234", want: "1.1.1.1"},
		{name: "remote addr without port", remote: "1.1.1.1", want: "1.1.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			require.Equal(t, tt.want, extractIPAddress(r))
		})
	}
}
