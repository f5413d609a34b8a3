package http

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"shortlink-backend/internal/service"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// isoMillis is the timestamp format of every API response.
const isoMillis = "2006-01-02T15:04:05.000Z"

// LinksHandler обработчик для работы с короткими ссылками
type LinksHandler struct {
	urlShortener *service.URLShortenerService
	validate     *validator.Validate
	log          *zap.Logger
	baseURL      string
}

// NewLinksHandler создает новый обработчик ссылок
func NewLinksHandler(urlShortener *service.URLShortenerService, log *zap.Logger, baseURL string) *LinksHandler {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &LinksHandler{
		urlShortener: urlShortener,
		validate:     validate,
		log:          log,
		baseURL:      strings.TrimRight(baseURL, "/"),
	}
}

// CreateShortURLRequest структура запроса создания ссылки
type CreateShortURLRequest struct {
	URL       string `json:"url" validate:"required" example:"https://example.com/some/very/long/path"`
	Validity  *int   `json:"validity,omitempty" example:"30"`
	Shortcode string `json:"shortcode,omitempty" example:"promo2024"`
}

// CreateShortURLResponse структура ответа создания ссылки
type CreateShortURLResponse struct {
	Shortlink string `json:"shortlink" example:"http://localhost:8080/abc123"`
	Expiry    string `json:"expiry" example:"2024-05-01T12:30:00.000Z"`
}

// StatsResponse структура ответа статистики
type StatsResponse struct {
	Shortcode       string          `json:"shortcode"`
	OriginalURL     string          `json:"originalUrl"`
	CreatedAt       string          `json:"createdAt"`
	ExpiresAt       string          `json:"expiresAt"`
	ValidityMinutes int             `json:"validityMinutes"`
	IsExpired       bool            `json:"isExpired"`
	ClickCount      int             `json:"clickCount"`
	Clicks          []ClickResponse `json:"clicks"`
}

// ClickResponse is one visit as reported by the statistics endpoint.
type ClickResponse struct {
	Timestamp   string              `json:"timestamp"`
	Referrer    string              `json:"referrer"`
	Geolocation GeolocationResponse `json:"geolocation"`
	Device      DeviceResponse      `json:"device"`
}

type GeolocationResponse struct {
	Country string `json:"country"`
	Region  string `json:"region"`
	City    string `json:"city"`
}

type DeviceResponse struct {
	Type    string `json:"type"`
	Browser string `json:"browser"`
	OS      string `json:"os"`
}

// CreateShortURL создает новую короткую ссылку
//
//	@Summary		Create a short URL
//	@Description	Shortens a URL. Validity is in minutes (default 30, max 525600). A custom shortcode is optional.
//	@Tags			ShortURLs
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateShortURLRequest	true	"Short URL creation request"
//	@Success		201		{object}	CreateShortURLResponse	"Short URL created"
//	@Failure		400		{object}	ErrorResponse			"Invalid URL, validity or shortcode"
//	@Failure		500		{object}	ErrorResponse			"Internal error"
//	@Router			/api/shorturls [post]
func (h *LinksHandler) CreateShortURL(w http.ResponseWriter, r *http.Request) {
	var req CreateShortURLRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		h.log.Debug("invalid create short url request", zap.Error(err))
		writeJSON(w, r, http.StatusBadRequest, invalidBodyResponse)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.log.Warn("missing url in request", zap.Error(err))
		writeJSON(w, r, http.StatusBadRequest, urlRequiredResponse)
		return
	}

	// zero validity means "not set"
	params := service.CreateParams{
		OriginalURL:     req.URL,
		CustomShortcode: req.Shortcode,
	}
	if req.Validity != nil && *req.Validity != 0 {
		params.ValidityMinutes = req.Validity
	}

	url, err := h.urlShortener.CreateShortURL(r.Context(), params)
	if err != nil {
		if status := writeError(w, r, err, "An error occurred while creating the short URL"); status >= http.StatusInternalServerError {
			h.log.Error("failed to create short url", zap.String("original_url", req.URL), zap.Error(err))
		}
		return
	}

	writeJSON(w, r, http.StatusCreated, CreateShortURLResponse{
		Shortlink: h.shortlink(r, url.Shortcode),
		Expiry:    formatTime(url.ExpiresAt),
	})
}

// GetStatistics возвращает статистику переходов по ссылке
//
//	@Summary		Get short URL statistics
//	@Description	Returns the short URL metadata and every recorded click. Expired URLs still report.
//	@Tags			ShortURLs
//	@Produce		json
//	@Param			shortcode	path		string			true	"Shortcode"
//	@Success		200			{object}	StatsResponse	"Statistics"
//	@Failure		404			{object}	ErrorResponse	"Short URL not found"
//	@Failure		500			{object}	ErrorResponse	"Internal error"
//	@Router			/api/shorturls/{shortcode} [get]
func (h *LinksHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "shortcode")

	stats, err := h.urlShortener.GetStatistics(r.Context(), code)
	if err != nil {
		if status := writeError(w, r, err, "An error occurred while retrieving statistics"); status >= http.StatusInternalServerError {
			h.log.Error("failed to get statistics", zap.String("shortcode", code), zap.Error(err))
		}
		return
	}

	writeJSON(w, r, http.StatusOK, toStatsResponse(stats))
}

func (h *LinksHandler) shortlink(r *http.Request, code string) string {
	if h.baseURL != "" {
		return h.baseURL + "/" + code
	}

	// Forwarded headers are not trusted; set base_url when running behind a proxy.
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/" + code
}

func toStatsResponse(stats *service.Stats) StatsResponse {
	clicks := make([]ClickResponse, 0, len(stats.Clicks))
	for _, c := range stats.Clicks {
		clicks = append(clicks, ClickResponse{
			Timestamp: formatTime(c.Timestamp),
			Referrer:  c.Referrer,
			Geolocation: GeolocationResponse{
				Country: c.Country,
				Region:  c.Region,
				City:    c.City,
			},
			Device: DeviceResponse{
				Type:    c.Device.Type,
				Browser: c.Device.Browser,
				OS:      c.Device.OS,
			},
		})
	}

	return StatsResponse{
		Shortcode:       stats.Shortcode,
		OriginalURL:     stats.OriginalURL,
		CreatedAt:       formatTime(stats.CreatedAt),
		ExpiresAt:       formatTime(stats.ExpiresAt),
		ValidityMinutes: stats.ValidityMinutes,
		IsExpired:       stats.IsExpired,
		ClickCount:      stats.ClickCount,
		Clicks:          clicks,
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(isoMillis)
}
