package http

import (
	"net"
	"net/http"
	"shortlink-backend/internal/service"
	"shortlink-backend/internal/validation"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RedirectHandler обработчик редиректов
type RedirectHandler struct {
	urlShortener *service.URLShortenerService
	log          *zap.Logger
}

// NewRedirectHandler создает новый обработчик редиректов
func NewRedirectHandler(urlShortener *service.URLShortenerService, log *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		urlShortener: urlShortener,
		log:          log,
	}
}

// HandleRedirect обрабатывает редирект по shortcode
//
//	@Summary		Redirect to the original URL
//	@Description	Records the click and redirects permanently.
//	@Tags			Redirect
//	@Param			shortcode	path	string	true	"Shortcode"
//	@Success		301			"Redirect to the original URL"
//	@Failure		404			{object}	ErrorResponse	"Short URL not found"
//	@Failure		410			{object}	ErrorResponse	"Short URL has expired"
//	@Router			/{shortcode} [get]
func (h *RedirectHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "shortcode")

	// paths like /favicon.ico can never be shortcodes
	if !validation.IsValidShortcode(code) {
		writeJSON(w, r, http.StatusNotFound, notFoundResponse)
		return
	}

	clickCtx := service.ClickContext{
		IP:        extractIPAddress(r),
		Referrer:  r.Referer(),
		UserAgent: r.UserAgent(),
	}

	originalURL, err := h.urlShortener.ResolveAndTrack(r.Context(), code, clickCtx)
	if err != nil {
		if status := writeError(w, r, err, "An error occurred while processing the redirect"); status >= http.StatusInternalServerError {
			h.log.Error("failed to process redirect", zap.String("shortcode", code), zap.Error(err))
		}
		return
	}

	h.log.Debug("redirecting to original url",
		zap.String("shortcode", code),
		zap.String("original_url", originalURL),
		zap.String("ip", clickCtx.IP))

	http.Redirect(w, r, originalURL, http.StatusMovedPermanently)
}

// extractIPAddress извлекает IP адрес из запроса с учетом прокси
func extractIPAddress(r *http.Request) string {
	// X-Forwarded-For может содержать список IP через запятую
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		if first := strings.TrimSpace(strings.Split(ip, ",")[0]); first != "" {
			return first
		}
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	if ip := r.Header.Get("X-Client-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
