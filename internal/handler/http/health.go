package http

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// StorageStatus reports which backend is serving requests.
type StorageStatus interface {
	Current() string
	Pinned() bool
}

// HealthHandler обработчик health checks
type HealthHandler struct {
	storage   StorageStatus
	startedAt time.Time
	log       *zap.Logger
}

// NewHealthHandler создает новый health handler
func NewHealthHandler(storage StorageStatus, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		storage:   storage,
		startedAt: time.Now(),
		log:       log,
	}
}

// HealthResponse структура ответа health check
type HealthResponse struct {
	Status    string  `json:"status" example:"healthy"`
	Timestamp string  `json:"timestamp" example:"2024-05-01T12:00:00.000Z"`
	Uptime    float64 `json:"uptime" example:"42.5"`
	Storage   string  `json:"storage" example:"postgres"`
	Fallback  bool    `json:"fallback"`
}

// Health основной health check endpoint
//
//	@Summary		Health check
//	@Description	Reports liveness, uptime in seconds and the storage backend in use.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/api/health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	// running on the in-memory fallback is degraded but still healthy
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: formatTime(time.Now()),
		Uptime:    time.Since(h.startedAt).Seconds(),
		Storage:   h.storage.Current(),
		Fallback:  h.storage.Pinned(),
	}

	writeJSON(w, r, http.StatusOK, resp)
	h.log.Debug("health check passed", zap.String("storage", resp.Storage))
}
