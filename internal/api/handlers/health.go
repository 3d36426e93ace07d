package handlers

import (
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db        *gorm.DB
	redis     *redis.Client
	inspector *asynq.Inspector
}

func NewHealthHandler(db *gorm.DB, redis *redis.Client, inspector *asynq.Inspector) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, inspector: inspector}
}

type QueueStats struct {
	Pending int `json:"pending"`
	Active  int `json:"active"`
	Retry   int `json:"retry"`
}

type HealthResponse struct {
	Status   string                `json:"status"`
	Services map[string]string     `json:"services"`
	Queues   map[string]QueueStats `json:"queues,omitempty"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	services := make(map[string]string)
	status := "healthy"

	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.Ping() != nil {
		services["database"] = "unhealthy"
		status = "unhealthy"
	} else {
		services["database"] = "healthy"
	}

	// Redis only backs the task queue and throttling; the API itself
	// stays usable without it, so it never flips the overall status.
	if h.redis != nil {
		if err := h.redis.Ping(r.Context()).Err(); err != nil {
			services["redis"] = "unhealthy"
		} else {
			services["redis"] = "healthy"
		}
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, HealthResponse{
		Status:   status,
		Services: services,
		Queues:   h.queueStats(),
	})
}

// queueStats reports task backlog per queue. Like Redis itself it is
// informational only and never flips the overall status.
func (h *HealthHandler) queueStats() map[string]QueueStats {
	if h.inspector == nil {
		return nil
	}

	stats := make(map[string]QueueStats)
	for _, queue := range []string{"critical", "default", "low"} {
		info, err := h.inspector.GetQueueInfo(queue)
		if err != nil {
			continue
		}
		stats[queue] = QueueStats{
			Pending: info.Pending,
			Active:  info.Active,
			Retry:   info.Retry,
		}
	}
	if len(stats) == 0 {
		return nil
	}
	return stats
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
