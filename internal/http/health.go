package http

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/memberimport/internal/database"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	db      *database.Database
	queue   *sql.DB
	version string
}

// NewHealthController creates the controller. queue is the task queue
// database and may be nil when the queue is disabled.
func NewHealthController(db *database.Database, queue *sql.DB, version string) *HealthController {
	return &HealthController{
		db:      db,
		queue:   queue,
		version: version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	healthy := true

	if h.db != nil {
		sqlDB, err := h.db.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		healthy = record(checks, "database", err) && healthy
	} else {
		checks["database"] = "not configured"
	}

	if h.queue != nil {
		healthy = record(checks, "task_queue", h.queue.PingContext(c.Request.Context())) && healthy
	} else {
		checks["task_queue"] = "disabled"
	}

	health := HealthResponse{
		Status:  "healthy",
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if !healthy {
		health.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}

func (h *HealthController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

func record(checks map[string]string, name string, err error) bool {
	if err != nil {
		checks[name] = "error: " + err.Error()
		return false
	}
	checks[name] = "ok"
	return true
}
