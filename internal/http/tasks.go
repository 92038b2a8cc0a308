package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/mrlokans/memberimport/internal/logging"
)

// TaskStatusReader looks up queued tasks. Implemented by *tasks.Client.
type TaskStatusReader interface {
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// TasksController handles task queue endpoints.
type TasksController struct {
	client TaskStatusReader
	logger *zap.Logger
}

func NewTasksController(client TaskStatusReader, logger *zap.Logger) *TasksController {
	return &TasksController{client: client, logger: logging.OrNop(logger).Named("tasks")}
}

// GetTaskStatus handles GET /api/tasks/:id
// Returns the status of a queued commit. The import session itself carries
// the progress.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.client.Status(ctx, taskID)
	if err != nil {
		respondError(c, tc.logger, err)
		return
	}

	statusCode := http.StatusOK
	if status == backlite.TaskStatusNotFound {
		statusCode = http.StatusNotFound
	}
	c.JSON(statusCode, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
