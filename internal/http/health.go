package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storybook/internal/database"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	db      *database.Database
	version string
}

func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{
		db:      db,
		version: version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	// The memory session store has nothing to check
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			checks["session_store"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["session_store"] = "ok"
			if count, err := h.db.CountSessions(); err != nil {
				checks["sessions"] = "error: " + err.Error()
			} else {
				checks["sessions"] = strconv.FormatInt(count, 10)
			}
		}
	} else {
		checks["session_store"] = "memory"
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
