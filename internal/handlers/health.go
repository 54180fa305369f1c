package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/store"
	"github.com/akhilesheragolla2056/Vidhya-sub000/pkg/response"
)

// Health reports process liveness plus a coarse view of the session registry.
func Health(sessions *store.SessionStore) gin.HandlerFunc {
	started := time.Now()

	return func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{
			"status":         "ok",
			"uptime_seconds": int64(time.Since(started).Seconds()),
			"sessions":       sessions.Count(),
		})
	}
}
