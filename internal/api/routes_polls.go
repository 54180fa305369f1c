package api

import (
	"github.com/gin-gonic/gin"

	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/handlers"
)

func registerPollRoutes(api *gin.RouterGroup, handler *handlers.PollHandler) {
	if handler == nil {
		return
	}

	polls := api.Group("/sessions/:sessionID/polls")
	polls.POST("", handler.Create)
	polls.POST("/:pollID/end", handler.End)
}
