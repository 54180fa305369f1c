package api

import (
	"github.com/gin-gonic/gin"

	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/handlers"
)

func registerSessionRoutes(api *gin.RouterGroup, handler *handlers.SessionHandler) {
	if handler == nil {
		return
	}

	sessions := api.Group("/sessions")
	sessions.POST("", handler.Create)
	sessions.POST("/join", handler.JoinByCode)
	sessions.GET("/:sessionID", handler.Get)
	sessions.POST("/:sessionID/start", handler.Start)
	sessions.POST("/:sessionID/end", handler.End)
}
