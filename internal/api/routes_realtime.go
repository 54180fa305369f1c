package api

import (
	"github.com/gin-gonic/gin"

	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/handlers"
)

func registerRealtimeRoutes(api *gin.RouterGroup, handler *handlers.RealtimeHandler) {
	if handler == nil {
		return
	}

	api.GET("/realtime", handler.Stream)
}
