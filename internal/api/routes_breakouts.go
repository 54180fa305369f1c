package api

import (
	"github.com/gin-gonic/gin"

	"github.com/akhilesheragolla2056/Vidhya-sub000/internal/handlers"
)

func registerBreakoutRoutes(api *gin.RouterGroup, handler *handlers.BreakoutHandler) {
	if handler == nil {
		return
	}

	api.POST("/sessions/:sessionID/breakouts", handler.Create)
}
