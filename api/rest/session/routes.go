package session

import (
	"github.com/gin-gonic/gin"
)

// registers the session state endpoints
func RegisterRoutes(router *gin.RouterGroup, deps *Deps) {
	group := router.Group("/session")
	{
		group.GET("", GetStateHandler())
		group.GET("/stream", StreamHandler(deps))
	}
}
