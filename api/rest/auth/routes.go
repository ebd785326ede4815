package auth

import (
	"github.com/gin-gonic/gin"
)

// registers the federated sign-in routes
func RegisterRoutes(router *gin.RouterGroup, deps *Deps) {
	authGroup := router.Group("/auth")
	{
		authGroup.GET("/:provider", BeginAuthHandler(deps))
		authGroup.GET("/:provider/callback", CallbackHandler(deps))
	}
}
