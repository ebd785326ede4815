package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"codeberg.org/newsdesk/web/api/pages"
	restauth "codeberg.org/newsdesk/web/api/rest/auth"
	"codeberg.org/newsdesk/web/api/rest/health"
	restsession "codeberg.org/newsdesk/web/api/rest/session"
	"codeberg.org/newsdesk/web/internal/auth"
	"codeberg.org/newsdesk/web/internal/config"
	"codeberg.org/newsdesk/web/internal/metrics"
)

const version = "1.0.0"

// sets up all page and API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) {
	router.GET("/health", health.Handler(version))
	router.GET("/metrics", gin.WrapH(metrics.Handler(server.registry)))

	visitor := auth.VisitorMiddleware(server.store, server.manager)

	site := router.Group("/", visitor)
	{
		pages.RegisterRoutes(site, &pages.Deps{
			Backend:        server.backend,
			Store:          server.store,
			Renderer:       server.renderer,
			Recorder:       server.collector,
			Providers:      server.providers,
			LoginRateLimit: server.config.LoginRateLimit,
		})

		restauth.RegisterRoutes(site, &restauth.Deps{
			Store:     server.store,
			Providers: server.providers,
			Recorder:  server.collector,
		})
	}

	v1 := router.Group("/api/v1", cors.New(corsConfig(server.config)))
	{
		v1.GET("/ping", health.PingHandler)

		restsession.RegisterRoutes(v1.Group("", visitor), &restsession.Deps{
			AllowedOrigins: server.config.AllowedOrigins,
			Production:     server.config.IsProduction(),
		})
	}
}

// explicit origins get credentialed CORS; without any, reads are open to all
func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 0 {
		c.AllowAllOrigins = true
		return c
	}

	c.AllowOrigins = cfg.AllowedOrigins
	c.AllowCredentials = true
	return c
}
