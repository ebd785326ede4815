package main

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"

	"codeberg.org/newsdesk/web/internal/backend"
	"codeberg.org/newsdesk/web/internal/config"
	"codeberg.org/newsdesk/web/internal/metrics"
	"codeberg.org/newsdesk/web/internal/render"
	"codeberg.org/newsdesk/web/internal/session"
)

// holds all dependencies and state for the web server
type Server struct {
	config    *config.Config
	backend   *backend.Client
	manager   *session.Manager
	store     sessions.Store
	renderer  *render.Renderer
	registry  *prometheus.Registry
	collector *metrics.Collector
	providers []string
	router    *gin.Engine
}
