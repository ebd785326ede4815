package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"codeberg.org/newsdesk/web/api/pages"
	"codeberg.org/newsdesk/web/internal/auth"
	"codeberg.org/newsdesk/web/internal/backend"
	"codeberg.org/newsdesk/web/internal/config"
	"codeberg.org/newsdesk/web/internal/identity"
	"codeberg.org/newsdesk/web/internal/logger"
	"codeberg.org/newsdesk/web/internal/metrics"
	"codeberg.org/newsdesk/web/internal/render"
	"codeberg.org/newsdesk/web/internal/session"
)

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	identityOpts := []identity.Option{identity.WithRequestURI(cfg.BaseURL)}
	if cfg.FirebaseEmulatorHost != "" {
		identityOpts = append(identityOpts, identity.WithEmulatorHost(cfg.FirebaseEmulatorHost))
		logger.Info("using identity emulator", "host", cfg.FirebaseEmulatorHost)
	}
	identityClient := identity.NewClient(cfg.FirebaseAPIKey, identityOpts...)

	manager := session.NewManager(func(refreshToken string) session.Identity {
		return identity.NewAuth(identityClient, refreshToken)
	}, cfg.VisitorTTL, session.WithGauge(collector))

	backendOpts := []backend.Option{
		backend.WithRecorder(collector),
		backend.WithRateLimit(cfg.BackendRateLimit),
	}
	if cfg.BackendTimeout > 0 {
		backendOpts = append(backendOpts, backend.WithTimeout(cfg.BackendTimeout))
	}
	backendClient := backend.NewClient(cfg.BackendURL, backendOpts...)

	renderer := render.New()

	templates, err := pages.Templates(renderer)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	providers := auth.InitializeProviders(cfg)
	logger.Info("federated providers configured", "providers", providers)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.SetHTMLTemplate(templates)

	server := &Server{
		config:    cfg,
		backend:   backendClient,
		manager:   manager,
		store:     auth.NewCookieStore(cfg),
		renderer:  renderer,
		registry:  registry,
		collector: collector,
		providers: providers,
		router:    router,
	}

	RegisterRoutes(router, server)

	return server, nil
}
