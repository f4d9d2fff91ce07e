package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/decisionworks/rigor-core/internal/core/domain"
	"github.com/decisionworks/rigor-core/internal/core/ports/driven"
	"github.com/decisionworks/rigor-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	authService        driving.AuthService
	userService        driving.UserService
	workspaceService   driving.WorkspaceService
	sourceService      driving.SourceService
	promptService      driving.PromptService
	analysisService    driving.AnalysisService
	integrationService driving.IntegrationService

	// Infrastructure
	auditStore  driven.AuditStore
	db          Pinger // PostgreSQL health check
	redisClient Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		Version:        "dev",
		AllowedOrigins: []string{"*"},
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	authService driving.AuthService,
	userService driving.UserService,
	workspaceService driving.WorkspaceService,
	sourceService driving.SourceService,
	promptService driving.PromptService,
	analysisService driving.AnalysisService,
	integrationService driving.IntegrationService,
	auditStore driven.AuditStore,
	db Pinger,
	redisClient Pinger, // can be nil
) *Server {
	s := &Server{
		router:             http.NewServeMux(),
		version:            cfg.Version,
		authService:        authService,
		userService:        userService,
		workspaceService:   workspaceService,
		sourceService:      sourceService,
		promptService:      promptService,
		analysisService:    analysisService,
		integrationService: integrationService,
		auditStore:         auditStore,
		db:                 db,
		redisClient:        redisClient,
	}

	s.setupRoutes()

	// Outermost first: recovery catches panics from everything below
	handler := NewRecoveryMiddleware().Handler(
		NewLoggingMiddleware().Handler(
			NewCORSMiddleware(cfg.AllowedOrigins).Handler(s.router)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Create middleware
	authMiddleware := NewAuthMiddleware(s.authService)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Auth endpoints (public)
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	s.router.HandleFunc("POST /api/v1/auth/refresh", s.handleRefresh)

	// Setup endpoint (public, one-time use)
	s.router.HandleFunc("POST /api/v1/setup", s.handleSetup)

	// Auth endpoints (authenticated)
	s.router.Handle("POST /api/v1/auth/logout",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleLogout)))
	s.router.Handle("POST /api/v1/auth/logout-all",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleLogoutAll)))

	// Current user endpoints
	s.router.Handle("GET /api/v1/me",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetMe)))
	s.router.Handle("PUT /api/v1/me/password",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleChangePassword)))

	// Admin-only user management
	s.router.Handle("GET /api/v1/users",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleListUsers))))
	s.router.Handle("POST /api/v1/users",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleCreateUser))))
	s.router.Handle("GET /api/v1/users/{id}",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleGetUser))))
	s.router.Handle("PUT /api/v1/users/{id}",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleUpdateUser))))
	s.router.Handle("DELETE /api/v1/users/{id}",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleDeleteUser))))
	s.router.Handle("PUT /api/v1/users/{id}/password",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleSetPassword))))

	// Workspace endpoints (authenticated, destructive ops admin-only)
	s.router.Handle("GET /api/v1/workspaces",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListWorkspaces)))
	s.router.Handle("POST /api/v1/workspaces",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleCreateWorkspace)))
	s.router.Handle("GET /api/v1/workspaces/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetWorkspace)))
	s.router.Handle("PUT /api/v1/workspaces/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleUpdateWorkspace)))
	s.router.Handle("DELETE /api/v1/workspaces/{id}",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleDeleteWorkspace))))
	s.router.Handle("POST /api/v1/workspaces/{id}/purge",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handlePurgeWorkspace))))
	s.router.Handle("GET /api/v1/workspaces/{id}/sources",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListSources)))
	s.router.Handle("GET /api/v1/workspaces/{id}/analyses",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListAnalyses)))

	// Source endpoints
	s.router.Handle("POST /api/v1/sources/upload",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleUploadSource)))
	s.router.Handle("POST /api/v1/sources/import",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleImportSource)))
	s.router.Handle("GET /api/v1/sources/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetSource)))
	s.router.Handle("PUT /api/v1/sources/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleUpdateSource)))
	s.router.Handle("DELETE /api/v1/sources/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleDeleteSource)))
	s.router.Handle("POST /api/v1/sources/{id}/purge",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handlePurgeSource))))

	// Prompt pack endpoints (mutations admin-only)
	s.router.Handle("GET /api/v1/prompt-packs",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListPromptPacks)))
	s.router.Handle("POST /api/v1/prompt-packs",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleCreatePromptPack))))
	s.router.Handle("GET /api/v1/prompt-packs/active",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetActivePromptPack)))
	s.router.Handle("GET /api/v1/prompt-packs/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetPromptPack)))
	s.router.Handle("PUT /api/v1/prompt-packs/{id}",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleUpdatePromptPack))))
	s.router.Handle("DELETE /api/v1/prompt-packs/{id}",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleDeletePromptPack))))
	s.router.Handle("POST /api/v1/prompt-packs/{id}/lock",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleLockPromptPack))))
	s.router.Handle("POST /api/v1/prompt-packs/{id}/activate",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleActivatePromptPack))))
	s.router.Handle("POST /api/v1/prompt-packs/{id}/deprecate",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleDeprecatePromptPack))))

	// Analysis endpoints
	s.router.Handle("POST /api/v1/analyses",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleCreateAnalysis)))
	s.router.Handle("GET /api/v1/analyses/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetAnalysis)))
	s.router.Handle("DELETE /api/v1/analyses/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleDeleteAnalysis)))
	s.router.Handle("POST /api/v1/analyses/{id}/sources",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleAttachSource)))
	s.router.Handle("DELETE /api/v1/analyses/{id}/sources/{sourceID}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleDetachSource)))
	s.router.Handle("POST /api/v1/analyses/{id}/conflicts",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleReportConflict)))
	s.router.Handle("POST /api/v1/analyses/{id}/score",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleScoreAnalysis)))
	s.router.Handle("POST /api/v1/analyses/{id}/readiness",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleReadinessAnalysis)))
	s.router.Handle("GET /api/v1/analyses/{id}/history",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleAnalysisHistory)))
	s.router.Handle("POST /api/v1/analyses/{id}/export",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleExportAnalysis)))

	// Integration endpoints (mutations and syncs require admin or member)
	s.router.Handle("GET /api/v1/integrations",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListIntegrations)))
	s.router.Handle("POST /api/v1/integrations",
		authMiddleware.Authenticate(
			authMiddleware.RequireRole(domain.RoleAdmin, domain.RoleMember)(http.HandlerFunc(s.handleCreateIntegration))))
	s.router.Handle("GET /api/v1/integrations/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetIntegration)))
	s.router.Handle("PUT /api/v1/integrations/{id}",
		authMiddleware.Authenticate(
			authMiddleware.RequireRole(domain.RoleAdmin, domain.RoleMember)(http.HandlerFunc(s.handleUpdateIntegration))))
	s.router.Handle("DELETE /api/v1/integrations/{id}",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleDeleteIntegration))))
	s.router.Handle("POST /api/v1/integrations/{id}/test",
		authMiddleware.Authenticate(
			authMiddleware.RequireRole(domain.RoleAdmin, domain.RoleMember)(http.HandlerFunc(s.handleTestIntegration))))
	s.router.Handle("POST /api/v1/integrations/{id}/sync",
		authMiddleware.Authenticate(
			authMiddleware.RequireRole(domain.RoleAdmin, domain.RoleMember)(http.HandlerFunc(s.handleSyncIntegration))))
	s.router.Handle("GET /api/v1/integrations/{id}/sync-history",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleSyncHistory)))

	// Audit endpoints (admin-only)
	s.router.Handle("GET /api/v1/audit",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleListAuditRecent))))
	s.router.Handle("GET /api/v1/audit/{entityType}/{entityID}",
		authMiddleware.Authenticate(
			authMiddleware.RequireAdmin(http.HandlerFunc(s.handleListAuditByEntity))))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-stop
	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
