// Package server provides the HTTP REST API for the memoir builder.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/maren/memoir-builder/internal/config"
	"github.com/maren/memoir-builder/internal/content"
	"github.com/maren/memoir-builder/internal/db"
	"github.com/maren/memoir-builder/internal/llm"
	"github.com/maren/memoir-builder/internal/rendering"
	"github.com/maren/memoir-builder/internal/server/middleware"
	"github.com/maren/memoir-builder/internal/share"
	"github.com/maren/memoir-builder/internal/types"
)

// renderTimeout bounds a single document render. Rendering is CPU-bound and
// blocking; cancellation happens through this deadline, not internal
// suspension points.
const renderTimeout = 2 * time.Minute

// StoryStore is the record-store contract the handlers depend on. *db.DB
// satisfies it; tests substitute an in-memory fake.
type StoryStore interface {
	FindStoryByOwner(ctx context.Context, ownerID uuid.UUID) (*types.StoryRecord, error)
	UpsertStory(ctx context.Context, ownerID uuid.UUID, record *types.StoryRecord) (*types.StoryRecord, error)
	FindStoryBySlug(ctx context.Context, slug string) (*types.StoryRecord, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	AssignSlug(ctx context.Context, ownerID uuid.UUID, slug string) error
}

// UserStore is the user-store contract for the auth boundary.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
}

// DraftProducer generates a narrative draft. Upstream failures are recovered
// inside the producer, so Generate always returns draft text.
type DraftProducer interface {
	Generate(ctx context.Context, style types.DraftStyle, answers types.StructuredAnswers) string
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	database   *db.DB

	store    StoryStore
	users    UserStore
	producer DraftProducer

	compiler     *content.Compiler
	allocator    *share.Allocator
	htmlRenderer *rendering.HTMLRenderer
	pdfRenderer  *rendering.PDFRenderer

	jwtService     *JWTService
	passwordConfig *config.PasswordConfig
}

// Config holds server configuration
type Config struct {
	Port        int
	DatabaseURL string
	APIKey      string
	Model       string
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var client llm.Client
	if cfg.APIKey != "" {
		client, err = llm.NewGeminiClient(context.Background(), cfg.APIKey, cfg.Model)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
	}

	htmlRenderer, err := rendering.NewHTMLRenderer()
	if err != nil {
		database.Close()
		return nil, err
	}
	pdfRenderer, err := rendering.NewPDFRenderer()
	if err != nil {
		database.Close()
		return nil, err
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}

	s := &Server{
		database:       database,
		store:          database,
		users:          database,
		producer:       llm.NewProducer(client),
		compiler:       content.NewCompiler(),
		allocator:      share.NewAllocator(database),
		htmlRenderer:   htmlRenderer,
		pdfRenderer:    pdfRenderer,
		jwtService:     NewJWTService(jwtConfig),
		passwordConfig: passwordConfig,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(s.routes())),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // long timeout for PDF rendering
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes builds the request mux. Split out so handler tests can exercise the
// full routing table without a database-backed Server.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Public endpoints
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("GET /share/{slug}", s.handlePublicStory)

	// Authenticated endpoints
	auth := middleware.Auth(s.jwtService)
	protected := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, auth(h))
	}
	protected("GET /story", s.handleGetStory)
	protected("PUT /story", s.handleUpdateStory)
	protected("POST /story/timeline", s.handleAddTimelineEvent)
	protected("DELETE /story/timeline/{id}", s.handleDeleteTimelineEvent)
	protected("POST /story/drafts", s.handleGenerateDraft)
	protected("POST /story/share", s.handleShareStory)
	protected("GET /export/pdf", s.handleExportPDF)
	protected("GET /export/document", s.handleExportDocument)

	return mux
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.database.Close()
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
