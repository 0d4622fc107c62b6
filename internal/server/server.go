// Package server provides the HTTP server and routing for Prism.
package server

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/prismdash/prism/internal/config"
	"github.com/prismdash/prism/internal/database"
	"github.com/prismdash/prism/internal/di"
	"github.com/prismdash/prism/internal/scheduler"
	"github.com/prismdash/prism/pkg/embedded"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	DB        *database.DB
	Config    *config.Config
	Port      int
	DevMode   bool
	Container *di.Container
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	db             *database.DB
	cfg            *config.Config
	container      *di.Container
	systemHandlers *SystemHandlers
	frontendFS     fs.FS
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	// Register common MIME types to ensure correct Content-Type headers
	_ = mime.AddExtensionType(".js", "application/javascript")
	_ = mime.AddExtensionType(".mjs", "application/javascript")
	_ = mime.AddExtensionType(".css", "text/css")
	_ = mime.AddExtensionType(".woff2", "font/woff2")
	_ = mime.AddExtensionType(".woff", "font/woff")

	systemHandlers := NewSystemHandlers(
		cfg.DB,
		cfg.Container.Scheduler,
		cfg.Config.DataDir,
		cfg.Log,
	)

	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		db:             cfg.DB,
		cfg:            cfg.Config,
		container:      cfg.Container,
		systemHandlers: systemHandlers,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// SetJobs registers job instances for manual triggering via API
func (s *Server) SetJobs(jobs ...scheduler.Job) {
	s.systemHandlers.SetJobs(jobs...)
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check (before SPA routing)
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			s.container.ChartsHandler.RegisterRoutes(r)
			s.container.AccountsHandler.RegisterRoutes(r)
			s.systemHandlers.RegisterRoutes(r)
		})

		// Hover sockets stay open for the life of a chart, so no request timeout.
		s.container.HoverHandler.RegisterRoutes(r)
	})

	// Serve the built frontend from the embedded filesystem
	frontendFS, err := fs.Sub(embedded.Files, "frontend/dist")
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to create frontend filesystem from embedded files")
		return
	}
	s.frontendFS = frontendFS

	// Vite outputs hashed assets under /assets/
	assetsFS, err := fs.Sub(frontendFS, "assets")
	if err != nil {
		s.log.Warn().Err(err).Msg("Frontend assets directory not found in embedded files")
	} else {
		fileServer := http.FileServer(http.FS(assetsFS))
		s.router.Handle("/assets/*", http.StripPrefix("/assets/", s.assetsHandler(fileServer)))
	}

	// Serve index.html for root and all non-API routes (SPA routing)
	s.router.Get("/", s.handleDashboard)
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api") || strings.HasPrefix(r.URL.Path, "/health") {
			http.NotFound(w, r)
			return
		}
		s.serveIndex(w)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// assetsHandler wraps the file server to set correct MIME types
func (s *Server) assetsHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ext := filepath.Ext(r.URL.Path)

		contentType := mime.TypeByExtension(ext)
		if contentType == "" {
			// Fallback for common extensions
			switch ext {
			case ".js", ".mjs":
				contentType = "application/javascript"
			case ".css":
				contentType = "text/css"
			case ".json":
				contentType = "application/json"
			case ".woff", ".woff2":
				contentType = "font/woff2"
			case ".ttf":
				contentType = "font/ttf"
			case ".svg":
				contentType = "image/svg+xml"
			default:
				contentType = "application/octet-stream"
			}
		}

		w.Header().Set("Content-Type", contentType)
		next.ServeHTTP(w, r)
	})
}

// handleDashboard serves the main dashboard HTML from the embedded filesystem
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.serveIndex(w)
}

func (s *Server) serveIndex(w http.ResponseWriter) {
	if s.frontendFS == nil {
		http.Error(w, "Frontend not available", http.StatusInternalServerError)
		return
	}

	indexFile, err := s.frontendFS.Open("index.html")
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to open embedded index.html")
		http.Error(w, "Frontend not available", http.StatusInternalServerError)
		return
	}
	defer indexFile.Close()

	data, err := io.ReadAll(indexFile)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to read embedded index.html")
		http.Error(w, "Frontend not available", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to write index.html response")
	}
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
