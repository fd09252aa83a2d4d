package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/liamcoop/sopscript/highlight"
	"github.com/liamcoop/sopscript/internal/logger"
	"github.com/liamcoop/sopscript/sop"
)

type Server struct {
	db          *sql.DB // nil when running on the in-memory store
	engine      *sop.Engine
	highlighter *highlight.Highlighter
	router      *chi.Mux
}

// NewServer wires a server over the given engine. db may be nil; the
// health check then skips the ping.
func NewServer(engine *sop.Engine, db *sql.DB) *Server {
	s := &Server{
		db:          db,
		engine:      engine,
		highlighter: highlight.New(highlight.DefaultGrammar()),
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/api/v1/health", s.handleHealth)

	// Stateless compiler surface; the editor hits these on every edit
	r.Post("/api/v1/compile", s.handleCompile)
	r.Post("/api/v1/validate", s.handleValidate)
	r.Post("/api/v1/highlight", s.handleHighlight)

	// SOP document management
	r.Route("/api/v1/sops", func(r chi.Router) {
		r.Get("/", s.handleListSOPs)
		r.Post("/", s.handleCreateSOP)

		r.Route("/{sopId}", func(r chi.Router) {
			r.Get("/", s.handleGetSOP)
			r.Put("/", s.handleUpdateSOP)
			r.Delete("/", s.handleDeleteSOP)
			r.Get("/script", s.handleGetScript)
		})
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Health check handler
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	storage := "memory"
	if s.db != nil {
		storage = "postgres"
		if err := s.db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"storage": storage,
	})
}

// Compile handler: inline SOP in, script plus diagnostics out. This path
// is never gated; diagnostics are advisory for the preview.
func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	var doc sop.SOP
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	script, res := s.engine.Compile(doc)

	respondJSON(w, http.StatusOK, CompileResponse{
		Script:   script,
		Errors:   res.Errors,
		Warnings: res.Warnings,
	})
}

// Validate handler: pre-flight only.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var doc sop.SOP
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	res := s.engine.Validate(doc)

	respondJSON(w, http.StatusOK, ValidateResponse{
		Valid:    res.Valid(),
		Errors:   res.Errors,
		Warnings: res.Warnings,
	})
}

// Highlight handler: script text in, per-line token lists out.
func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	var req HighlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	respondJSON(w, http.StatusOK, HighlightResponse{
		Lines: s.highlighter.HighlightScript(req.Script),
	})
}

// List SOPs handler
func (s *Server) handleListSOPs(w http.ResponseWriter, r *http.Request) {
	docs, err := s.engine.List()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list sops", err)
		return
	}
	if docs == nil {
		docs = []*sop.SOP{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"sops": docs,
	})
}

// Create SOP handler
func (s *Server) handleCreateSOP(w http.ResponseWriter, r *http.Request) {
	var doc sop.SOP
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	doc.ID = uuid.NewString()
	for i := range doc.Rules {
		if doc.Rules[i].ID == "" {
			doc.Rules[i].ID = uuid.NewString()
		}
	}

	if err := s.engine.Create(&doc); err != nil {
		respondValidationError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, doc)
}

// Get SOP handler
func (s *Server) handleGetSOP(w http.ResponseWriter, r *http.Request) {
	sopID := chi.URLParam(r, "sopId")

	doc, err := s.engine.Get(sopID)
	if err != nil {
		respondError(w, http.StatusNotFound, "sop not found", err)
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

// Update SOP handler
func (s *Server) handleUpdateSOP(w http.ResponseWriter, r *http.Request) {
	sopID := chi.URLParam(r, "sopId")

	var doc sop.SOP
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	doc.ID = sopID
	for i := range doc.Rules {
		if doc.Rules[i].ID == "" {
			doc.Rules[i].ID = uuid.NewString()
		}
	}

	if err := s.engine.Update(&doc); err != nil {
		respondValidationError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

// Delete SOP handler
func (s *Server) handleDeleteSOP(w http.ResponseWriter, r *http.Request) {
	sopID := chi.URLParam(r, "sopId")

	if err := s.engine.Delete(sopID); err != nil {
		respondError(w, http.StatusNotFound, "sop not found", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get script handler. Plain GET is the preview path and always responds.
// With ?download=true the response is an export: blocking validation
// errors refuse it with 422, and the body is offered as a .s1 attachment.
func (s *Server) handleGetScript(w http.ResponseWriter, r *http.Request) {
	sopID := chi.URLParam(r, "sopId")
	download := r.URL.Query().Get("download") == "true"

	script, res, err := s.engine.CompileByID(sopID)
	if err != nil {
		respondError(w, http.StatusNotFound, "sop not found", err)
		return
	}

	if download {
		if !res.Valid() {
			respondJSON(w, http.StatusUnprocessableEntity, ValidateResponse{
				Valid:    false,
				Errors:   res.Errors,
				Warnings: res.Warnings,
			})
			return
		}

		doc, err := s.engine.Get(sopID)
		if err != nil {
			respondError(w, http.StatusNotFound, "sop not found", err)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(doc.Name)))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(script))
		return
	}

	respondJSON(w, http.StatusOK, CompileResponse{
		Script:   script,
		Errors:   res.Errors,
		Warnings: res.Warnings,
	})
}

// exportFilename derives the suggested download name: the document name
// with unsafe characters replaced, or "sop" when the name is empty.
func exportFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "sop.s1"
	}

	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "sop.s1"
	}
	return sb.String() + ".s1"
}

// Helper functions
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]string{
		"error": message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}

// respondValidationError distinguishes diagnostic refusals from other
// failures: blocking validation errors come back as 422 with the full
// error list, anything else as 400.
func respondValidationError(w http.ResponseWriter, err error) {
	if verr, ok := err.(*sop.ValidationError); ok {
		respondJSON(w, http.StatusUnprocessableEntity, ValidateResponse{
			Valid:    false,
			Errors:   verr.Result.Errors,
			Warnings: verr.Result.Warnings,
		})
		return
	}
	respondError(w, http.StatusBadRequest, "failed to save sop", err)
}

func main() {
	var db *sql.DB
	var store sop.SOPStore

	// DATABASE_URL selects the postgres store; without it the server runs
	// on the in-memory store, which is enough for the editor preview loop.
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL != "" {
		var err error
		db, err = sql.Open("postgres", databaseURL)
		if err != nil {
			logger.Fatal("failed to open database", "error", err)
		}
		if err := db.Ping(); err != nil {
			logger.Fatal("failed to ping database", "error", err)
		}
		store = sop.NewPostgresSOPStore(db)
		logger.Info("using postgres store")
	} else {
		store = sop.NewInMemorySOPStore()
		logger.Info("DATABASE_URL not set, using in-memory store")
	}

	strict := strings.ToLower(os.Getenv("STRICT_OPERATORS")) == "true"
	engine := sop.NewEngineWithValidator(store, sop.Validator{StrictOperators: strict})

	server := NewServer(engine, db)
	if db != nil {
		defer db.Close()
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		logger.Info("server starting", "port", port, "strictOperators", strict)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := logger.Shutdown(ctx); err != nil {
		logger.Error("logger shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
