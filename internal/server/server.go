// Package server exposes the analysis pipeline over HTTP: a JSON API for the
// frontend plus a minimal server-rendered submit/results viewer.
package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/yuin/goldmark"

	"github.com/draftvista/draftvista/internal/pipeline"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// Runner executes one analysis request. Satisfied by *pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Response, error)
}

// Server is the HTTP server for manuscript analysis.
type Server struct {
	pipe      Runner
	uploadDir string
	maxUpload int64
	origin    string
	pages     map[string]*template.Template
	mux       *http.ServeMux
}

// New creates a new Server. uploadDir receives stored manuscripts, maxUpload
// caps the accepted file size in bytes, and origin is the single allowed CORS
// origin for browser clients.
func New(pipe Runner, uploadDir string, maxUpload int64, origin string) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// For each page template, clone the base and parse the page into the clone.
	// This gives each page its own {{define "content"}} and {{define "title"}}.
	pageNames := []string{"index.html", "results.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{
		pipe:      pipe,
		uploadDir: uploadDir,
		maxUpload: maxUpload,
		origin:    origin,
		pages:     pages,
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server, CORS middleware included.
func (s *Server) Handler() http.Handler {
	return s.cors(s.mux)
}

func (s *Server) routes() {
	// Static files
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// JSON API
	s.mux.HandleFunc("/api/analyze-pre-submission", s.handleAnalyzePreSubmission)
	s.mux.HandleFunc("/api/analyze-post-rejection", s.handleAnalyzePostRejection)
	s.mux.HandleFunc("/api/test", s.handleTest)
	s.mux.HandleFunc("/health", s.handleHealth)

	// Server-rendered viewer
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/analyze", s.handleAnalyzePage)
}

// cors allows the configured frontend origin and answers preflights.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "OK",
		"message":   "Manuscript Reviewer Backend is running",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Manuscript Reviewer API is working!",
		"endpoints": []string{
			"POST /api/analyze-pre-submission",
			"POST /api/analyze-post-rejection",
		},
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":     "Route not found",
			"path":      r.URL.Path,
			"timestamp": time.Now().UTC(),
		})
		return
	}
	s.render(w, "index.html", map[string]any{})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// inputError is the 400 body for missing or malformed request fields.
func inputError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}

// internalError is the 500 body for server-side faults outside the analysis
// itself, such as upload storage problems.
func internalError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"error":     "Internal server error",
		"message":   err.Error(),
		"timestamp": time.Now().UTC(),
	})
}

// analysisError is the 500 body for failures past input validation.
func analysisError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"error":     "Analysis failed",
		"message":   err.Error(),
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(pipe Runner, uploadDir string, maxUpload int64, origin string, port int) error {
	srv, err := New(pipe, uploadDir, maxUpload, origin)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", port)
	log.Printf("Server listening on http://localhost%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
