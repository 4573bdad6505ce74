// Package server exposes the HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"edumate/internal/app"
	"edumate/internal/ratelimit"
	"edumate/internal/util"
	"edumate/pkg/ai"
	"edumate/pkg/domain"
	"edumate/pkg/export"
	"edumate/pkg/ingest"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App                       *app.App
	RedisAddr                 string
	RedisPassword             string
	ProcessRateLimitPerMinute int
	TrustedProxyCIDRs         []string
	MaxUploadBytes            int64
}

// Server exposes HTTP endpoints for content processing, aggregation and
// export.
type Server struct {
	app            *app.App
	mux            *http.ServeMux
	limiter        *ratelimit.FixedWindowLimiter
	trustedProxies *util.TrustedProxies
	maxUploadBytes int64
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	maxUploadBytes := cfg.MaxUploadBytes
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 * 1024 * 1024
	}
	s := &Server{
		app:            cfg.App,
		mux:            http.NewServeMux(),
		maxUploadBytes: maxUploadBytes,
	}
	if cfg.ProcessRateLimitPerMinute > 0 {
		limiter, err := ratelimit.NewRedisFixedWindowLimiter(
			cfg.RedisAddr, cfg.RedisPassword, "edumate:ratelimit:process",
			cfg.ProcessRateLimitPerMinute, time.Minute,
		)
		if err != nil {
			return nil, err
		}
		s.limiter = limiter
	}
	trusted, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		return nil, err
	}
	s.trustedProxies = trusted
	s.routes()
	return s, nil
}

// Router returns the configured handler with middleware applied.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog(util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	s.mux.HandleFunc("/api/content", s.handleContent)
	s.mux.HandleFunc("/api/content/upload", s.handleUpload)
	s.mux.HandleFunc("/api/content/", s.handleContentByID)

	s.mux.HandleFunc("/api/stats", s.handleStats)

	s.mux.HandleFunc("/api/export", s.handleExport)
	s.mux.HandleFunc("/api/export/archive", s.handleArchive)
	s.mux.HandleFunc("/api/import", s.handleImport)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withRateLimit guards the processing endpoints per client IP.
func (s *Server) withRateLimit(w http.ResponseWriter, r *http.Request) bool {
	if s.limiter == nil {
		return true
	}
	if !s.limiter.Allow(util.ClientIP(r, s.trustedProxies)) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return false
	}
	return true
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleProcess(w, r)
	case http.MethodGet:
		s.handleList(w, r)
	case http.MethodDelete:
		s.handleClearAll(w, r)
	default:
		methodNotAllowed(w)
	}
}

type processRequest struct {
	Title     string     `json:"title"`
	Text      string     `json:"text"`
	Operation string     `json:"operation"`
	Options   ai.Options `json:"options"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if !s.withRateLimit(w, r) {
		return
	}
	var req processRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	record, err := s.app.Process(r.Context(), app.ProcessInput{
		Title:   req.Title,
		Kind:    domain.OperationKind(strings.TrimSpace(req.Operation)),
		Text:    req.Text,
		Options: req.Options,
	})
	if err != nil {
		writeProcessError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.withRateLimit(w, r) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required (field: file)")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	record, err := s.app.ProcessUpload(r.Context(), app.UploadInput{
		Filename: header.Filename,
		Data:     data,
		Kind:     domain.OperationKind(strings.TrimSpace(r.FormValue("operation"))),
		Options: ai.Options{
			Style:  r.FormValue("style"),
			Length: r.FormValue("length"),
			Tone:   r.FormValue("tone"),
		},
	})
	if err != nil {
		writeProcessError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.app.ListContent(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": records,
		"count": len(records),
	})
}

// handleClearAll wipes every record. It demands both the confirm=all
// query parameter and the X-Confirm-Clear header so a stray DELETE
// cannot erase the library.
func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "all" {
		writeError(w, http.StatusBadRequest, "clearing all content requires confirm=all")
		return
	}
	if !strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Confirm-Clear")), "yes") {
		writeError(w, http.StatusBadRequest, "clearing all content requires X-Confirm-Clear: yes")
		return
	}
	if err := s.app.ClearAll(); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// /api/content/{id}
func (s *Server) handleContentByID(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, "/api/content/")
	if raw == "" || strings.Contains(raw, "/") {
		notFound(w, "not found")
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid content id")
		return
	}
	switch r.Method {
	case http.MethodGet:
		record, err := s.app.GetContent(id)
		if errors.Is(err, app.ErrContentNotFound) {
			notFound(w, "content not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, record)
	case http.MethodDelete:
		if err := s.app.DeleteContent(id); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("recent"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid recent limit")
			return
		}
		limit = n
	}
	overview, err := s.app.GetOverview(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	data, err := s.app.ExportData(time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="edumate-export.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	url, err := s.app.ArchiveExport(r.Context())
	if errors.Is(err, app.ErrArchiveUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "archive storage not configured")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, 32<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	n, err := s.app.ImportData(data)
	if errors.Is(err, export.ErrInvalidDocument) || errors.Is(err, export.ErrItemCountMismatch) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}

// writeProcessError maps pipeline failures onto HTTP statuses.
func writeProcessError(w http.ResponseWriter, err error) {
	var backendErr *ai.BackendError
	switch {
	case errors.Is(err, app.ErrTextTooShort),
		errors.Is(err, ai.ErrEmptyInput),
		errors.Is(err, ai.ErrUnknownOperation),
		errors.Is(err, ingest.ErrUnsupportedType),
		errors.Is(err, ingest.ErrNoText):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ai.ErrBackendUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &backendErr):
		writeError(w, http.StatusBadGateway, backendErr.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func notFound(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusNotFound, msg)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		RequestID: strings.TrimSpace(w.Header().Get("X-Request-Id")),
	})
}
