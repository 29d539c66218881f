// Package api exposes the HTTP interface for the URL canonicalization service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/archivemark/urlcanon/internal/config"
	"github.com/archivemark/urlcanon/internal/dedup"
	"github.com/archivemark/urlcanon/internal/metrics"
	"github.com/archivemark/urlcanon/pkg/urlcanon"
)

// maxBatchSize caps the number of URLs accepted by the batch endpoint.
const maxBatchSize = 1000

// Server wires HTTP handlers to the normalizer and the dedup store.
type Server struct {
	router chi.Router
	store  dedup.Store
	cfg    config.Config
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(store dedup.Store, cfg config.Config, logger *zap.Logger) *Server {
	metrics.Init()

	s := &Server{
		store:  store,
		cfg:    cfg,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(cfg.RequestTimeout()))
	if cfg.Auth.Enabled {
		r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
	}

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/normalize", s.normalize)
		r.Post("/normalize/batch", s.normalizeBatch)
		r.Post("/match", s.match)
		r.Post("/platform", s.platform)
		r.Post("/records", s.registerRecord)
		r.Get("/records/lookup", s.lookupRecord)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// The normalizer is pure; readiness only hinges on the store, which
	// fails per-request if the backend is down.
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type urlRequest struct {
	URL string `json:"url"`
}

type normalizeResponse struct {
	URL       string `json:"url"`
	Canonical string `json:"canonical"`
	Platform  string `json:"platform"`
}

func (s *Server) normalize(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url required")
		return
	}
	writeJSON(w, http.StatusOK, normalizeOne(req.URL))
}

type batchRequest struct {
	URLs []string `json:"urls"`
}

type batchResponse struct {
	Results []normalizeResponse `json:"results"`
}

func (s *Server) normalizeBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.URLs) == 0 {
		writeError(w, http.StatusBadRequest, "urls required")
		return
	}
	if len(req.URLs) > maxBatchSize {
		writeError(w, http.StatusRequestEntityTooLarge, "too many urls")
		return
	}
	resp := batchResponse{Results: make([]normalizeResponse, 0, len(req.URLs))}
	for _, raw := range req.URLs {
		resp.Results = append(resp.Results, normalizeOne(raw))
	}
	writeJSON(w, http.StatusOK, resp)
}

func normalizeOne(raw string) normalizeResponse {
	platform := urlcanon.PlatformOf(raw)
	metrics.ObserveNormalization(platform.String())
	return normalizeResponse{
		URL:       raw,
		Canonical: urlcanon.Normalize(raw),
		Platform:  platform.String(),
	}
}

type matchRequest struct {
	URL1 string `json:"url1"`
	URL2 string `json:"url2"`
}

type matchResponse struct {
	Match      bool   `json:"match"`
	Canonical1 string `json:"canonical1"`
	Canonical2 string `json:"canonical2"`
}

func (s *Server) match(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.URL1 == "" || req.URL2 == "" {
		writeError(w, http.StatusBadRequest, "url1 and url2 required")
		return
	}
	resp := matchResponse{
		Match:      urlcanon.Match(req.URL1, req.URL2),
		Canonical1: urlcanon.Normalize(req.URL1),
		Canonical2: urlcanon.Normalize(req.URL2),
	}
	metrics.ObserveMatch(resp.Match)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) platform(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"platform": urlcanon.PlatformOf(req.URL).String(),
	})
}

type recordResponse struct {
	ID        string `json:"id"`
	Canonical string `json:"canonical"`
	FirstURL  string `json:"first_url"`
	Platform  string `json:"platform"`
	CreatedAt string `json:"created_at"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

func (s *Server) registerRecord(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url required")
		return
	}
	rec, duplicate, err := s.store.Register(r.Context(), req.URL)
	if err != nil {
		s.logger.Error("register record failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "register failed")
		return
	}
	metrics.ObserveRecord(duplicate)
	status := http.StatusCreated
	if duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, toRecordResponse(rec, duplicate))
}

func (s *Server) lookupRecord(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "url query parameter required")
		return
	}
	rec, err := s.store.Lookup(r.Context(), raw)
	if errors.Is(err, dedup.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no record for url")
		return
	}
	if err != nil {
		s.logger.Error("lookup record failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, toRecordResponse(rec, false))
}

func toRecordResponse(rec dedup.Record, duplicate bool) recordResponse {
	return recordResponse{
		ID:        rec.ID,
		Canonical: rec.Canonical,
		FirstURL:  rec.FirstURL,
		Platform:  rec.Platform,
		CreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
		Duplicate: duplicate,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
