package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/similarity-engine/backend/internal/engine"
	"github.com/similarity-engine/backend/internal/index"
)

type Server struct {
	Engine *engine.Engine
	Logger *logrus.Entry
	Router *http.ServeMux
}

func NewServer(eng *engine.Engine, logger *logrus.Entry) *Server {
	s := &Server{
		Engine: eng,
		Logger: logger,
		Router: http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.HandleFunc("/api/v1/similar", s.handleSimilar)
	s.Router.HandleFunc("/api/v1/rebuild", s.handleRebuild)
	s.Router.HandleFunc("/api/v1/status", s.handleStatus)
}

func (s *Server) Start(addr string) error {
	s.Logger.Infof("Starting API Server on %s", addr)
	srv := &http.Server{
		Addr:        addr,
		Handler:     s.Router,
		ReadTimeout: s.Engine.Config.Server.ReadTimeout,
	}
	return srv.ListenAndServe()
}

// Responses
type ErrorResponse struct {
	Error string `json:"error"`
}

type SimilarResponse struct {
	Title   string             `json:"title"`
	Results []SimilarTitleView `json:"results"`
}

type SimilarTitleView struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

type RebuildResponse struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
}

type StatusResponse struct {
	Ready          bool   `json:"ready"`
	Documents      int    `json:"documents"`
	VocabularySize int    `json:"vocabulary_size"`
	Mode           string `json:"mode"`
	BuiltAt        string `json:"built_at,omitempty"`
}

// Handlers

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	title := r.URL.Query().Get("title")
	if title == "" {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Query 'title' is required"})
		return
	}

	k := s.Engine.Config.Search.DefaultK
	if raw := r.URL.Query().Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Query 'k' must be an integer"})
			return
		}
		k = parsed
	}

	hits, err := s.Engine.Similar(title, k)
	if err != nil {
		switch {
		case errors.Is(err, index.ErrUnknownLabel):
			jsonResponse(w, http.StatusNotFound, ErrorResponse{Error: "Title not found"})
		case errors.Is(err, index.ErrInvalidArgument):
			jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	response := SimilarResponse{
		Title:   title,
		Results: make([]SimilarTitleView, len(hits)),
	}
	for i, hit := range hits {
		response.Results[i] = SimilarTitleView{
			Title: hit.Label,
			Score: hit.Score,
		}
	}

	jsonResponse(w, http.StatusOK, response)
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.Engine.BuildIndex(); err != nil {
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	jsonResponse(w, http.StatusOK, RebuildResponse{
		Status:    "rebuilt",
		Documents: s.Engine.Stats.Documents,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.Engine.Stats

	resp := StatusResponse{
		Ready:          s.Engine.Ready(),
		Documents:      stats.Documents,
		VocabularySize: stats.VocabularySize,
		Mode:           stats.Mode,
	}
	if !stats.BuiltAt.IsZero() {
		resp.BuiltAt = stats.BuiltAt.UTC().Format(time.RFC3339)
	}

	jsonResponse(w, http.StatusOK, resp)
}

func jsonResponse(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
