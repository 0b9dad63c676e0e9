// Package httpapi is the thin request layer: it marshals HTTP in and
// out of the dialogue agent and proxies the catalog endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/shopmate-assistant/assistant/contract"
)

// ChatAgent is the single operation the dialogue core exposes upward.
type ChatAgent interface {
	HandleMessage(ctx context.Context, sessionID, text string) string
}

// Catalog is the read-only product surface proxied by the API.
type Catalog interface {
	List(ctx context.Context, limit int) ([]contractx.Product, error)
	Search(ctx context.Context, query string) ([]contractx.Product, error)
	ByCategory(ctx context.Context, category string) ([]contractx.Product, error)
	Recommendations(ctx context.Context, n int) ([]contractx.Product, error)
}

type Server struct {
	agent   ChatAgent
	catalog Catalog
	mux     *http.ServeMux
}

func NewServer(agent ChatAgent, catalog Catalog) (*Server, error) {
	if agent == nil {
		return nil, fmt.Errorf("chat agent is required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog client is required")
	}

	s := &Server{agent: agent, catalog: catalog, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /api/chat", s.handleChat)
	s.mux.HandleFunc("GET /api/products", s.handleProducts)
	s.mux.HandleFunc("GET /api/products/search", s.handleSearch)
	s.mux.HandleFunc("GET /api/products/category/{category}", s.handleCategory)
	s.mux.HandleFunc("GET /api/recommendations", s.handleRecommendations)
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	reply := s.agent.HandleMessage(r.Context(), sessionID, req.Message)
	writeJSON(w, http.StatusOK, chatResponse{SessionID: sessionID, Response: reply})
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.List(r.Context(), 20)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to fetch products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	products, err := s.catalog.Search(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to search products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.ByCategory(r.Context(), r.PathValue("category"))
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to fetch products by category")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.Recommendations(r.Context(), 4)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to get recommendations")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write response failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
