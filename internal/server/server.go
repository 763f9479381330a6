package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"tanya-chat/internal/config"
	"tanya-chat/internal/logger"
	"tanya-chat/internal/types"
	"tanya-chat/internal/upstream"
)

// ErrMissingContents is returned when the request body has no contents field.
var ErrMissingContents = errors.New("contents is required")

type Server struct {
	router *chi.Mux
	relay  upstream.Relay
	cfg    config.Config
	log    *logger.Logger
}

func NewServer(cfg config.Config, relay upstream.Relay, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	r := chi.NewRouter()
	r.Use(requestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.AllowedOrigin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))

	s := &Server{
		router: r,
		relay:  relay,
		cfg:    cfg,
		log:    log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	// Method checks happen in handleChat so that wrong methods get a plain-text 405.
	s.router.HandleFunc("/.netlify/functions/chat", s.handleChat)
	s.router.HandleFunc("/api/chat", s.handleChat)
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "provider": s.cfg.Provider})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Warn("[relay] invalid JSON body", logrus.Fields{"error": err.Error()})
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("invalid JSON body: %v", err))
		return
	}
	if len(bytes.TrimSpace(req.Contents)) == 0 || bytes.Equal(bytes.TrimSpace(req.Contents), []byte("null")) {
		s.writeError(w, http.StatusInternalServerError, ErrMissingContents.Error())
		return
	}

	resp, err := s.relay.Forward(r.Context(), req.Contents)
	if err != nil {
		s.log.Error("[relay] upstream request failed", logrus.Fields{"error": err.Error()})
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.log.Debug("[relay] upstream replied", logrus.Fields{"status": resp.StatusCode, "bytes": len(resp.Body)})

	w.Header().Set("Content-Type", resp.ContentType)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg})
}
