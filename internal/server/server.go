package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"curator/internal/api"
	"curator/internal/config"
	"curator/internal/logging"
	"curator/internal/suggestions"
)

// CommentGenerator produces a reply draft from a pair of prompts. It is
// satisfied by the llm client.
type CommentGenerator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// CommentPoster publishes a comment on a Reddit submission. It is satisfied
// by the reddit client.
type CommentPoster interface {
	SubmitComment(ctx context.Context, submissionID, text string) error
}

// Server is the backend HTTP service: it owns the suggestion database and
// brokers generation and posting on behalf of review sessions.
type Server struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *suggestions.Store
	generator CommentGenerator
	poster    CommentPoster

	mux      *http.ServeMux
	listener net.Listener
	server   *http.Server
}

// New wires the HTTP service. The generator and poster may be nil in tests
// that only exercise queue endpoints.
func New(cfg *config.Config, store *suggestions.Store, generator CommentGenerator, poster CommentPoster, logger *slog.Logger) (*Server, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("server requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	srv := &Server{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "server"),
		store:     store,
		generator: generator,
		poster:    poster,
		mux:       http.NewServeMux(),
	}

	srv.mux.HandleFunc("/healthz", srv.handleHealth)
	srv.mux.HandleFunc("/suggestions", srv.handleSuggestions)
	srv.mux.HandleFunc("/suggestions/", srv.handleSuggestionAction)

	srv.server = &http.Server{
		Handler:           srv.mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Handler exposes the route table, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start begins serving on the configured bind address until the context is
// canceled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Paths.APIBind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	count, err := s.store.Count(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "suggestions": count})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func toWire(rec suggestions.Record) api.Suggestion {
	out := api.Suggestion{
		ID:               rec.SubmissionID,
		Subreddit:        rec.Subreddit,
		Title:            rec.Title,
		URL:              rec.PostURL,
		Selftext:         rec.Selftext,
		Author:           rec.Author,
		SuggestedComment: rec.SuggestedComment,
		CreatedUTC:       rec.CreatedUTC,
		AddedAt:          rec.AddedAt,
	}
	if len(rec.ImageURLs) > 0 {
		out.ImageURLs = append([]string(nil), rec.ImageURLs...)
	} else {
		out.ImageURLs = []string{}
	}
	return out
}

func fromWire(s api.Suggestion) suggestions.Record {
	return suggestions.Record{
		SubmissionID:     strings.TrimSpace(s.ID),
		Subreddit:        strings.TrimSpace(s.Subreddit),
		Title:            s.Title,
		PostURL:          s.URL,
		Selftext:         s.Selftext,
		Author:           strings.TrimSpace(s.Author),
		ImageURLs:        s.ImageURLs,
		SuggestedComment: s.SuggestedComment,
		CreatedUTC:       s.CreatedUTC,
	}
}
