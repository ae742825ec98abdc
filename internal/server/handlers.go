package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"curator/internal/api"
	"curator/internal/logging"
	"curator/internal/services"
	"curator/internal/services/llm"
)

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listSuggestions(w, r)
	case http.MethodPost:
		s.addSuggestion(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// listSuggestions purges entries past the retention window, then returns the
// remaining queue as a bare JSON array.
func (s *Server) listSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	purged, err := s.store.PurgeOlderThan(ctx, s.cfg.RetentionWindow())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if purged > 0 {
		s.logger.Info("purged stale suggestions",
			logging.String(logging.FieldEventType, "suggestions_purged"),
			logging.Int64("purged_count", purged))
	}

	records, err := s.store.List(ctx)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	payload := make([]api.Suggestion, 0, len(records))
	for _, rec := range records {
		payload = append(payload, toWire(rec))
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) addSuggestion(w http.ResponseWriter, r *http.Request) {
	var incoming api.Suggestion
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid suggestion payload")
		return
	}
	rec := fromWire(incoming)
	if rec.SubmissionID == "" {
		s.writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	inserted, err := s.store.Insert(r.Context(), rec)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !inserted {
		s.writeJSON(w, http.StatusOK, api.StatusResponse{Status: "duplicate", ID: rec.SubmissionID})
		return
	}
	s.logger.Info("suggestion added",
		logging.String(logging.FieldEventType, "suggestion_added"),
		logging.String(logging.FieldItemID, rec.SubmissionID),
		logging.String(logging.FieldForum, rec.Subreddit))
	s.writeJSON(w, http.StatusCreated, api.StatusResponse{Status: "added", ID: rec.SubmissionID})
}

// handleSuggestionAction routes /suggestions/{id} and /suggestions/{id}/{action}.
func (s *Server) handleSuggestionAction(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/suggestions/")
	if rest == "" {
		s.writeError(w, http.StatusNotFound, "suggestion not found")
		return
	}

	id, action, _ := strings.Cut(rest, "/")
	if id == "" || strings.Contains(action, "/") {
		s.writeError(w, http.StatusNotFound, "suggestion not found")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodDelete:
		s.rejectSuggestion(w, r, id)
	case action == "generate" && r.Method == http.MethodPost:
		s.generateComment(w, r, id)
	case action == "approve-and-post" && r.Method == http.MethodPost:
		s.approveAndPost(w, r, id)
	case action == "post-direct" && r.Method == http.MethodPost:
		s.postDirect(w, r, id)
	case action == "":
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	default:
		s.writeError(w, http.StatusNotFound, "unknown action "+action)
	}
}

func (s *Server) generateComment(w http.ResponseWriter, r *http.Request, id string) {
	if s.generator == nil {
		s.writeError(w, http.StatusServiceUnavailable, "comment generation is not configured")
		return
	}
	var req api.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid generate payload")
		return
	}

	ctx := r.Context()
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	prompt := llm.BuildReplyPrompt(rec.Title, rec.Selftext, rec.PostURL, rec.ImageURLs, req.UserThought)
	comment, err := s.generator.Complete(ctx, llm.ReplySystemPrompt, prompt)
	if err != nil {
		s.logger.Warn("comment generation failed",
			logging.String(logging.FieldEventType, "generate_failed"),
			logging.String(logging.FieldItemID, id),
			logging.Error(err))
		s.writeError(w, http.StatusBadGateway, "comment generation failed: "+err.Error())
		return
	}
	if err := s.store.SetSuggestedComment(ctx, id, comment); err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.logger.Info("comment generated",
		logging.String(logging.FieldEventType, "generate_completed"),
		logging.String(logging.FieldItemID, id))
	s.writeJSON(w, http.StatusOK, api.GenerateResponse{ID: id, SuggestedComment: comment})
}

func (s *Server) approveAndPost(w http.ResponseWriter, r *http.Request, id string) {
	var req api.ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid approve payload")
		return
	}
	s.postComment(w, r, id, req.ApprovedComment, "approved_comment")
}

func (s *Server) postDirect(w http.ResponseWriter, r *http.Request, id string) {
	var req api.PostDirectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid post payload")
		return
	}
	s.postComment(w, r, id, req.DirectComment, "direct_comment")
}

// postComment publishes the comment on Reddit and removes the suggestion only
// after the post succeeds, so a failed post leaves the row for another try.
func (s *Server) postComment(w http.ResponseWriter, r *http.Request, id, text, field string) {
	if s.poster == nil {
		s.writeError(w, http.StatusServiceUnavailable, "comment posting is not configured")
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		s.writeError(w, http.StatusBadRequest, field+" is required")
		return
	}

	ctx := r.Context()
	if _, err := s.store.Get(ctx, id); err != nil {
		s.writeStoreError(w, err)
		return
	}

	if err := s.poster.SubmitComment(ctx, id, text); err != nil {
		s.logger.Warn("comment post failed",
			logging.String(logging.FieldEventType, "post_failed"),
			logging.String(logging.FieldItemID, id),
			logging.Error(err))
		s.writeError(w, http.StatusBadGateway, "posting comment failed: "+err.Error())
		return
	}
	if _, err := s.store.Remove(ctx, id); err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.logger.Info("comment posted",
		logging.String(logging.FieldEventType, "comment_posted"),
		logging.String(logging.FieldItemID, id))
	s.writeJSON(w, http.StatusOK, api.StatusResponse{Status: "posted", ID: id})
}

func (s *Server) rejectSuggestion(w http.ResponseWriter, r *http.Request, id string) {
	removed, err := s.store.Remove(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if !removed {
		s.writeError(w, http.StatusNotFound, "suggestion not found")
		return
	}
	s.logger.Info("suggestion rejected",
		logging.String(logging.FieldEventType, "suggestion_rejected"),
		logging.String(logging.FieldItemID, id))
	s.writeJSON(w, http.StatusOK, api.StatusResponse{Status: "rejected", ID: id})
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "suggestion not found")
		return
	}
	s.writeError(w, http.StatusInternalServerError, err.Error())
}
