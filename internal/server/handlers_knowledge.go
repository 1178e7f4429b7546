package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/teamboard/teamboard/internal/knowledge"
	"github.com/teamboard/teamboard/pkg/models"
)

// knowledgeRequest is the JSON body for creating or updating an item.
// Pointer fields distinguish "absent" from "zero" on update.
// SourceMessageID is only honored on create.
type knowledgeRequest struct {
	Question        *string  `json:"question"`
	Answer          *string  `json:"answer"`
	Tags            []string `json:"tags"`
	Category        *string  `json:"category"`
	IsPinned        *bool    `json:"isPinned"`
	SourceMessageID *int64   `json:"sourceMessageId"`
}

func (s *Service) handleKnowledgeList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := models.KnowledgeFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		Category: strings.TrimSpace(q.Get("category")),
		Tags:     splitTrim(q.Get("tags")),
		Limit:    parseIntParam(q.Get("limit"), models.DefaultListLimit),
		Offset:   parseIntParam(q.Get("offset"), 0),
	}
	if q.Has("isPinned") {
		pinned := q.Get("isPinned") == "true"
		filter.IsPinned = &pinned
	}

	items, err := s.knowledge.ListItems(r.Context(), filter)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Service) handleKnowledgeCreate(w http.ResponseWriter, r *http.Request) {
	var req knowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body"})
		return
	}

	in := knowledge.CreateInput{
		Tags:            req.Tags,
		Category:        req.Category,
		SourceMessageID: req.SourceMessageID,
	}
	if req.Question != nil {
		in.Question = *req.Question
	}
	if req.Answer != nil {
		in.Answer = *req.Answer
	}
	if req.IsPinned != nil {
		in.IsPinned = *req.IsPinned
	}

	item, err := s.knowledge.CreateItem(r.Context(), in)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Service) handleKnowledgeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Knowledge base item not found"})
		return
	}

	item, err := s.knowledge.GetItem(r.Context(), id)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Service) handleKnowledgeUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Knowledge base item not found"})
		return
	}

	var req knowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body"})
		return
	}

	item, err := s.knowledge.UpdateItem(r.Context(), id, knowledge.UpdateInput{
		Question: req.Question,
		Answer:   req.Answer,
		Tags:     req.Tags,
		Category: req.Category,
		IsPinned: req.IsPinned,
	})
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Service) handleKnowledgeDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Knowledge base item not found"})
		return
	}

	if err := s.knowledge.DeleteItem(r.Context(), id); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Item deleted successfully"})
}

// fromMessageRequest is the JSON body for promoting a logged exchange.
type fromMessageRequest struct {
	Tags     []string `json:"tags"`
	Category *string  `json:"category"`
	IsPinned bool     `json:"isPinned"`
}

func (s *Service) handleKnowledgeFromMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Message not found"})
		return
	}

	var req fromMessageRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body"})
			return
		}
	}

	item, err := s.knowledge.SaveFromMessage(r.Context(), id, req.Tags, req.Category, req.IsPinned)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Service) handleKnowledgeStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.knowledge.Stats(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Service) handleTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.knowledge.ListTags(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (s *Service) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.knowledge.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// parseID parses a positive int64 path parameter.
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseIntParam parses a query integer with a fallback for absent or
// malformed values.
func parseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// splitTrim splits a comma-separated list, dropping blanks.
func splitTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
