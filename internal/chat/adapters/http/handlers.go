package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/titipin/api/internal/chat/app"
	"github.com/titipin/api/internal/chat/domain"
)

// Handler exposes HTTP endpoints for chat operations.
type Handler struct {
	service *app.Service
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// Register binds the chat handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/chats/", h.handleChat)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.TrimPrefix(r.URL.Path, "/v1/chats/")
	if trimmed == "" {
		writeError(w, http.StatusNotFound, "chat not found")
		return
	}

	switch {
	case strings.HasSuffix(strings.TrimSuffix(trimmed, "/"), "/messages"):
		chatID := strings.TrimSuffix(strings.TrimSuffix(trimmed, "/"), "/messages")
		chatID = strings.TrimSuffix(chatID, "/")
		if chatID == "" {
			writeError(w, http.StatusNotFound, "chat not found")
			return
		}
		switch r.Method {
		case http.MethodPost:
			h.submitMessage(w, r, chatID)
		case http.MethodGet:
			h.listMessages(w, r, chatID)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}

	case strings.HasSuffix(strings.TrimSuffix(trimmed, "/"), "/read"):
		chatID := strings.TrimSuffix(strings.TrimSuffix(trimmed, "/"), "/read")
		chatID = strings.TrimSuffix(chatID, "/")
		if chatID == "" {
			writeError(w, http.StatusNotFound, "chat not found")
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.markRead(w, r, chatID)

	default:
		writeError(w, http.StatusNotFound, "chat not found")
	}
}

func (h *Handler) submitMessage(w http.ResponseWriter, r *http.Request, chatID string) {
	var payload app.SubmitMessageInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	payload.ChatID = chatID

	message, err := h.service.SubmitMessage(r.Context(), payload)
	if err != nil {
		var rejected *domain.ContentRejectedError
		if errors.As(err, &rejected) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":    rejected.Error(),
				"category": rejected.Category,
			})
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"message": message})
}

func (h *Handler) listMessages(w http.ResponseWriter, r *http.Request, chatID string) {
	limit := 0
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil {
			limit = parsed
		}
	}

	messages, err := h.service.ListMessages(r.Context(), chatID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request, chatID string) {
	var payload struct {
		ReaderID string `json:"reader_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	flipped, err := h.service.MarkRead(r.Context(), chatID, payload.ReaderID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"marked_read": flipped})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
