package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/titipin/api/internal/orders/app"
	"github.com/titipin/api/internal/orders/domain"
	"github.com/titipin/api/internal/orders/ports"
	"github.com/titipin/api/internal/tokenstore"
)

// replayTTL bounds how long a create response can be replayed for a reused
// Idempotency-Key.
const replayTTL = 24 * time.Hour

// Handler exposes HTTP endpoints for order operations.
type Handler struct {
	service *app.Service
	tokens  tokenstore.Store
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service, tokens tokenstore.Store) *Handler {
	return &Handler{service: service, tokens: tokens}
}

// Register binds the order handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/orders", h.handleOrders)
	mux.HandleFunc("/v1/orders/", h.handleOrderByID)
}

func (h *Handler) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createOrder(w, r)
	case http.MethodGet:
		h.listOrders(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleOrderByID(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.TrimPrefix(r.URL.Path, "/v1/orders/")
	if trimmed == "" {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	if id, ok := trimSuffixPath(trimmed, "/transition"); ok {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.requestTransition(w, r, id)
		return
	}

	if id, ok := trimSuffixPath(trimmed, "/payment"); ok {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.markPayment(w, r, id)
		return
	}

	id := strings.TrimSuffix(trimmed, "/")
	if id == "" {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.getOrder(w, r, id)
}

// storedResponse is the replay payload kept in the token store for a used
// Idempotency-Key.
type storedResponse struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idemKey == "" {
		writeError(w, http.StatusBadRequest, "Idempotency-Key header required")
		return
	}

	if raw, err := h.tokens.Get(ctx, "idem:"+idemKey); err == nil {
		var stored storedResponse
		if err := json.Unmarshal(raw, &stored); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(stored.StatusCode)
			_, _ = w.Write(stored.Body)
			return
		}
	} else if !errors.Is(err, tokenstore.ErrTokenNotFound) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var payload app.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	order, err := h.service.CreateOrder(ctx, payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	body, err := json.Marshal(map[string]any{"order": order})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	stored, err := json.Marshal(storedResponse{StatusCode: http.StatusCreated, Body: body})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.tokens.Put(ctx, "idem:"+idemKey, stored, replayTTL); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(body)
}

func (h *Handler) requestTransition(w http.ResponseWriter, r *http.Request, id string) {
	var payload app.TransitionInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	payload.OrderID = id

	result, err := h.service.RequestTransition(r.Context(), payload)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"order": result.Order,
		"event": result.Event,
	})
}

func (h *Handler) markPayment(w http.ResponseWriter, r *http.Request, id string) {
	var payload struct {
		PaymentStatus domain.PaymentStatus `json:"payment_status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	order, err := h.service.MarkPayment(r.Context(), id, payload.PaymentStatus)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request, id string) {
	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	filter := ports.ListFilter{}
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		status := domain.OrderStatus(statusParam)
		filter.Status = &status
	}

	if ownerParam := r.URL.Query().Get("owner_id"); ownerParam != "" {
		filter.OwnerID = &ownerParam
	}

	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		if page, err := strconv.Atoi(pageParam); err == nil {
			filter.Page = page
		}
	}

	if pageSizeParam := r.URL.Query().Get("page_size"); pageSizeParam != "" {
		if pageSize, err := strconv.Atoi(pageSizeParam); err == nil {
			filter.PageSize = pageSize
		}
	}

	orders, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// writeDomainError maps lifecycle errors onto status codes: stale versions
// are conflicts the caller can retry after reloading, illegal transitions
// are rejected outright.
func writeDomainError(w http.ResponseWriter, err error) {
	var illegal *domain.IllegalTransitionError
	if errors.As(err, &illegal) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": illegal.Error(),
			"from":  illegal.From,
			"to":    illegal.To,
			"actor": illegal.Actor,
		})
		return
	}

	var conflict *ports.ConflictError
	if errors.As(err, &conflict) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":            conflict.Error(),
			"expected_version": conflict.ExpectedVersion,
			"actual_version":   conflict.ActualVersion,
		})
		return
	}

	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	writeError(w, http.StatusBadRequest, err.Error())
}

func trimSuffixPath(path, suffix string) (string, bool) {
	if !strings.HasSuffix(path, suffix) && !strings.HasSuffix(path, suffix+"/") {
		return "", false
	}
	id := strings.TrimSuffix(path, "/")
	id = strings.TrimSuffix(id, suffix)
	id = strings.TrimSuffix(id, "/")
	if id == "" {
		return "", false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
