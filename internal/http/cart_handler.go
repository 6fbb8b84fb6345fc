package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/kirana_cart/internal/domain"
	s "github.com/fjod/kirana_cart/internal/service"
	"github.com/go-chi/chi/v5"
)

const (
	clearedMessage        = "Cart cleared"
	defaultRequestTimeout = 5 * time.Second
)

// CartService is the part of service.CartService the handlers need.
type CartService interface {
	GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error)
	ReplaceItems(ctx context.Context, userID string, items []domain.CartItem) (*domain.Cart, error)
	MergeItem(ctx context.Context, userID string, product domain.ProductRef, delta int) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) error
}

type CartHandler struct {
	service CartService
	timeout time.Duration
	log     *slog.Logger
}

func NewCartHandler(service CartService, timeout time.Duration, log *slog.Logger) *CartHandler {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &CartHandler{
		service: service,
		timeout: timeout,
		log:     log,
	}
}

type ReplaceItemsRequest struct {
	Items []domain.CartItem `json:"items"`
}

type AddItemRequest struct {
	Product  domain.ProductRef `json:"product"`
	Quantity *int              `json:"quantity"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Routes serves the cart endpoints relative to the mount point.
func (h *CartHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{userId}", h.GetCart)
	r.Post("/{userId}", h.ReplaceItems)
	r.Post("/{userId}/item", h.AddItem)
	r.Delete("/{userId}", h.ClearCart)
	return r
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.service.GetOrCreate(ctx, chi.URLParam(r, "userId"))
	if err != nil {
		h.respondError(w, r, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) ReplaceItems(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ReplaceItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	// an explicit [] clears the cart, a missing or null list is malformed
	if req.Items == nil {
		h.respondError(w, r, http.StatusBadRequest, errors.New("items is required"))
		return
	}

	cart, err := h.service.ReplaceItems(ctx, chi.URLParam(r, "userId"), req.Items)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, s.ErrCartLoad) {
			status = http.StatusInternalServerError
		}
		h.respondError(w, r, status, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusInternalServerError, errors.New("invalid JSON body"))
		return
	}
	if req.Quantity == nil {
		h.respondError(w, r, http.StatusInternalServerError, errors.New("quantity is required"))
		return
	}

	cart, err := h.service.MergeItem(ctx, chi.URLParam(r, "userId"), req.Product, *req.Quantity)
	if err != nil {
		h.respondError(w, r, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.service.Clear(ctx, chi.URLParam(r, "userId")); err != nil {
		h.respondError(w, r, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, MessageResponse{Message: clearedMessage})
}

func (h *CartHandler) respondError(w http.ResponseWriter, r *http.Request, status int, err error) {
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.log.Log(r.Context(), level, "cart request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"error", err,
	)

	respondJSON(w, status, MessageResponse{Message: err.Error()})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
