package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/shestoi/stocktracker/internal/service"
	"github.com/shestoi/stocktracker/platform/observability"
)

// Handler содержит HTTP-обработчики склада.
// Проверяет только форму запроса, доменной валидации (например, отрицательного количества) нет.
type Handler struct {
	inventoryService *service.InventoryService
	logger           *zap.Logger
}

// NewHandler создаёт новый HTTP handler
func NewHandler(inventoryService *service.InventoryService, logger *zap.Logger) *Handler {
	return &Handler{
		inventoryService: inventoryService,
		logger:           logger,
	}
}

// ItemRequest - тело PUT /items/{id}
type ItemRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity *int   `json:"quantity"`
}

// MergeItem - элемент тела POST /merge
type MergeItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity *int   `json:"quantity"`
}

// MergeRequest - тело POST /merge
type MergeRequest struct {
	Items []MergeItem `json:"items"`
}

// MergeResponse - ответ POST /merge
type MergeResponse struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// ErrorResponse - формат ошибки
type ErrorResponse struct {
	Error string `json:"error"`
}

// PutItem обрабатывает PUT /items/{id} - создание или обновление товара
func (h *Handler) PutItem(w http.ResponseWriter, r *http.Request, id string) {
	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Quantity == nil {
		h.writeError(w, r, http.StatusBadRequest, "quantity is required")
		return
	}

	item := h.inventoryService.AddOrUpdateItem(r.Context(), service.ItemInput{
		ID:       id,
		Name:     req.Name,
		Category: req.Category,
		Quantity: *req.Quantity,
	})
	writeJSON(w, http.StatusOK, item)
}

// GetItem обрабатывает GET /items/{id}
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request, id string) {
	item, err := h.inventoryService.GetItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			h.writeError(w, r, http.StatusNotFound, "item not found")
			return
		}
		h.writeError(w, r, http.StatusInternalServerError, "failed to get item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// DeleteItem обрабатывает DELETE /items/{id}. Неизвестный id - тоже 204.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request, id string) {
	h.inventoryService.RemoveItem(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

// ListItems обрабатывает GET /items
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.inventoryService.ListAll(r.Context()))
}

// ListCategories обрабатывает GET /categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.inventoryService.Categories(r.Context()))
}

// ListCategoryItems обрабатывает GET /categories/{category}/items
func (h *Handler) ListCategoryItems(w http.ResponseWriter, r *http.Request, category string) {
	writeJSON(w, http.StatusOK, h.inventoryService.ListByCategory(r.Context(), category))
}

// TopItems обрабатывает GET /top?k=N
func (h *Handler) TopItems(w http.ResponseWriter, r *http.Request) {
	k, err := strconv.Atoi(r.URL.Query().Get("k"))
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "k must be an integer")
		return
	}
	writeJSON(w, http.StatusOK, h.inventoryService.TopK(r.Context(), k))
}

// Merge обрабатывает POST /merge - слияние присланного набора товаров со складом
func (h *Handler) Merge(w http.ResponseWriter, r *http.Request) {
	var req MergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	items := make([]service.ItemInput, 0, len(req.Items))
	for i, it := range req.Items {
		if it.ID == "" || it.Quantity == nil {
			h.writeError(w, r, http.StatusBadRequest, "id and quantity are required in items["+strconv.Itoa(i)+"]")
			return
		}
		items = append(items, service.ItemInput{
			ID:       it.ID,
			Name:     it.Name,
			Category: it.Category,
			Quantity: *it.Quantity,
		})
	}

	stats := h.inventoryService.MergeItems(r.Context(), items)
	writeJSON(w, http.StatusOK, MergeResponse{Added: stats.Added, Updated: stats.Updated, Skipped: stats.Skipped})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	observability.L(r.Context(), h.logger).Warn("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", code),
		zap.String("error", msg),
	)
	writeJSON(w, code, ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
