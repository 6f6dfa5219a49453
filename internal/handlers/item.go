package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/teacellar/apiserver/internal/services"
)

// ItemHandler provides HTTP handlers for collection items and their
// stock ledgers.
type ItemHandler struct {
	itemService  *services.ItemService
	stockService *services.StockService
}

// NewItemHandler constructs a handler with the provided services.
func NewItemHandler(itemService *services.ItemService, stockService *services.StockService) *ItemHandler {
	return &ItemHandler{
		itemService:  itemService,
		stockService: stockService,
	}
}

// ItemRouter registers item routes on the given router. Every route is
// authenticated; the resolved identity scopes each operation.
func ItemRouter(
	r chi.Router,
	itemService *services.ItemService,
	stockService *services.StockService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewItemHandler(itemService, stockService)

	r.Use(authMiddleware)
	r.Get("/", handler.ListItems)
	r.Post("/", handler.CreateItem)
	r.Route("/{itemID}", func(r chi.Router) {
		r.Put("/", handler.UpdateItem)
		r.Delete("/", handler.DeleteItem)
		r.Post("/stock", handler.AdjustStock)
		r.Get("/logs", handler.ListLogs)
	})
}

func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	items, err := h.itemService.List(r.Context(), identity)
	if err != nil {
		writeDomainError(w, err, "failed to list items")
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	fields, err := parseItemPayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.itemService.Create(r.Context(), identity, fields)
	if err != nil {
		writeDomainError(w, err, "failed to create item")
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	itemID, err := parseItemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	fields, err := parseItemPayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.itemService.Update(r.Context(), identity, itemID, fields)
	if err != nil {
		writeDomainError(w, err, "failed to update item")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	itemID, err := parseItemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.itemService.Delete(r.Context(), identity, itemID); err != nil {
		writeDomainError(w, err, "failed to delete item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AdjustStock records one stock movement and returns the item with its
// post-movement quantity and prices.
func (h *ItemHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	itemID, err := parseItemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	item, err := h.stockService.Adjust(r.Context(), identity, itemID, req.ChangeAmount, req.Reason, req.Note)
	if err != nil {
		writeDomainError(w, err, "failed to adjust stock")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	itemID, err := parseItemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	logs, err := h.stockService.ListLogs(r.Context(), identity, itemID)
	if err != nil {
		writeDomainError(w, err, "failed to list logs")
		return
	}

	writeJSON(w, http.StatusOK, logs)
}

// ItemPayload is the JSON body for item create/update. Owner is never part
// of the payload.
type ItemPayload struct {
	Name        string          `json:"name"`
	Kind        string          `json:"kind"`
	Category    string          `json:"category"`
	Year        *int            `json:"year"`
	Origin      string          `json:"origin"`
	Description string          `json:"description"`
	ImageKey    string          `json:"image_key"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type AdjustStockRequest struct {
	ChangeAmount int    `json:"change_amount"`
	Reason       string `json:"reason"`
	Note         string `json:"note"`
}

func parseItemID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "itemID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid item id")
	}
	return id, nil
}

func parseItemPayload(r *http.Request) (services.ItemFields, error) {
	var payload ItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return services.ItemFields{}, errors.New("invalid request")
	}

	return services.ItemFields{
		Name:        payload.Name,
		Kind:        payload.Kind,
		Category:    payload.Category,
		Year:        payload.Year,
		Origin:      payload.Origin,
		Description: payload.Description,
		ImageKey:    payload.ImageKey,
		Quantity:    payload.Quantity,
		Price:       payload.Price,
	}, nil
}
