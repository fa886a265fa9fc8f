package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hoteza-pos/api/internal/domain"
	"github.com/hoteza-pos/api/internal/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MenuServicer defines the catalog methods needed by menu item handlers.
// Satisfied by *service.Catalog.
type MenuServicer interface {
	ListMenuItems(f service.MenuFilter) []domain.MenuItem
	LookupMenuItem(id int64) (domain.MenuItem, error)
	AddMenuItem(ctx context.Context, in service.MenuItemInput) (domain.MenuItem, error)
	EditMenuItem(ctx context.Context, id int64, in service.MenuItemInput) (domain.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id int64) error
}

// MenuItemHandler handles menu item CRUD endpoints.
type MenuItemHandler struct {
	svc MenuServicer
	log *zap.SugaredLogger
}

func NewMenuItemHandler(svc MenuServicer, log *zap.SugaredLogger) *MenuItemHandler {
	return &MenuItemHandler{svc: svc, log: nopIfNil(log)}
}

// RegisterRoutes registers menu item endpoints. Mounted at /menu-items.
func (h *MenuItemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type menuItemRequest struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Type     string          `json:"type"`
}

func (req menuItemRequest) input() service.MenuItemInput {
	return service.MenuItemInput{Name: req.Name, Price: req.Price, Category: req.Category, Type: req.Type}
}

type menuItemResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Category string `json:"category"`
	Type     string `json:"type"`
}

func toMenuItemResponse(m domain.MenuItem) menuItemResponse {
	return menuItemResponse{ID: m.ID, Name: m.Name, Price: money(m.Price), Category: m.Category, Type: m.Type}
}

// List handles GET /menu-items?type=&category=.
func (h *MenuItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items := h.svc.ListMenuItems(service.MenuFilter{
		Type:     r.URL.Query().Get("type"),
		Category: r.URL.Query().Get("category"),
	})
	resp := make([]menuItemResponse, len(items))
	for i, m := range items {
		resp[i] = toMenuItemResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /menu-items.
func (h *MenuItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	item, err := h.svc.AddMenuItem(r.Context(), req.input())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

// Get handles GET /menu-items/{id}.
func (h *MenuItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	item, err := h.svc.LookupMenuItem(id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Update handles PUT /menu-items/{id}. Existing orders keep the price they
// were placed with.
func (h *MenuItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	var req menuItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	item, err := h.svc.EditMenuItem(r.Context(), id, req.input())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Delete handles DELETE /menu-items/{id}.
func (h *MenuItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	if err := h.svc.DeleteMenuItem(r.Context(), id); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
