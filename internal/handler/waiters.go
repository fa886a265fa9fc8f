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

// WaiterServicer defines the catalog methods needed by waiter handlers.
// Satisfied by *service.Catalog.
type WaiterServicer interface {
	ListWaiters() []domain.Waiter
	LookupWaiter(id int) (domain.Waiter, error)
	AddWaiter(ctx context.Context, id int, in service.WaiterInput) (domain.Waiter, error)
	EditWaiter(ctx context.Context, id int, in service.WaiterInput) (domain.Waiter, error)
	DeleteWaiter(ctx context.Context, id int) error
}

// PerformanceReader reports a waiter's all-time sales.
// Satisfied by *service.Reporting.
type PerformanceReader interface {
	WaiterPerformance(waiterID int) service.Performance
}

// WaiterHandler handles waiter CRUD endpoints.
type WaiterHandler struct {
	svc     WaiterServicer
	reports PerformanceReader
	log     *zap.SugaredLogger
}

func NewWaiterHandler(svc WaiterServicer, reports PerformanceReader, log *zap.SugaredLogger) *WaiterHandler {
	return &WaiterHandler{svc: svc, reports: reports, log: nopIfNil(log)}
}

// RegisterRoutes registers waiter endpoints. Mounted at /waiters.
func (h *WaiterHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Get("/{id}/performance", h.Performance)
}

// --- Request / Response types ---

type waiterRequest struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Shift  string `json:"shift"`
	Tables string `json:"tables"`
}

func (req waiterRequest) input() service.WaiterInput {
	return service.WaiterInput{Name: req.Name, Shift: req.Shift, Tables: req.Tables}
}

type waiterResponse struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Shift  string `json:"shift"`
	Tables string `json:"tables"`
	Color  string `json:"color"`
}

type performanceResponse struct {
	WaiterID   int    `json:"waiter_id"`
	OrderCount int    `json:"order_count"`
	TotalSales string `json:"total_sales"`
}

func toWaiterResponse(w domain.Waiter) waiterResponse {
	return waiterResponse{ID: w.ID, Name: w.Name, Shift: w.Shift, Tables: w.Tables, Color: w.Color}
}

func toPerformanceResponse(waiterID, count int, sales decimal.Decimal) performanceResponse {
	return performanceResponse{WaiterID: waiterID, OrderCount: count, TotalSales: money(sales)}
}

// --- Handlers ---

// List handles GET /waiters.
func (h *WaiterHandler) List(w http.ResponseWriter, r *http.Request) {
	waiters := h.svc.ListWaiters()
	resp := make([]waiterResponse, len(waiters))
	for i, wt := range waiters {
		resp[i] = toWaiterResponse(wt)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /waiters. The waiter id is chosen by the client.
func (h *WaiterHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req waiterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	waiter, err := h.svc.AddWaiter(r.Context(), req.ID, req.input())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWaiterResponse(waiter))
}

// Get handles GET /waiters/{id}.
func (h *WaiterHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid waiter ID"})
		return
	}

	waiter, err := h.svc.LookupWaiter(id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toWaiterResponse(waiter))
}

// Update handles PUT /waiters/{id}.
func (h *WaiterHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid waiter ID"})
		return
	}

	var req waiterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	waiter, err := h.svc.EditWaiter(r.Context(), id, req.input())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toWaiterResponse(waiter))
}

// Delete handles DELETE /waiters/{id}. Orders keep their waiter snapshot.
func (h *WaiterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid waiter ID"})
		return
	}

	if err := h.svc.DeleteWaiter(r.Context(), id); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Performance handles GET /waiters/{id}/performance. Figures cover the
// whole order history, including orders of since-deleted waiters.
func (h *WaiterHandler) Performance(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid waiter ID"})
		return
	}

	p := h.reports.WaiterPerformance(id)
	writeJSON(w, http.StatusOK, toPerformanceResponse(p.WaiterID, p.OrderCount, p.TotalSales))
}
