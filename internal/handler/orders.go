package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hoteza-pos/api/internal/domain"
	"github.com/hoteza-pos/api/internal/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderServicer defines the ledger methods needed by order handlers.
// Satisfied by *service.Ledger; narrow interface for testability.
type OrderServicer interface {
	PlaceOrder(ctx context.Context, req service.OrderRequest) (domain.Order, error)
	EditOrder(ctx context.Context, id string, req service.OrderRequest) (domain.Order, error)
	MarkPaid(ctx context.Context, id string) (domain.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	GetOrder(id string) (domain.Order, error)
	ListOrders(f service.OrderFilter) []domain.Order
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc OrderServicer
	log *zap.SugaredLogger
}

func NewOrderHandler(svc OrderServicer, log *zap.SugaredLogger) *OrderHandler {
	return &OrderHandler{svc: svc, log: nopIfNil(log)}
}

// RegisterRoutes registers order endpoints. Mounted at /orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/pay", h.Pay)
}

// --- Request / Response types ---

type orderRequest struct {
	WaiterID      int                `json:"waiter_id"`
	Table         int                `json:"table"`
	PaymentMethod string             `json:"payment_method"`
	Items         []orderItemRequest `json:"items"`
}

// orderItemRequest carries the unit price the client captured when the row
// was added. Omitting it captures the current catalog price.
type orderItemRequest struct {
	MenuItemID int64            `json:"menu_item_id"`
	Quantity   int              `json:"quantity"`
	UnitPrice  *decimal.Decimal `json:"unit_price"`
}

func (req orderRequest) toService() service.OrderRequest {
	items := make([]service.LineItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.LineItemRequest{
			MenuItemID: it.MenuItemID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
		}
	}
	return service.OrderRequest{
		WaiterID:      req.WaiterID,
		Table:         req.Table,
		PaymentMethod: req.PaymentMethod,
		Items:         items,
	}
}

type orderResponse struct {
	ID            string              `json:"id"`
	CreatedAt     time.Time           `json:"created_at"`
	WaiterID      int                 `json:"waiter_id"`
	WaiterName    string              `json:"waiter_name"`
	Table         int                 `json:"table"`
	Items         []orderItemResponse `json:"items"`
	Total         string              `json:"total"`
	PaymentMethod string              `json:"payment_method"`
	Status        string              `json:"status"`
}

type orderItemResponse struct {
	MenuItemID int64  `json:"menu_item_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
	Subtotal   string `json:"subtotal"`
}

func toOrderResponse(o domain.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, li := range o.Items {
		items[i] = orderItemResponse{
			MenuItemID: li.MenuItemID,
			Name:       li.Name,
			Quantity:   li.Quantity,
			UnitPrice:  money(li.UnitPrice),
			Subtotal:   money(li.Subtotal()),
		}
	}
	return orderResponse{
		ID:            o.ID,
		CreatedAt:     o.CreatedAt.Time,
		WaiterID:      o.WaiterID,
		WaiterName:    o.WaiterName,
		Table:         o.Table,
		Items:         items,
		Total:         money(o.Total),
		PaymentMethod: o.PaymentMethod,
		Status:        o.Status,
	}
}

func toOrderResponses(orders []domain.Order) []orderResponse {
	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	return resp
}

// --- Handlers ---

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.svc.PlaceOrder(r.Context(), req.toService())
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	h.log.Infow("order placed", "order_id", order.ID, "waiter_id", order.WaiterID, "total", money(order.Total))
	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

// List handles GET /orders?waiter_id=&sort=waiter.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var f service.OrderFilter
	if raw := r.URL.Query().Get("waiter_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid waiter_id"})
			return
		}
		f.WaiterID = id
	}
	switch sort := r.URL.Query().Get("sort"); sort {
	case "":
	case "waiter":
		f.SortByWaiter = true
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown sort %q", sort)})
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponses(h.svc.ListOrders(f)))
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.GetOrder(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// Update handles PUT /orders/{id}. The daily quota is not touched.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.svc.EditOrder(r.Context(), chi.URLParam(r, "id"), req.toService())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// Pay handles POST /orders/{id}/pay. Paying a completed order is a no-op.
func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.MarkPaid(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// Delete handles DELETE /orders/{id}. The quota slot is not given back.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
