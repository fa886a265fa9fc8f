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

// ExpenseServicer is satisfied by *service.Journal.
type ExpenseServicer interface {
	List() []domain.Expense
	Add(ctx context.Context, in service.ExpenseInput) (domain.Expense, error)
	Edit(ctx context.Context, id string, in service.ExpenseInput) (domain.Expense, error)
	Delete(ctx context.Context, id string) error
}

type ExpenseHandler struct {
	svc ExpenseServicer
	log *zap.SugaredLogger
}

func NewExpenseHandler(svc ExpenseServicer, log *zap.SugaredLogger) *ExpenseHandler {
	return &ExpenseHandler{svc: svc, log: nopIfNil(log)}
}

// RegisterRoutes registers expense endpoints. Mounted at /expenses.
func (h *ExpenseHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// expenseRequest.Date is YYYY-MM-DD; empty means today.
type expenseRequest struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
}

func (req expenseRequest) input() (service.ExpenseInput, error) {
	in := service.ExpenseInput{Name: req.Name, Amount: req.Amount}
	if req.Date != "" {
		d, err := domain.ParseDate(req.Date)
		if err != nil {
			return service.ExpenseInput{}, err
		}
		in.Date = d
	}
	return in, nil
}

type expenseResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Date   string `json:"date"`
}

func toExpenseResponse(e domain.Expense) expenseResponse {
	return expenseResponse{ID: e.ID, Name: e.Name, Amount: money(e.Amount), Date: e.Date.String()}
}

// List handles GET /expenses, newest first.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	expenses := h.svc.List()
	resp := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = toExpenseResponse(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /expenses.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	in, err := req.input()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	expense, err := h.svc.Add(r.Context(), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

// Update handles PUT /expenses/{id}.
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	in, err := req.input()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	expense, err := h.svc.Edit(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(expense))
}

// Delete handles DELETE /expenses/{id}.
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
