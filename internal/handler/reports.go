package handler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hoteza-pos/api/internal/domain"
	"github.com/hoteza-pos/api/internal/service"
	"go.uber.org/zap"
)

// ReportServicer defines the reporting methods needed by report handlers.
// Satisfied by *service.Reporting.
type ReportServicer interface {
	Daily(d domain.DateOnly) service.DailyReport
	WaiterRoster() []service.WaiterStats
	Dashboard(d domain.DateOnly) service.Dashboard
	WriteOrdersCSV(w io.Writer, d domain.DateOnly) error
	WriteExpensesCSV(w io.Writer, d domain.DateOnly) error
}

// ReportsHandler serves derived figures. Every request recomputes from the
// current ledger.
type ReportsHandler struct {
	svc   ReportServicer
	today func() domain.DateOnly
	log   *zap.SugaredLogger
}

func NewReportsHandler(svc ReportServicer, today func() domain.DateOnly, log *zap.SugaredLogger) *ReportsHandler {
	return &ReportsHandler{svc: svc, today: today, log: nopIfNil(log)}
}

// RegisterRoutes registers report endpoints. Mounted at /reports.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/daily", h.Daily)
	r.Get("/waiters", h.Waiters)
	r.Get("/orders.csv", h.OrdersCSV)
	r.Get("/expenses.csv", h.ExpensesCSV)
}

// --- Response types ---

type dailyReportResponse struct {
	Date              string `json:"date"`
	OrderCount        int    `json:"order_count"`
	Revenue           string `json:"revenue"`
	Expenses          string `json:"expenses"`
	Profit            string `json:"profit"`
	AverageOrderValue string `json:"average_order_value"`
}

type waiterStatsResponse struct {
	waiterResponse
	OrderCount int    `json:"order_count"`
	TotalSales string `json:"total_sales"`
}

type paymentSummaryResponse struct {
	Method string `json:"method"`
	Count  int    `json:"count"`
	Total  string `json:"total"`
}

type dashboardResponse struct {
	dailyReportResponse
	ActiveWaiters   int                      `json:"active_waiters"`
	MenuItems       int                      `json:"menu_items"`
	WalletBalance   string                   `json:"wallet_balance"`
	Subscription    subscriptionResponse     `json:"subscription"`
	ByPaymentMethod []paymentSummaryResponse `json:"by_payment_method"`
	RecentOrders    []orderResponse          `json:"recent_orders"`
}

func toDailyReportResponse(d service.DailyReport) dailyReportResponse {
	return dailyReportResponse{
		Date:              d.Date.String(),
		OrderCount:        d.OrderCount,
		Revenue:           money(d.Revenue),
		Expenses:          money(d.Expenses),
		Profit:            money(d.Profit),
		AverageOrderValue: money(d.AverageOrderValue),
	}
}

func toDashboardResponse(d service.Dashboard) dashboardResponse {
	methods := make([]paymentSummaryResponse, len(d.ByPaymentMethod))
	for i, p := range d.ByPaymentMethod {
		methods[i] = paymentSummaryResponse{Method: p.Method, Count: p.Count, Total: money(p.Total)}
	}
	sub := d.Subscription
	return dashboardResponse{
		dailyReportResponse: toDailyReportResponse(d.DailyReport),
		ActiveWaiters:       d.ActiveWaiters,
		MenuItems:           d.MenuItems,
		WalletBalance:       money(d.WalletBalance),
		Subscription:        toSubscriptionResponse(sub, sub.OrdersToday < sub.DailyLimit),
		ByPaymentMethod:     methods,
		RecentOrders:        toOrderResponses(d.RecentOrders),
	}
}

// --- Handlers ---

// Daily handles GET /reports/daily?date=YYYY-MM-DD.
func (h *ReportsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	d, err := dateParam(r, h.today)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}
	writeJSON(w, http.StatusOK, toDailyReportResponse(h.svc.Daily(d)))
}

// Waiters handles GET /reports/waiters: the roster with all-time sales.
func (h *ReportsHandler) Waiters(w http.ResponseWriter, r *http.Request) {
	roster := h.svc.WaiterRoster()
	resp := make([]waiterStatsResponse, len(roster))
	for i, s := range roster {
		resp[i] = waiterStatsResponse{
			waiterResponse: toWaiterResponse(s.Waiter),
			OrderCount:     s.OrderCount,
			TotalSales:     money(s.TotalSales),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Dashboard handles GET /dashboard?date=YYYY-MM-DD.
func (h *ReportsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := dateParam(r, h.today)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}
	writeJSON(w, http.StatusOK, toDashboardResponse(h.svc.Dashboard(d)))
}

// OrdersCSV handles GET /reports/orders.csv?date=YYYY-MM-DD.
func (h *ReportsHandler) OrdersCSV(w http.ResponseWriter, r *http.Request) {
	h.writeCSV(w, r, "orders", h.svc.WriteOrdersCSV)
}

// ExpensesCSV handles GET /reports/expenses.csv?date=YYYY-MM-DD.
func (h *ReportsHandler) ExpensesCSV(w http.ResponseWriter, r *http.Request) {
	h.writeCSV(w, r, "expenses", h.svc.WriteExpensesCSV)
}

// writeCSV renders into a buffer first so a failure can still produce a
// JSON error instead of a truncated file.
func (h *ReportsHandler) writeCSV(w http.ResponseWriter, r *http.Request, name string, render func(io.Writer, domain.DateOnly) error) {
	d, err := dateParam(r, h.today)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	var buf bytes.Buffer
	if err := render(&buf, d); err != nil {
		writeError(w, h.log, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s.csv"`, name, d))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
