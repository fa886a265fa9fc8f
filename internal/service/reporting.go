package service

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/hoteza-pos/api/internal/domain"
	"github.com/shopspring/decimal"
)

const recentOrdersLimit = 5

// Performance is a waiter's all-time sales.
type Performance struct {
	WaiterID   int             `json:"waiter_id"`
	OrderCount int             `json:"order_count"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

type WaiterStats struct {
	domain.Waiter
	OrderCount int             `json:"orderCount"`
	TotalSales decimal.Decimal `json:"totalSales"`
}

type DailyReport struct {
	Date              domain.DateOnly `json:"date"`
	OrderCount        int             `json:"order_count"`
	Revenue           decimal.Decimal `json:"revenue"`
	Expenses          decimal.Decimal `json:"expenses"`
	Profit            decimal.Decimal `json:"profit"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

type PaymentSummary struct {
	Method string          `json:"method"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

type Dashboard struct {
	DailyReport
	ActiveWaiters   int                 `json:"active_waiters"`
	MenuItems       int                 `json:"menu_items"`
	WalletBalance   decimal.Decimal     `json:"wallet_balance"`
	Subscription    domain.Subscription `json:"subscription"`
	ByPaymentMethod []PaymentSummary    `json:"by_payment_method"`
	RecentOrders    []domain.Order      `json:"recent_orders"`
}

// Reporting derives figures from the ledger and the expense journal. Every
// call recomputes from the current state; nothing is cached.
type Reporting struct {
	st *State
}

func NewReporting(st *State) *Reporting {
	return &Reporting{st: st}
}

func (r *Reporting) DailyRevenue(d domain.DateOnly) decimal.Decimal {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.dailyRevenue(d)
}

func (r *Reporting) DailyExpenseTotal(d domain.DateOnly) decimal.Decimal {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.dailyExpenseTotal(d)
}

func (r *Reporting) DailyProfit(d domain.DateOnly) decimal.Decimal {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.dailyRevenue(d).Sub(r.dailyExpenseTotal(d))
}

// AverageOrderValue is revenue over order count for d, 0 without orders.
func (r *Reporting) AverageOrderValue(d domain.DateOnly) decimal.Decimal {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.daily(d).AverageOrderValue
}

// WaiterPerformance covers the whole order history, not a single day.
func (r *Reporting) WaiterPerformance(waiterID int) Performance {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.waiterPerformance(waiterID)
}

func (r *Reporting) Daily(d domain.DateOnly) DailyReport {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.daily(d)
}

// WaiterRoster lists every waiter with their all-time performance.
func (r *Reporting) WaiterRoster() []WaiterStats {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	out := make([]WaiterStats, 0, len(r.st.waiters))
	for _, w := range r.st.waiters {
		p := r.waiterPerformance(w.ID)
		out = append(out, WaiterStats{Waiter: w, OrderCount: p.OrderCount, TotalSales: p.TotalSales})
	}
	return out
}

func (r *Reporting) Dashboard(d domain.DateOnly) Dashboard {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	dash := Dashboard{
		DailyReport:     r.daily(d),
		ActiveWaiters:   len(r.st.waiters),
		MenuItems:       len(r.st.menuItems),
		WalletBalance:   r.st.wallet,
		Subscription:    r.st.sub,
		ByPaymentMethod: []PaymentSummary{},
		RecentOrders:    []domain.Order{},
	}

	index := map[string]int{}
	for _, o := range r.ordersOn(d) {
		i, ok := index[o.PaymentMethod]
		if !ok {
			i = len(dash.ByPaymentMethod)
			index[o.PaymentMethod] = i
			dash.ByPaymentMethod = append(dash.ByPaymentMethod, PaymentSummary{Method: o.PaymentMethod, Total: decimal.Zero})
		}
		dash.ByPaymentMethod[i].Count++
		dash.ByPaymentMethod[i].Total = dash.ByPaymentMethod[i].Total.Add(o.Total)

		if len(dash.RecentOrders) < recentOrdersLimit {
			dash.RecentOrders = append(dash.RecentOrders, o.Clone())
		}
	}
	return dash
}

func (r *Reporting) daily(d domain.DateOnly) DailyReport {
	orders := r.ordersOn(d)
	revenue := decimal.Zero
	for _, o := range orders {
		revenue = revenue.Add(o.Total)
	}
	expenses := r.dailyExpenseTotal(d)

	avg := decimal.Zero
	if len(orders) > 0 {
		avg = revenue.Div(decimal.NewFromInt(int64(len(orders))))
	}
	return DailyReport{
		Date:              d,
		OrderCount:        len(orders),
		Revenue:           revenue,
		Expenses:          expenses,
		Profit:            revenue.Sub(expenses),
		AverageOrderValue: avg,
	}
}

func (r *Reporting) ordersOn(d domain.DateOnly) []domain.Order {
	var out []domain.Order
	for _, o := range r.st.orders {
		if domain.DateOf(o.CreatedAt.Time, r.st.loc).Equal(d) {
			out = append(out, o)
		}
	}
	return out
}

func (r *Reporting) dailyRevenue(d domain.DateOnly) decimal.Decimal {
	total := decimal.Zero
	for _, o := range r.ordersOn(d) {
		total = total.Add(o.Total)
	}
	return total
}

func (r *Reporting) dailyExpenseTotal(d domain.DateOnly) decimal.Decimal {
	total := decimal.Zero
	for _, e := range r.st.expenses {
		if e.Date.Equal(d) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

func (r *Reporting) waiterPerformance(waiterID int) Performance {
	p := Performance{WaiterID: waiterID, TotalSales: decimal.Zero}
	for _, o := range r.st.orders {
		if o.WaiterID == waiterID {
			p.OrderCount++
			p.TotalSales = p.TotalSales.Add(o.Total)
		}
	}
	return p
}

// ── CSV export ──

type orderCSVRow struct {
	ID            string `csv:"order_id"`
	CreatedAt     string `csv:"created_at"`
	Waiter        string `csv:"waiter"`
	Table         int    `csv:"table"`
	Items         int    `csv:"items"`
	Total         string `csv:"total"`
	PaymentMethod string `csv:"payment_method"`
	Status        string `csv:"status"`
}

type expenseCSVRow struct {
	ID     string `csv:"expense_id"`
	Date   string `csv:"date"`
	Name   string `csv:"name"`
	Amount string `csv:"amount"`
}

// WriteOrdersCSV writes the orders of d as CSV with a header row.
func (r *Reporting) WriteOrdersCSV(w io.Writer, d domain.DateOnly) error {
	r.st.mu.Lock()
	orders := r.ordersOn(d)
	loc := r.st.loc
	r.st.mu.Unlock()

	rows := make([]orderCSVRow, 0, len(orders))
	for _, o := range orders {
		qty := 0
		for _, li := range o.Items {
			qty += li.Quantity
		}
		rows = append(rows, orderCSVRow{
			ID:            o.ID,
			CreatedAt:     o.CreatedAt.In(loc).Format("2006-01-02 15:04"),
			Waiter:        o.WaiterName,
			Table:         o.Table,
			Items:         qty,
			Total:         o.Total.StringFixed(2),
			PaymentMethod: o.PaymentMethod,
			Status:        o.Status,
		})
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("write orders csv: %w", err)
	}
	return nil
}

// WriteExpensesCSV writes the expenses of d as CSV with a header row.
func (r *Reporting) WriteExpensesCSV(w io.Writer, d domain.DateOnly) error {
	r.st.mu.Lock()
	var rows []expenseCSVRow
	for _, e := range r.st.expenses {
		if e.Date.Equal(d) {
			rows = append(rows, expenseCSVRow{
				ID:     e.ID,
				Date:   e.Date.String(),
				Name:   e.Name,
				Amount: e.Amount.StringFixed(2),
			})
		}
	}
	r.st.mu.Unlock()

	if rows == nil {
		rows = []expenseCSVRow{}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("write expenses csv: %w", err)
	}
	return nil
}
