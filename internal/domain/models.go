package domain

import (
	"github.com/hoteza-pos/api/internal/enum"
	"github.com/shopspring/decimal"
)

// JSON tags follow the record shapes the browser app kept in local storage,
// so existing blobs load without migration.

type Waiter struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Shift  string `json:"shift"`
	Tables string `json:"tables"`
	Color  string `json:"color"`
}

// ShiftColor is the display colour for a shift. Afternoon and evening are
// the same shift under two labels.
func ShiftColor(shift string) string {
	switch shift {
	case enum.ShiftMorning:
		return enum.ShiftColorMorning
	case enum.ShiftAfternoon, enum.ShiftEvening:
		return enum.ShiftColorAfternoon
	case enum.ShiftNight:
		return enum.ShiftColorNight
	}
	return enum.ShiftColorDefault
}

type MenuItem struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Type     string          `json:"type"`
}

// LineItem is one order row. Name and UnitPrice are snapshots taken when
// the row was composed; they never follow later catalog edits.
type LineItem struct {
	MenuItemID int64           `json:"id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"price"`
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// TotalOf sums unit price times quantity over items.
func TotalOf(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, li := range items {
		total = total.Add(li.Subtotal())
	}
	return total
}

type Order struct {
	ID            string          `json:"id"`
	CreatedAt     Timestamp       `json:"date"`
	WaiterName    string          `json:"waiter"`
	WaiterID      int             `json:"waiterId"`
	Table         int             `json:"table"`
	Items         []LineItem      `json:"items"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"paymentMethod"`
	Status        string          `json:"status"`
}

func (o Order) IsCompleted() bool { return o.Status == enum.OrderStatusCompleted }

// Clone returns a copy that shares no slices with o.
func (o Order) Clone() Order {
	o.Items = append([]LineItem(nil), o.Items...)
	return o
}

type Expense struct {
	ID     string          `json:"id,omitempty"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Date   DateOnly        `json:"date"`
}

type Subscription struct {
	Plan        string          `json:"plan"`
	Expiry      DateOnly        `json:"expiry"`
	DailyLimit  int             `json:"dailyLimit"`
	OrdersToday int             `json:"ordersToday"`
	Price       decimal.Decimal `json:"price"`
	AutoRenew   bool            `json:"autoRenew"`
}

type Voucher struct {
	ID        string          `json:"id"`
	Date      Timestamp       `json:"date"`
	Orders    int             `json:"orders"`
	Price     decimal.Decimal `json:"price"`
	Remaining int             `json:"remaining"`
}

type Account struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Restaurant   string `json:"restaurant"`
	Location     string `json:"location"`
	Title        string `json:"title"`
	PasswordHash string `json:"passwordHash,omitempty"`
}
