package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/hoteza-pos/api/internal/domain"
	"github.com/hoteza-pos/api/internal/enum"
	"github.com/hoteza-pos/api/internal/repository"
	"github.com/shopspring/decimal"
)

const (
	MinTable = 1
	MaxTable = 100

	maxOrderIDRetries = 3
	orderIDSpace      = 1_000_000
)

// OrderRequest is the input for placing or editing an order.
type OrderRequest struct {
	WaiterID      int
	Table         int
	PaymentMethod string
	Items         []LineItemRequest
}

// LineItemRequest is one row as composed by the client. UnitPrice is the
// price captured when the row was added; when nil the catalog price at
// request time is captured instead.
type LineItemRequest struct {
	MenuItemID int64
	Quantity   int
	UnitPrice  *decimal.Decimal
}

// OrderFilter selects and orders ListOrders output. WaiterID 0 means all.
type OrderFilter struct {
	WaiterID     int
	SortByWaiter bool
}

// Ledger owns the order set.
type Ledger struct {
	st      *State
	catalog *Catalog
	gate    *Gate
}

func NewLedger(st *State, catalog *Catalog, gate *Gate) *Ledger {
	return &Ledger{st: st, catalog: catalog, gate: gate}
}

// PlaceOrder checks the quota, validates the request against the catalog,
// stores a pending order and counts it against today's quota. The order
// and the counter are persisted together.
func (l *Ledger) PlaceOrder(ctx context.Context, req OrderRequest) (domain.Order, error) {
	l.st.mu.Lock()
	order, err := l.placeOrder(ctx, req)
	l.st.mu.Unlock()
	if err != nil {
		return domain.Order{}, err
	}

	l.st.publish(ctx, enum.EventOrderPlaced, order)
	return order, nil
}

func (l *Ledger) placeOrder(ctx context.Context, req OrderRequest) (domain.Order, error) {
	if !l.gate.canPlaceOrder() {
		return domain.Order{}, fmt.Errorf("%w: %d of %d orders used today", ErrQuotaExceeded, l.st.sub.OrdersToday, l.st.sub.DailyLimit)
	}

	order, err := l.compose(req)
	if err != nil {
		return domain.Order{}, err
	}
	order.ID, err = l.newOrderID()
	if err != nil {
		return domain.Order{}, err
	}
	order.CreatedAt = domain.NewTimestamp(l.st.now())
	order.Status = enum.OrderStatusPending

	orders := append(cloneOrders(l.st.orders), order)
	sub := l.gate.withOrderRecorded()
	if err := l.st.save(ctx, repository.Orders(orders), repository.Subscription(sub)); err != nil {
		return domain.Order{}, err
	}
	l.st.orders = orders
	l.st.sub = sub
	return order.Clone(), nil
}

// EditOrder replaces waiter, table, payment method and rows of an order and
// recomputes its total. Quota, status and creation time are untouched.
func (l *Ledger) EditOrder(ctx context.Context, id string, req OrderRequest) (domain.Order, error) {
	l.st.mu.Lock()
	order, err := l.editOrder(ctx, id, req)
	l.st.mu.Unlock()
	if err != nil {
		return domain.Order{}, err
	}

	l.st.publish(ctx, enum.EventOrderUpdated, order)
	return order, nil
}

func (l *Ledger) editOrder(ctx context.Context, id string, req OrderRequest) (domain.Order, error) {
	i := l.orderIndex(id)
	if i < 0 {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}

	edited, err := l.compose(req)
	if err != nil {
		return domain.Order{}, err
	}
	prev := l.st.orders[i]
	edited.ID = prev.ID
	edited.CreatedAt = prev.CreatedAt
	edited.Status = prev.Status

	orders := cloneOrders(l.st.orders)
	orders[i] = edited
	if err := l.st.save(ctx, repository.Orders(orders)); err != nil {
		return domain.Order{}, err
	}
	l.st.orders = orders
	return edited.Clone(), nil
}

// MarkPaid completes a pending order. Paying a completed order is a no-op.
func (l *Ledger) MarkPaid(ctx context.Context, id string) (domain.Order, error) {
	l.st.mu.Lock()
	i := l.orderIndex(id)
	if i < 0 {
		l.st.mu.Unlock()
		return domain.Order{}, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if l.st.orders[i].IsCompleted() {
		order := l.st.orders[i].Clone()
		l.st.mu.Unlock()
		return order, nil
	}

	orders := cloneOrders(l.st.orders)
	orders[i].Status = enum.OrderStatusCompleted
	if err := l.st.save(ctx, repository.Orders(orders)); err != nil {
		l.st.mu.Unlock()
		return domain.Order{}, err
	}
	l.st.orders = orders
	order := orders[i].Clone()
	l.st.mu.Unlock()

	l.st.publish(ctx, enum.EventOrderPaid, order)
	return order, nil
}

// DeleteOrder removes an order. Today's quota is not given back.
func (l *Ledger) DeleteOrder(ctx context.Context, id string) error {
	l.st.mu.Lock()
	i := l.orderIndex(id)
	if i < 0 {
		l.st.mu.Unlock()
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}

	orders := slices.Delete(cloneOrders(l.st.orders), i, i+1)
	if err := l.st.save(ctx, repository.Orders(orders)); err != nil {
		l.st.mu.Unlock()
		return err
	}
	l.st.orders = orders
	l.st.mu.Unlock()

	l.st.publish(ctx, enum.EventOrderDeleted, map[string]string{"id": id})
	return nil
}

func (l *Ledger) GetOrder(id string) (domain.Order, error) {
	l.st.mu.Lock()
	defer l.st.mu.Unlock()

	i := l.orderIndex(id)
	if i < 0 {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return l.st.orders[i].Clone(), nil
}

// ListOrders returns orders in insertion order, or stably sorted by waiter
// name when requested.
func (l *Ledger) ListOrders(f OrderFilter) []domain.Order {
	l.st.mu.Lock()
	defer l.st.mu.Unlock()

	out := make([]domain.Order, 0, len(l.st.orders))
	for _, o := range l.st.orders {
		if f.WaiterID != 0 && o.WaiterID != f.WaiterID {
			continue
		}
		out = append(out, o.Clone())
	}
	if f.SortByWaiter {
		slices.SortStableFunc(out, func(a, b domain.Order) int {
			return cmp.Compare(a.WaiterName, b.WaiterName)
		})
	}
	return out
}

func (l *Ledger) orderIndex(id string) int {
	return slices.IndexFunc(l.st.orders, func(o domain.Order) bool { return o.ID == id })
}

// compose validates req and builds the order body: waiter snapshot, table,
// payment method, rows and total.
func (l *Ledger) compose(req OrderRequest) (domain.Order, error) {
	if req.WaiterID == 0 {
		return domain.Order{}, invalid("waiter is required")
	}
	waiter, err := l.catalog.lookupWaiter(req.WaiterID)
	if err != nil {
		return domain.Order{}, invalid("waiter %d does not exist", req.WaiterID)
	}
	if req.Table < MinTable || req.Table > MaxTable {
		return domain.Order{}, fmt.Errorf("table %d must be between %d and %d: %w", req.Table, MinTable, MaxTable, ErrOutOfRange)
	}
	if !isValidPaymentMethod(req.PaymentMethod) {
		return domain.Order{}, invalid("invalid payment method %q", req.PaymentMethod)
	}

	var items []domain.LineItem
	for i, row := range req.Items {
		// Partially filled rows are skipped, not rejected.
		if row.MenuItemID == 0 || row.Quantity <= 0 {
			continue
		}
		menuItem, err := l.catalog.lookupMenuItem(row.MenuItemID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("item[%d]: %w", i, invalid("menu item %d does not exist", row.MenuItemID))
		}
		price := menuItem.Price
		if row.UnitPrice != nil {
			price = *row.UnitPrice
		}
		if price.IsNegative() {
			return domain.Order{}, fmt.Errorf("item[%d]: %w", i, invalid("price must be >= 0"))
		}
		items = append(items, domain.LineItem{
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			Quantity:   row.Quantity,
			UnitPrice:  price,
		})
	}
	if len(items) == 0 {
		return domain.Order{}, ErrEmptyOrder
	}

	return domain.Order{
		WaiterName:    waiter.Name,
		WaiterID:      waiter.ID,
		Table:         req.Table,
		Items:         items,
		Total:         domain.TotalOf(items),
		PaymentMethod: req.PaymentMethod,
	}, nil
}

// newOrderID draws a random ORD-xxxxxx id, retrying on collision.
func (l *Ledger) newOrderID() (string, error) {
	for attempt := 0; attempt < maxOrderIDRetries; attempt++ {
		id := fmt.Sprintf("ORD-%06d", l.st.randIntN(orderIDSpace))
		if l.orderIndex(id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("allocate order id after %d attempts: %w", maxOrderIDRetries, ErrDuplicateID)
}

func isValidPaymentMethod(m string) bool {
	switch m {
	case enum.PaymentMethodCash, enum.PaymentMethodMPesa, enum.PaymentMethodAirtel,
		enum.PaymentMethodTigo, enum.PaymentMethodHalo:
		return true
	}
	return false
}

func cloneOrders(orders []domain.Order) []domain.Order {
	out := make([]domain.Order, len(orders))
	for i, o := range orders {
		out[i] = o.Clone()
	}
	return out
}
