package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/hoteza-pos/api/internal/domain"
	"github.com/hoteza-pos/api/internal/enum"
	"github.com/hoteza-pos/api/internal/repository"
	"github.com/shopspring/decimal"
)

func TestPlaceOrder_ComputesTotalFromCatalogPrice(t *testing.T) {
	f := newFixture(t, withSubscription(catalogSnapshot(), 50, 0))

	order, err := f.Ledger.PlaceOrder(context.Background(), simpleOrder(1, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !order.Total.Equal(decimal.NewFromInt(24000)) {
		t.Errorf("expected total 24000, got %s", order.Total)
	}
	if order.Status != enum.OrderStatusPending {
		t.Errorf("expected status pending, got %s", order.Status)
	}
	if order.WaiterName != "John Doe" {
		t.Errorf("expected waiter snapshot John Doe, got %s", order.WaiterName)
	}
	if len(order.Items) != 1 || order.Items[0].Name != "Chicken Curry" {
		t.Errorf("unexpected items: %+v", order.Items)
	}
	if order.ID != "ORD-000001" {
		t.Errorf("expected ORD-000001, got %s", order.ID)
	}
	if got := f.Gate.Get().OrdersToday; got != 1 {
		t.Errorf("expected ordersToday 1, got %d", got)
	}
	if types := f.eventTypes(); !slices.Equal(types, []string{enum.EventOrderPlaced}) {
		t.Errorf("expected order.placed event, got %v", types)
	}

	// Order and counter are persisted together.
	snap, err := f.repo.Load(context.Background())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(snap.Orders) != 1 || snap.Subscription == nil || snap.Subscription.OrdersToday != 1 {
		t.Fatalf("expected persisted order and counter, got %d orders, sub %+v", len(snap.Orders), snap.Subscription)
	}
}

func TestPlaceOrder_UsesCapturedUnitPrice(t *testing.T) {
	f := newFixture(t, withSubscription(catalogSnapshot(), 50, 0))

	req := simpleOrder(1, 2)
	req.Items[0].UnitPrice = priced(10000)
	order, err := f.Ledger.PlaceOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !order.Total.Equal(decimal.NewFromInt(20000)) {
		t.Errorf("expected total 20000 from captured price, got %s", order.Total)
	}
}

func TestPlaceOrder_QuotaExceeded(t *testing.T) {
	f := newFixture(t, withSubscription(catalogSnapshot(), 2, 2))

	_, err := f.Ledger.PlaceOrder(context.Background(), simpleOrder(1, 1))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if n := len(f.Ledger.ListOrders(OrderFilter{})); n != 0 {
		t.Errorf("expected ledger unchanged, got %d orders", n)
	}
	if got := f.Gate.Get().OrdersToday; got != 2 {
		t.Errorf("expected ordersToday 2, got %d", got)
	}
	if len(f.eventTypes()) != 0 {
		t.Error("expected no events")
	}
}

func TestPlaceOrder_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *OrderRequest)
		wantErr error
	}{
		{"missing waiter", func(r *OrderRequest) { r.WaiterID = 0 }, ErrValidation},
		{"unknown waiter", func(r *OrderRequest) { r.WaiterID = 9 }, ErrValidation},
		{"table zero", func(r *OrderRequest) { r.Table = 0 }, ErrOutOfRange},
		{"table above 100", func(r *OrderRequest) { r.Table = 101 }, ErrOutOfRange},
		{"bad payment method", func(r *OrderRequest) { r.PaymentMethod = "visa" }, ErrValidation},
		{"unknown menu item", func(r *OrderRequest) { r.Items[0].MenuItemID = 77 }, ErrValidation},
		{"negative price", func(r *OrderRequest) { r.Items[0].UnitPrice = priced(-1) }, ErrValidation},
		{"no items", func(r *OrderRequest) { r.Items = nil }, ErrEmptyOrder},
		{"only partial rows", func(r *OrderRequest) {
			r.Items = []LineItemRequest{{MenuItemID: 0, Quantity: 2}, {MenuItemID: 1, Quantity: 0}}
		}, ErrEmptyOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, withSubscription(catalogSnapshot(), 50, 0))
			req := simpleOrder(1, 1)
			tt.mutate(&req)

			_, err := f.Ledger.PlaceOrder(context.Background(), req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if got := f.Gate.Get().OrdersToday; got != 0 {
				t.Errorf("quota must not move on failure, got %d", got)
			}
			if _, ok, _ := f.mem.Get(context.Background(), enum.KeyOrders); ok {
				t.Error("nothing should be persisted on failure")
			}
		})
	}
}

func TestPlaceOrder_SkipsPartialRows(t *testing.T) {
	f := newFixture(t, withSubscription(catalogSnapshot(), 50, 0))

	req := simpleOrder(1, 1)
	req.Items = append(req.Items,
		LineItemRequest{MenuItemID: 0, Quantity: 3},
		LineItemRequest{MenuItemID: 4, Quantity: -1},
		LineItemRequest{MenuItemID: 4, Quantity: 3},
	)
	order, err := f.Ledger.PlaceOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 qualifying rows, got %d", len(order.Items))
	}
	if !order.Total.Equal(decimal.NewFromInt(18000)) {
		t.Errorf("expected total 18000, got %s", order.Total)
	}
}

func TestPlaceOrder_PersistenceFailureLeavesStateUntouched(t *testing.T) {
	f := newFixture(t, withSubscription(catalogSnapshot(), 50, 0))
	ctx := context.Background()

	if _, err := f.Ledger.PlaceOrder(ctx, simpleOrder(1, 1)); err != nil {
		t.Fatalf("first order: %v", err)
	}
	before, _, _ := f.mem.Get(ctx, enum.KeyOrders)

	boom := errors.New("storage full")
	f.mem.FailSet = func(key string) error {
		if key == enum.KeySubscription {
			return boom
		}
		return nil
	}

	_, err := f.Ledger.PlaceOrder(ctx, simpleOrder(1, 1))
	if !errors.Is(err, ErrPersistence) || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped persistence error, got %v", err)
	}
	if n := len(f.Ledger.ListOrders(OrderFilter{})); n != 1 {
		t.Errorf("expected 1 order in memory, got %d", n)
	}
	if got := f.Gate.Get().OrdersToday; got != 1 {
		t.Errorf("expected ordersToday 1, got %d", got)
	}
	if after, _, _ := f.mem.Get(ctx, enum.KeyOrders); after != before {
		t.Error("expected orders key restored after failed write")
	}
}

func TestPlaceOrder_RetriesOrderIDCollision(t *testing.T) {
	snap := withSubscription(catalogSnapshot(), 50, 0)
	snap.Orders = []domain.Order{{ID: "ORD-000001", WaiterID: 1, Status: enum.OrderStatusPending}}
	f := newFixture(t, snap)

	order, err := f.Ledger.PlaceOrder(context.Background(), simpleOrder(1, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != "ORD-000002" {
		t.Errorf("expected second draw ORD-000002, got %s", order.ID)
	}
}

func TestPlaceOrder_OrderIDExhausted(t *testing.T) {
	snap := withSubscription(catalogSnapshot(), 50, 0)
	snap.Orders = []domain.Order{{ID: "ORD-000007"}}
	f := newFixture(t, snap)
	f.State.randIntN = func(int) int { return 7 }

	_, err := f.Ledger.PlaceOrder(context.Background(), simpleOrder(1, 1))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if got := f.Gate.Get().OrdersToday; got != 0 {
		t.Errorf("expected ordersToday 0, got %d", got)
	}
}

func TestEditOrder(t *testing.T) {
	f := newFixture(t, withSubscription(catalogSnapshot(), 50, 0))
	ctx := context.Background()

	placed, err := f.Ledger.PlaceOrder(ctx, simpleOrder(1, 2))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	f.setNow(f.clock().Add(time.Hour))

	edited, err := f.Ledger.EditOrder(ctx, placed.ID, OrderRequest{
		WaiterID:      2,
		Table:         8,
		PaymentMethod: enum.PaymentMethodMPesa,
		Items: []LineItemRequest{
			{MenuItemID: 1, Quantity: 1, UnitPrice: &placed.Items[0].UnitPrice},
			{MenuItemID: 4, Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}

	if !edited.Total.Equal(decimal.NewFromInt(18000)) {
		t.Errorf("expected total 18000, got %s", edited.Total)
	}
	if edited.WaiterName != "Jane Smith" || edited.Table != 8 {
		t.Errorf("expected waiter and table replaced, got %s / %d", edited.WaiterName, edited.Table)
	}
	if edited.ID != placed.ID || !edited.CreatedAt.Equal(placed.CreatedAt.Time) {
		t.Error("edit must keep id and creation time")
	}
	if edited.Status != enum.OrderStatusPending {
		t.Errorf("expected status kept, got %s", edited.Status)
	}
	if got := f.Gate.Get().OrdersToday; got != 1 {
		t.Errorf("edit must not touch quota, got %d", got)
	}
}

func TestEditOrder_NotFound(t *testing.T) {
	f := newFixture(t, withSubscription(catalogSnapshot(), 50, 0))

	_, err := f.Ledger.EditOrder(context.Background(), "ORD-404", simpleOrder(1, 1))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEditOrder_ValidationKeepsOriginal(t *testing.T) {
	f := newFixture(t, withSubscription(catalogSnapshot(), 50, 0))
	ctx := context.Background()

	placed, _ := f.Ledger.PlaceOrder(ctx, simpleOrder(1, 2))
	req := simpleOrder(1, 1)
	req.Table = 200

	if _, err := f.Ledger.EditOrder(ctx, placed.ID, req); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	got, _ := f.Ledger.GetOrder(placed.ID)
	if got.Table != 5 || !got.Total.Equal(placed.Total) {
		t.Errorf("order changed after failed edit: %+v", got)
	}
}

func TestCatalogPriceChangeDoesNotAlterSavedOrder(t *testing.T) {
	f := newFixture(t, withSubscription(catalogSnapshot(), 50, 0))
	ctx := context.Background()

	placed, _ := f.Ledger.PlaceOrder(ctx, simpleOrder(1, 2))
	_, err := f.Catalog.EditMenuItem(ctx, 1, MenuItemInput{Name: "Chicken Curry", Price: decimal.NewFromInt(15000), Type: enum.MenuItemTypeFood})
	if err != nil {
		t.Fatalf("edit menu item: %v", err)
	}

	got, _ := f.Ledger.GetOrder(placed.ID)
	if !got.Total.Equal(decimal.NewFromInt(24000)) || !got.Items[0].UnitPrice.Equal(decimal.NewFromInt(12000)) {
		t.Errorf("saved order must keep its snapshot, got %+v", got)
	}
}

func TestMarkPaid(t *testing.T) {
	f := newFixture(t, withSubscription(catalogSnapshot(), 50, 0))
	ctx := context.Background()
	placed, _ := f.Ledger.PlaceOrder(ctx, simpleOrder(1, 1))

	paid, err := f.Ledger.MarkPaid(ctx, placed.ID)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.Status != enum.OrderStatusCompleted {
		t.Fatalf("expected completed, got %s", paid.Status)
	}

	raw, _, _ := f.mem.Get(ctx, enum.KeyOrders)
	again, err := f.Ledger.MarkPaid(ctx, placed.ID)
	if err != nil {
		t.Fatalf("second mark paid should not fail: %v", err)
	}
	if again.Status != enum.OrderStatusCompleted {
		t.Errorf("expected completed, got %s", again.Status)
	}
	if after, _, _ := f.mem.Get(ctx, enum.KeyOrders); after != raw {
		t.Error("paying a completed order must not write")
	}
	if types := f.eventTypes(); !slices.Equal(types, []string{enum.EventOrderPlaced, enum.EventOrderPaid}) {
		t.Errorf("unexpected events %v", types)
	}
}

func TestMarkPaid_NotFound(t *testing.T) {
	f := newFixture(t, withSubscription(catalogSnapshot(), 50, 0))
	if _, err := f.Ledger.MarkPaid(context.Background(), "ORD-404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteOrder(t *testing.T) {
	f := newFixture(t, withSubscription(catalogSnapshot(), 50, 0))
	ctx := context.Background()
	placed, _ := f.Ledger.PlaceOrder(ctx, simpleOrder(1, 1))

	if err := f.Ledger.DeleteOrder(ctx, placed.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.Ledger.GetOrder(placed.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected order gone, got %v", err)
	}
	if got := f.Gate.Get().OrdersToday; got != 1 {
		t.Errorf("delete must not restore quota, got %d", got)
	}

	if err := f.Ledger.DeleteOrder(ctx, placed.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListOrders(t *testing.T) {
	snap := catalogSnapshot()
	snap.Orders = []domain.Order{
		{ID: "ORD-1", WaiterID: 2, WaiterName: "Jane Smith"},
		{ID: "ORD-2", WaiterID: 1, WaiterName: "John Doe"},
		{ID: "ORD-3", WaiterID: 2, WaiterName: "Jane Smith"},
		{ID: "ORD-4", WaiterID: 3, WaiterName: "Adam West"},
	}
	f := newFixture(t, snap)

	ids := func(orders []domain.Order) []string {
		var out []string
		for _, o := range orders {
			out = append(out, o.ID)
		}
		return out
	}

	if got := ids(f.Ledger.ListOrders(OrderFilter{})); !slices.Equal(got, []string{"ORD-1", "ORD-2", "ORD-3", "ORD-4"}) {
		t.Errorf("expected insertion order, got %v", got)
	}
	if got := ids(f.Ledger.ListOrders(OrderFilter{WaiterID: 2})); !slices.Equal(got, []string{"ORD-1", "ORD-3"}) {
		t.Errorf("expected waiter 2 orders, got %v", got)
	}
	if got := ids(f.Ledger.ListOrders(OrderFilter{SortByWaiter: true})); !slices.Equal(got, []string{"ORD-4", "ORD-1", "ORD-3", "ORD-2"}) {
		t.Errorf("expected stable waiter-name order, got %v", got)
	}
}

func TestListOrders_ReturnsCopies(t *testing.T) {
	f := newFixture(t, withSubscription(catalogSnapshot(), 50, 0))
	placed, _ := f.Ledger.PlaceOrder(context.Background(), simpleOrder(1, 1))

	list := f.Ledger.ListOrders(OrderFilter{})
	list[0].Items[0].Quantity = 99

	got, _ := f.Ledger.GetOrder(placed.ID)
	if got.Items[0].Quantity != 1 {
		t.Fatal("caller mutation leaked into the ledger")
	}
}

// Random place/edit/delete sequences keep every order's total equal to the
// sum of its rows.
func TestTotalInvariant_RandomOperations(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	f := newFixture(t, withSubscription(catalogSnapshot(), 1000, 0))
	ctx := context.Background()
	menuIDs := []int64{0, 1, 4, 1}

	randomRequest := func() OrderRequest {
		req := OrderRequest{
			WaiterID:      1 + r.IntN(2),
			Table:         1 + r.IntN(100),
			PaymentMethod: enum.PaymentMethodTigo,
		}
		for range 1 + r.IntN(4) {
			row := LineItemRequest{MenuItemID: menuIDs[r.IntN(len(menuIDs))], Quantity: r.IntN(4)}
			if r.IntN(2) == 0 {
				row.UnitPrice = priced(int64(r.IntN(20000)))
			}
			req.Items = append(req.Items, row)
		}
		return req
	}

	for range 300 {
		orders := f.Ledger.ListOrders(OrderFilter{})
		switch op := r.IntN(3); {
		case op == 0 || len(orders) == 0:
			_, err := f.Ledger.PlaceOrder(ctx, randomRequest())
			if err != nil && !errors.Is(err, ErrEmptyOrder) {
				t.Fatalf("place: %v", err)
			}
		case op == 1:
			_, err := f.Ledger.EditOrder(ctx, orders[r.IntN(len(orders))].ID, randomRequest())
			if err != nil && !errors.Is(err, ErrEmptyOrder) {
				t.Fatalf("edit: %v", err)
			}
		default:
			if err := f.Ledger.DeleteOrder(ctx, orders[r.IntN(len(orders))].ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
		}

		for _, o := range f.Ledger.ListOrders(OrderFilter{}) {
			if !o.Total.Equal(domain.TotalOf(o.Items)) {
				t.Fatalf("order %s total %s != sum of rows %s", o.ID, o.Total, domain.TotalOf(o.Items))
			}
		}
	}
}

func TestLoadState_AssignsLegacyExpenseIDs(t *testing.T) {
	f := newFixture(t, repository.Snapshot{})
	ctx := context.Background()
	_ = f.mem.Set(ctx, enum.KeyExpenses, `[{"name":"Groceries","amount":50000,"date":"2026-05-01"}]`)

	st, err := LoadState(ctx, f.repo, Options{Location: eat})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	list := NewJournal(st).List()
	if len(list) != 1 || list[0].ID == "" {
		t.Fatalf("expected generated id, got %+v", list)
	}

	snap, _ := f.repo.Load(ctx)
	if snap.Expenses[0].ID != list[0].ID {
		t.Error("expected generated id persisted")
	}
}

func TestNewState_DefaultSubscription(t *testing.T) {
	f := newFixture(t, repository.Snapshot{})
	sub := f.Gate.Get()

	if sub.Plan != "Basic (50 orders/day)" || sub.DailyLimit != 50 {
		t.Errorf("unexpected default plan %+v", sub)
	}
	if want := (domain.DateOnly{Year: 2026, Month: 5, Day: 31}); sub.Expiry != want {
		t.Errorf("expected expiry %s, got %s", want, sub.Expiry)
	}
	if !sub.Price.Equal(decimal.NewFromInt(10000)) || sub.AutoRenew {
		t.Errorf("unexpected default price/auto-renew %+v", sub)
	}
}
