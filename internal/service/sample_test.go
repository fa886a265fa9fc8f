package service

import (
	"context"
	"testing"
	"time"

	"github.com/hoteza-pos/api/internal/kv"
	"github.com/hoteza-pos/api/internal/repository"
)

func TestSampleData(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, eat)
	s := SampleData(now, eat)

	if len(s.Waiters) != 3 || len(s.MenuItems) != 5 || len(s.Orders) != 2 || len(s.Expenses) != 2 || len(s.Vouchers) != 2 {
		t.Fatalf("unexpected sizes: %d waiters, %d items, %d orders, %d expenses, %d vouchers",
			len(s.Waiters), len(s.MenuItems), len(s.Orders), len(s.Expenses), len(s.Vouchers))
	}
	for _, o := range s.Orders {
		var sum int64
		for _, li := range o.Items {
			sum += li.UnitPrice.IntPart() * int64(li.Quantity)
		}
		if o.Total.IntPart() != sum {
			t.Errorf("order %s: total %s, lines sum to %d", o.ID, o.Total, sum)
		}
	}
}

func TestSampleChanges_LoadBack(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, eat)
	repo := repository.New(kv.NewMemory(), nil)

	if err := repo.Save(ctx, SampleChanges(now, eat)...); err != nil {
		t.Fatalf("save: %v", err)
	}
	st, err := LoadState(ctx, repo, Options{Location: eat, Now: func() time.Time { return now }})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	svc := NewServices(st, nil)

	if got := len(svc.Ledger.ListOrders(OrderFilter{})); got != 2 {
		t.Errorf("orders: got %d, want 2", got)
	}
	// 2x12000 + 2x2000 + 15000 + 8000
	if got := svc.Reporting.DailyRevenue(st.Today()).IntPart(); got != 51000 {
		t.Errorf("revenue: got %d, want 51000", got)
	}
}
