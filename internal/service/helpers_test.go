package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hoteza-pos/api/internal/domain"
	"github.com/hoteza-pos/api/internal/enum"
	"github.com/hoteza-pos/api/internal/events"
	"github.com/hoteza-pos/api/internal/kv"
	"github.com/hoteza-pos/api/internal/repository"
	"github.com/shopspring/decimal"
)

var eat = time.FixedZone("EAT", 3*3600)

// fixture is a Services stack over the memory kv driver with a settable
// clock, deterministic ids and captured events.
type fixture struct {
	*Services
	mem  *kv.Memory
	repo *repository.Repository

	mu     sync.Mutex
	now    time.Time
	seq    int
	events []events.Event
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) setNow(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

func (f *fixture) nextInt(n int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	return f.seq % n
}

func (f *fixture) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

// newFixture builds services on snap. The clock starts at 2026-05-01 10:00 EAT.
func newFixture(t *testing.T, snap repository.Snapshot) *fixture {
	t.Helper()
	f := &fixture{
		mem: kv.NewMemory(),
		now: time.Date(2026, 5, 1, 10, 0, 0, 0, eat),
	}
	f.repo = repository.New(f.mem, nil)

	st := NewState(snap, f.repo, Options{
		Location: eat,
		Now:      f.clock,
		RandIntN: f.nextInt,
		Publisher: events.PublisherFunc(func(_ context.Context, e events.Event) {
			f.mu.Lock()
			f.events = append(f.events, e)
			f.mu.Unlock()
		}),
	})
	f.Services = NewServices(st, nil)
	return f
}

// catalogSnapshot holds waiter 1 John Doe, waiter 2 Jane Smith, and menu
// items 1 Chicken Curry 12000 and 4 Soda 2000.
func catalogSnapshot() repository.Snapshot {
	return repository.Snapshot{
		Waiters: []domain.Waiter{
			{ID: 1, Name: "John Doe", Shift: enum.ShiftMorning, Tables: "1-5,10", Color: enum.ShiftColorMorning},
			{ID: 2, Name: "Jane Smith", Shift: enum.ShiftAfternoon, Tables: "6-9,12", Color: enum.ShiftColorAfternoon},
		},
		MenuItems: []domain.MenuItem{
			{ID: 1, Name: "Chicken Curry", Price: decimal.NewFromInt(12000), Category: "Main Course", Type: enum.MenuItemTypeFood},
			{ID: 4, Name: "Soda", Price: decimal.NewFromInt(2000), Category: "Beverages", Type: enum.MenuItemTypeDrink},
		},
	}
}

func withSubscription(snap repository.Snapshot, limit, today int) repository.Snapshot {
	snap.Subscription = &domain.Subscription{
		Plan:        PlanLabel(enum.PlanBasic, limit),
		Expiry:      domain.DateOnly{Year: 2026, Month: 6, Day: 1},
		DailyLimit:  limit,
		OrdersToday: today,
		Price:       decimal.NewFromInt(10000),
	}
	snap.LastReset = domain.DateOnly{Year: 2026, Month: 5, Day: 1}
	return snap
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func priced(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func simpleOrder(waiterID int, qty int) OrderRequest {
	return OrderRequest{
		WaiterID:      waiterID,
		Table:         5,
		PaymentMethod: enum.PaymentMethodCash,
		Items:         []LineItemRequest{{MenuItemID: 1, Quantity: qty}},
	}
}
