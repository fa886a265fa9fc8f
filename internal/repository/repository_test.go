package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hoteza-pos/api/internal/domain"
	"github.com/hoteza-pos/api/internal/enum"
	"github.com/hoteza-pos/api/internal/kv"
	"github.com/shopspring/decimal"
)

func TestLoad_EmptyStore(t *testing.T) {
	r := New(kv.NewMemory(), nil)

	s, err := r.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Orders) != 0 || len(s.Waiters) != 0 || len(s.MenuItems) != 0 {
		t.Fatal("expected empty collections")
	}
	if s.Subscription != nil {
		t.Fatal("expected nil subscription")
	}
	if s.Account != nil {
		t.Fatal("expected nil account")
	}
	if !s.WalletBalance.IsZero() {
		t.Fatalf("expected zero wallet, got %s", s.WalletBalance)
	}
	if !s.LastReset.IsZero() {
		t.Fatalf("expected zero last reset, got %s", s.LastReset)
	}
}

func TestSaveThenLoad(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	r := New(mem, nil)

	order := domain.Order{
		ID:         "ORD-000001",
		CreatedAt:  domain.NewTimestamp(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)),
		WaiterName: "John Doe",
		WaiterID:   1,
		Table:      5,
		Items: []domain.LineItem{
			{MenuItemID: 1, Name: "Chicken Curry", Quantity: 2, UnitPrice: decimal.NewFromInt(12000)},
		},
		Total:         decimal.NewFromInt(24000),
		PaymentMethod: enum.PaymentMethodCash,
		Status:        enum.OrderStatusPending,
	}
	sub := domain.Subscription{
		Plan:       "Basic (50 orders/day)",
		Expiry:     domain.DateOnly{Year: 2026, Month: 6, Day: 1},
		DailyLimit: 50,
		Price:      decimal.NewFromInt(10000),
	}
	reset := domain.DateOnly{Year: 2026, Month: 5, Day: 1}

	err := r.Save(ctx,
		Orders([]domain.Order{order}),
		Subscription(sub),
		WalletBalance(decimal.RequireFromString("1500.50")),
		LastReset(reset),
	)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	raw, _, _ := mem.Get(ctx, enum.KeyOrders)
	if !strings.HasPrefix(raw, `{"version":1,"data":`) {
		t.Fatalf("expected versioned envelope, got %s", raw)
	}

	s, err := r.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(s.Orders) != 1 || s.Orders[0].ID != "ORD-000001" {
		t.Fatalf("unexpected orders: %+v", s.Orders)
	}
	if !s.Orders[0].Total.Equal(decimal.NewFromInt(24000)) {
		t.Fatalf("expected total 24000, got %s", s.Orders[0].Total)
	}
	if s.Subscription == nil || s.Subscription.DailyLimit != 50 {
		t.Fatalf("unexpected subscription: %+v", s.Subscription)
	}
	if !s.WalletBalance.Equal(decimal.RequireFromString("1500.50")) {
		t.Fatalf("unexpected wallet: %s", s.WalletBalance)
	}
	if !s.LastReset.Equal(reset) {
		t.Fatalf("unexpected last reset: %s", s.LastReset)
	}
}

func TestLoad_LegacyShapes(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	_ = mem.Set(ctx, enum.KeyWaiters, `[{"id":1,"name":"John Doe","shift":"morning","tables":"1-5,10","color":"#4361ee"}]`)
	_ = mem.Set(ctx, enum.KeySubscription, `{"plan":"Basic (50 orders/day)","expiry":"2026-06-01","dailyLimit":50,"ordersToday":3,"price":10000,"autoRenew":false}`)
	_ = mem.Set(ctx, enum.KeyWalletBalance, `2500`)
	_ = mem.Set(ctx, enum.KeyLastReset, `2026-05-01`)
	_ = mem.Set(ctx, enum.KeyExpenses, `[{"name":"Groceries","amount":50000,"date":"2026-05-01"}]`)

	s, err := New(mem, nil).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(s.Waiters) != 1 || s.Waiters[0].Tables != "1-5,10" {
		t.Fatalf("unexpected waiters: %+v", s.Waiters)
	}
	if s.Subscription == nil || s.Subscription.OrdersToday != 3 {
		t.Fatalf("unexpected subscription: %+v", s.Subscription)
	}
	if !s.WalletBalance.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("unexpected wallet: %s", s.WalletBalance)
	}
	if s.LastReset != (domain.DateOnly{Year: 2026, Month: 5, Day: 1}) {
		t.Fatalf("unexpected last reset: %s", s.LastReset)
	}
	if len(s.Expenses) != 1 || s.Expenses[0].ID != "" {
		t.Fatalf("unexpected expenses: %+v", s.Expenses)
	}
}

func TestLoad_LegacyKeyNames(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	store := kv.WithPrefix(mem, "hoteza_")
	_ = mem.Set(ctx, "hoteza_walletBalance", `1500`)
	_ = mem.Set(ctx, "hoteza_lastReset", `2026-05-01`)
	_ = mem.Set(ctx, "hoteza_user", `{"name":"Admin User","email":"admin@example.com","restaurant":"Demo Restaurant","location":"Dar es Salaam","title":"Manager","profileImage":"https://via.placeholder.com/150"}`)

	s, err := New(store, nil).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !s.WalletBalance.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("wallet: got %s, want 1500", s.WalletBalance)
	}
	if s.LastReset != (domain.DateOnly{Year: 2026, Month: 5, Day: 1}) {
		t.Errorf("last reset: got %s", s.LastReset)
	}
	if s.Account == nil || s.Account.Email != "admin@example.com" {
		t.Errorf("account: got %+v", s.Account)
	}
}

func TestLoad_CurrentKeyWinsOverLegacy(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	r := New(mem, nil)
	_ = mem.Set(ctx, enum.LegacyKeyWalletBalance, `1500`)
	if err := r.Save(ctx, WalletBalance(decimal.NewFromInt(4000))); err != nil {
		t.Fatalf("save: %v", err)
	}

	s, err := r.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !s.WalletBalance.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("wallet: got %s, want 4000", s.WalletBalance)
	}
}

func TestLoad_CorruptBlobFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	_ = mem.Set(ctx, enum.KeyOrders, `[{"id":`)
	_ = mem.Set(ctx, enum.KeySubscription, `not json`)
	_ = mem.Set(ctx, enum.KeyLastReset, `yesterday-ish`)

	s, err := New(mem, nil).Load(ctx)
	if err != nil {
		t.Fatalf("corrupt blobs must not fail load: %v", err)
	}
	if len(s.Orders) != 0 {
		t.Fatalf("expected empty orders, got %+v", s.Orders)
	}
	if s.Subscription != nil {
		t.Fatal("expected nil subscription")
	}
	if !s.LastReset.IsZero() {
		t.Fatal("expected zero last reset")
	}
}

type failingGet struct {
	*kv.Memory
	err error
}

func (f failingGet) Get(context.Context, string) (string, bool, error) {
	return "", false, f.err
}

func TestLoad_StorageErrorIsReturned(t *testing.T) {
	boom := errors.New("disk gone")
	_, err := New(failingGet{Memory: kv.NewMemory(), err: boom}, nil).Load(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestSave_RollsBackEarlierKeys(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	r := New(mem, nil)

	if err := r.Save(ctx, Orders(nil), Subscription(domain.Subscription{DailyLimit: 50})); err != nil {
		t.Fatalf("seed: %v", err)
	}
	before, _, _ := mem.Get(ctx, enum.KeyOrders)

	boom := errors.New("quota exceeded")
	mem.FailSet = func(key string) error {
		if key == enum.KeySubscription {
			return boom
		}
		return nil
	}

	err := r.Save(ctx,
		Orders([]domain.Order{{ID: "ORD-1"}}),
		Subscription(domain.Subscription{DailyLimit: 50, OrdersToday: 1}),
	)
	if !errors.Is(err, boom) {
		t.Fatalf("expected save error, got %v", err)
	}

	after, _, _ := mem.Get(ctx, enum.KeyOrders)
	if after != before {
		t.Fatalf("orders not restored:\nbefore %s\nafter  %s", before, after)
	}
}

func TestSave_RollbackRemovesNewKeys(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	mem.FailSet = func(key string) error {
		if key == enum.KeyVouchers {
			return errors.New("full")
		}
		return nil
	}

	err := New(mem, nil).Save(ctx, WalletBalance(decimal.NewFromInt(100)), Vouchers(nil))
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok, _ := mem.Get(ctx, enum.KeyWalletBalance); ok {
		t.Fatal("expected wallet key removed after rollback")
	}
}

func TestLoadAccount(t *testing.T) {
	ctx := context.Background()
	r := New(kv.NewMemory(), nil)

	acct, err := r.LoadAccount(ctx)
	if err != nil || acct != nil {
		t.Fatalf("expected no account, got %+v err=%v", acct, err)
	}

	if err := r.Save(ctx, CurrentUser(domain.Account{Name: "Asha", Email: "asha@example.com"})); err != nil {
		t.Fatalf("save: %v", err)
	}
	acct, err = r.LoadAccount(ctx)
	if err != nil || acct == nil || acct.Email != "asha@example.com" {
		t.Fatalf("unexpected account %+v err=%v", acct, err)
	}
}
