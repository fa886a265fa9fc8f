// Package repository maps the application collections onto kv blobs.
//
// Blobs are written as {"version":N,"data":...}. Blobs without a version tag
// are read as the legacy browser shapes, and keys the browser named
// differently are read from their old name when the current one is absent.
// Anything unreadable is treated as absent so a corrupt key degrades to
// default state instead of failing boot.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hoteza-pos/api/internal/domain"
	"github.com/hoteza-pos/api/internal/enum"
	"github.com/hoteza-pos/api/internal/kv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const SchemaVersion = 1

type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Snapshot is everything persisted for the tenant. Subscription and Account
// are nil when the key was absent or unreadable.
type Snapshot struct {
	Waiters       []domain.Waiter
	MenuItems     []domain.MenuItem
	Orders        []domain.Order
	Expenses      []domain.Expense
	Vouchers      []domain.Voucher
	Subscription  *domain.Subscription
	WalletBalance decimal.Decimal
	LastReset     domain.DateOnly
	Account       *domain.Account
}

var legacyKeys = map[string]string{
	enum.KeyWalletBalance: enum.LegacyKeyWalletBalance,
	enum.KeyLastReset:     enum.LegacyKeyLastReset,
	enum.KeyCurrentUser:   enum.LegacyKeyCurrentUser,
}

type Repository struct {
	store kv.Store
	log   *zap.SugaredLogger
}

func New(store kv.Store, log *zap.SugaredLogger) *Repository {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Repository{store: store, log: log}
}

// Load reads every key. Only storage errors are returned.
func (r *Repository) Load(ctx context.Context) (Snapshot, error) {
	var s Snapshot

	loaders := []struct {
		key string
		dst any
	}{
		{enum.KeyWaiters, &s.Waiters},
		{enum.KeyMenuItems, &s.MenuItems},
		{enum.KeyOrders, &s.Orders},
		{enum.KeyExpenses, &s.Expenses},
		{enum.KeyVouchers, &s.Vouchers},
	}
	for _, l := range loaders {
		if _, err := r.load(ctx, l.key, l.dst); err != nil {
			return Snapshot{}, err
		}
	}

	var sub domain.Subscription
	ok, err := r.load(ctx, enum.KeySubscription, &sub)
	if err != nil {
		return Snapshot{}, err
	}
	if ok {
		s.Subscription = &sub
	}

	var acct domain.Account
	ok, err = r.load(ctx, enum.KeyCurrentUser, &acct)
	if err != nil {
		return Snapshot{}, err
	}
	if ok {
		s.Account = &acct
	}

	if _, err := r.load(ctx, enum.KeyWalletBalance, &s.WalletBalance); err != nil {
		return Snapshot{}, err
	}

	s.LastReset, err = r.loadLastReset(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	return s, nil
}

// LoadAccount reads only the signed-up account.
func (r *Repository) LoadAccount(ctx context.Context) (*domain.Account, error) {
	var acct domain.Account
	ok, err := r.load(ctx, enum.KeyCurrentUser, &acct)
	if err != nil || !ok {
		return nil, err
	}
	return &acct, nil
}

// get reads key, falling back to its legacy name.
func (r *Repository) get(ctx context.Context, key string) (string, bool, error) {
	raw, ok, err := r.store.Get(ctx, key)
	if err != nil || ok {
		return raw, ok, err
	}
	legacy, found := legacyKeys[key]
	if !found {
		return "", false, nil
	}
	raw, ok, err = r.store.Get(ctx, legacy)
	if err == nil && ok {
		r.log.Infow("read legacy key", "key", key, "legacy_key", legacy)
	}
	return raw, ok, err
}

func (r *Repository) load(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := r.get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return false, nil
	}
	if err := decode(raw, dst); err != nil {
		r.log.Warnw("unreadable blob, using default", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

// loadLastReset also accepts the bare YYYY-MM-DD string the browser stored.
func (r *Repository) loadLastReset(ctx context.Context) (domain.DateOnly, error) {
	raw, ok, err := r.get(ctx, enum.KeyLastReset)
	if err != nil {
		return domain.DateOnly{}, fmt.Errorf("load %s: %w", enum.KeyLastReset, err)
	}
	if !ok {
		return domain.DateOnly{}, nil
	}
	var d domain.DateOnly
	if err := decode(raw, &d); err == nil {
		return d, nil
	}
	d, err = domain.ParseDate(raw)
	if err != nil {
		r.log.Warnw("unreadable blob, using default", "key", enum.KeyLastReset, "error", err)
		return domain.DateOnly{}, nil
	}
	return d, nil
}

func decode(raw string, dst any) error {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err == nil && env.Version > 0 && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, dst)
	}
	return json.Unmarshal([]byte(raw), dst)
}

func encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(envelope{Version: SchemaVersion, Data: data})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Change is one key to write in Save.
type Change struct {
	key   string
	value any
}

func Waiters(v []domain.Waiter) Change {
	return Change{enum.KeyWaiters, v}
}

func MenuItems(v []domain.MenuItem) Change {
	return Change{enum.KeyMenuItems, v}
}

func Orders(v []domain.Order) Change {
	return Change{enum.KeyOrders, v}
}

func Expenses(v []domain.Expense) Change {
	return Change{enum.KeyExpenses, v}
}

func Vouchers(v []domain.Voucher) Change {
	return Change{enum.KeyVouchers, v}
}

func Subscription(v domain.Subscription) Change {
	return Change{enum.KeySubscription, v}
}

func WalletBalance(v decimal.Decimal) Change {
	return Change{enum.KeyWalletBalance, v}
}

func LastReset(v domain.DateOnly) Change {
	return Change{enum.KeyLastReset, v}
}

func CurrentUser(v domain.Account) Change {
	return Change{enum.KeyCurrentUser, v}
}

// Save writes changes in order. When a write fails, keys already written
// by this call are put back to their previous raw value.
func (r *Repository) Save(ctx context.Context, changes ...Change) error {
	type previous struct {
		key    string
		raw    string
		exists bool
	}
	var written []previous

	rollback := func() {
		for i := len(written) - 1; i >= 0; i-- {
			p := written[i]
			var err error
			if p.exists {
				err = r.store.Set(ctx, p.key, p.raw)
			} else {
				err = r.store.Remove(ctx, p.key)
			}
			if err != nil {
				r.log.Errorw("rollback failed", "key", p.key, "error", err)
			}
		}
	}

	for _, c := range changes {
		value, err := encode(c.value)
		if err != nil {
			rollback()
			return fmt.Errorf("encode %s: %w", c.key, err)
		}
		raw, exists, err := r.store.Get(ctx, c.key)
		if err != nil {
			rollback()
			return fmt.Errorf("save %s: %w", c.key, err)
		}
		if err := r.store.Set(ctx, c.key, value); err != nil {
			rollback()
			return fmt.Errorf("save %s: %w", c.key, err)
		}
		written = append(written, previous{key: c.key, raw: raw, exists: exists})
	}
	return nil
}
