package service

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hoteza-pos/api/internal/domain"
	"github.com/hoteza-pos/api/internal/events"
	"github.com/hoteza-pos/api/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Persister writes collections. Satisfied by *repository.Repository.
type Persister interface {
	Save(ctx context.Context, changes ...repository.Change) error
}

// Repository loads and writes the whole state.
type Repository interface {
	Persister
	Load(ctx context.Context) (repository.Snapshot, error)
}

// Options configures a State. Zero values get sensible defaults.
type Options struct {
	Location  *time.Location
	Now       func() time.Time
	RandIntN  func(n int) int
	Publisher events.Publisher
	Logger    *zap.SugaredLogger
}

// State is the tenant's application state. Every component built on it
// shares its mutex; a mutation is applied to copies, persisted, and only
// then swapped in, so a failed write leaves memory untouched.
type State struct {
	mu sync.Mutex

	repo     Persister
	loc      *time.Location
	now      func() time.Time
	randIntN func(n int) int
	pub      events.Publisher
	log      *zap.SugaredLogger

	waiters   []domain.Waiter
	menuItems []domain.MenuItem
	orders    []domain.Order
	expenses  []domain.Expense
	vouchers  []domain.Voucher
	sub       domain.Subscription
	wallet    decimal.Decimal
	lastReset domain.DateOnly
	account   *domain.Account
}

// NewState builds state from a loaded snapshot. A missing subscription
// becomes the default Basic plan.
func NewState(snap repository.Snapshot, repo Persister, opts Options) *State {
	st := &State{
		repo:      repo,
		loc:       opts.Location,
		now:       opts.Now,
		randIntN:  opts.RandIntN,
		pub:       opts.Publisher,
		log:       opts.Logger,
		waiters:   snap.Waiters,
		menuItems: snap.MenuItems,
		orders:    snap.Orders,
		expenses:  snap.Expenses,
		vouchers:  snap.Vouchers,
		wallet:    snap.WalletBalance,
		lastReset: snap.LastReset,
		account:   snap.Account,
	}
	if st.loc == nil {
		st.loc = time.Local
	}
	if st.now == nil {
		st.now = time.Now
	}
	if st.randIntN == nil {
		st.randIntN = rand.IntN
	}
	if st.pub == nil {
		st.pub = events.Noop{}
	}
	if st.log == nil {
		st.log = zap.NewNop().Sugar()
	}

	if snap.Subscription != nil {
		st.sub = *snap.Subscription
	} else {
		st.sub = DefaultSubscription(st.today())
	}
	return st
}

// LoadState reads the snapshot and gives legacy expenses a stable id.
func LoadState(ctx context.Context, repo Repository, opts Options) (*State, error) {
	snap, err := repo.Load(ctx)
	if err != nil {
		return nil, persistence(err)
	}
	st := NewState(snap, repo, opts)

	assigned := false
	for i := range st.expenses {
		if st.expenses[i].ID == "" {
			st.expenses[i].ID = uuid.NewString()
			assigned = true
		}
	}
	if assigned {
		if err := repo.Save(ctx, repository.Expenses(st.expenses)); err != nil {
			st.log.Warnw("failed to persist expense ids", "error", err)
		}
	}
	return st, nil
}

// Today is the current calendar day in the configured location.
func (s *State) Today() domain.DateOnly {
	return s.today()
}

func (s *State) Location() *time.Location { return s.loc }

func (s *State) today() domain.DateOnly {
	return domain.DateOf(s.now(), s.loc)
}

func (s *State) save(ctx context.Context, changes ...repository.Change) error {
	if err := s.repo.Save(ctx, changes...); err != nil {
		s.log.Errorw("failed to persist state", "error", err)
		return persistence(err)
	}
	return nil
}

func (s *State) publish(ctx context.Context, typ string, data any) {
	s.pub.Publish(ctx, events.New(typ, data))
}

// Services bundles the components built on one State.
type Services struct {
	State     *State
	Catalog   *Catalog
	Gate      *Gate
	Ledger    *Ledger
	Journal   *Journal
	Billing   *Billing
	Accounts  *Accounts
	Reporting *Reporting
}

func NewServices(st *State, limit LimitFunc) *Services {
	catalog := NewCatalog(st)
	gate := NewGate(st, limit)
	return &Services{
		State:     st,
		Catalog:   catalog,
		Gate:      gate,
		Ledger:    NewLedger(st, catalog, gate),
		Journal:   NewJournal(st),
		Billing:   NewBilling(st),
		Accounts:  NewAccounts(st),
		Reporting: NewReporting(st),
	}
}
