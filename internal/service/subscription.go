package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/hoteza-pos/api/internal/domain"
	"github.com/hoteza-pos/api/internal/enum"
	"github.com/hoteza-pos/api/internal/repository"
	"github.com/shopspring/decimal"
)

const defaultSubscriptionDays = 30

// Plan is a subscription tier. Plans that are not self-service are sold
// by contact only.
type Plan struct {
	Name        string          `json:"name"`
	DailyLimit  int             `json:"daily_limit"`
	Price       decimal.Decimal `json:"price"`
	SelfService bool            `json:"self_service"`
}

var Plans = []Plan{
	{Name: enum.PlanBasic, DailyLimit: 50, Price: decimal.NewFromInt(10000), SelfService: true},
	{Name: enum.PlanProfessional, DailyLimit: 100, Price: decimal.NewFromInt(12000), SelfService: true},
	{Name: enum.PlanEnterprise, SelfService: false},
}

// PlanLabel is the stored plan name, e.g. "Basic (50 orders/day)".
func PlanLabel(name string, dailyLimit int) string {
	return fmt.Sprintf("%s (%d orders/day)", name, dailyLimit)
}

func FindPlan(name string) (Plan, bool) {
	for _, p := range Plans {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Plan{}, false
}

// DefaultSubscription is the Basic plan running for 30 days from today.
func DefaultSubscription(today domain.DateOnly) domain.Subscription {
	basic := Plans[0]
	return domain.Subscription{
		Plan:       PlanLabel(basic.Name, basic.DailyLimit),
		Expiry:     today.AddDays(defaultSubscriptionDays),
		DailyLimit: basic.DailyLimit,
		Price:      basic.Price,
	}
}

// LimitFunc yields the number of orders allowed today. Vouchers are
// recorded but not counted; a LimitFunc that adds their remaining orders
// would change that.
type LimitFunc func(sub domain.Subscription, vouchers []domain.Voucher) int

func DailyLimitOnly(sub domain.Subscription, _ []domain.Voucher) int {
	return sub.DailyLimit
}

// Gate enforces the daily order quota of the subscription.
type Gate struct {
	st    *State
	limit LimitFunc
}

func NewGate(st *State, limit LimitFunc) *Gate {
	if limit == nil {
		limit = DailyLimitOnly
	}
	return &Gate{st: st, limit: limit}
}

func (g *Gate) Get() domain.Subscription {
	g.st.mu.Lock()
	defer g.st.mu.Unlock()
	return g.st.sub
}

func (g *Gate) CanPlaceOrder() bool {
	g.st.mu.Lock()
	defer g.st.mu.Unlock()
	return g.canPlaceOrder()
}

func (g *Gate) canPlaceOrder() bool {
	return g.st.sub.OrdersToday < g.limit(g.st.sub, g.st.vouchers)
}

// RecordOrderPlaced counts one order against today's quota. It does not
// check capacity; callers check CanPlaceOrder under the same lock.
func (g *Gate) RecordOrderPlaced(ctx context.Context) error {
	g.st.mu.Lock()
	defer g.st.mu.Unlock()

	next := g.withOrderRecorded()
	if err := g.st.save(ctx, repository.Subscription(next)); err != nil {
		return err
	}
	g.st.sub = next
	return nil
}

func (g *Gate) withOrderRecorded() domain.Subscription {
	next := g.st.sub
	next.OrdersToday++
	return next
}

// RolloverIfNewDay resets today's counter when current differs from the
// last reset marker. It reports whether a reset happened.
func (g *Gate) RolloverIfNewDay(ctx context.Context, current domain.DateOnly) (bool, error) {
	g.st.mu.Lock()
	if g.st.lastReset.Equal(current) {
		g.st.mu.Unlock()
		return false, nil
	}

	next := g.st.sub
	next.OrdersToday = 0
	if err := g.st.save(ctx, repository.Subscription(next), repository.LastReset(current)); err != nil {
		g.st.mu.Unlock()
		return false, err
	}
	g.st.sub = next
	g.st.lastReset = current
	g.st.mu.Unlock()

	g.st.publish(ctx, enum.EventSubscriptionRollover, map[string]string{"date": current.String()})
	return true, nil
}

// UpgradePlan replaces the plan, resets today's counter and runs the new
// plan for one month from today. AutoRenew is kept.
func (g *Gate) UpgradePlan(ctx context.Context, name string, dailyLimit int, price decimal.Decimal) (domain.Subscription, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Subscription{}, invalid("plan name is required")
	}
	if dailyLimit <= 0 {
		return domain.Subscription{}, invalid("daily limit must be > 0")
	}
	if price.IsNegative() {
		return domain.Subscription{}, invalid("price must be >= 0")
	}

	g.st.mu.Lock()
	next := domain.Subscription{
		Plan:        PlanLabel(name, dailyLimit),
		Expiry:      g.st.today().AddMonths(1),
		DailyLimit:  dailyLimit,
		OrdersToday: 0,
		Price:       price,
		AutoRenew:   g.st.sub.AutoRenew,
	}
	if err := g.st.save(ctx, repository.Subscription(next)); err != nil {
		g.st.mu.Unlock()
		return domain.Subscription{}, err
	}
	g.st.sub = next
	g.st.mu.Unlock()

	g.st.publish(ctx, enum.EventSubscriptionUpgraded, next)
	return next, nil
}

// UpgradeTo switches to a named self-service plan. Selecting the plan
// already in use changes nothing.
func (g *Gate) UpgradeTo(ctx context.Context, planName string) (domain.Subscription, error) {
	p, ok := FindPlan(planName)
	if !ok {
		return domain.Subscription{}, invalid("unknown plan %q", planName)
	}
	if !p.SelfService {
		return domain.Subscription{}, invalid("the %s plan is arranged through sales", p.Name)
	}

	current := g.Get()
	if current.Plan == PlanLabel(p.Name, p.DailyLimit) {
		return current, nil
	}
	return g.UpgradePlan(ctx, p.Name, p.DailyLimit, p.Price)
}

func (g *Gate) SetAutoRenew(ctx context.Context, on bool) (domain.Subscription, error) {
	g.st.mu.Lock()
	defer g.st.mu.Unlock()

	next := g.st.sub
	next.AutoRenew = on
	if err := g.st.save(ctx, repository.Subscription(next)); err != nil {
		return domain.Subscription{}, err
	}
	g.st.sub = next
	return next, nil
}
