package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/hoteza-pos/api/internal/domain"
	"github.com/hoteza-pos/api/internal/repository"
	"github.com/shopspring/decimal"
)

var (
	// MinCustomVoucherAmount is the smallest custom voucher purchase.
	MinCustomVoucherAmount = decimal.NewFromInt(1000)
	// PricePerVoucherOrder converts a custom amount into orders.
	PricePerVoucherOrder = decimal.NewFromInt(20)
	// MinTopUp is the smallest wallet top-up.
	MinTopUp = decimal.NewFromInt(1000)
)

// VoucherPack is a fixed voucher offer.
type VoucherPack struct {
	Orders int             `json:"orders"`
	Price  decimal.Decimal `json:"price"`
}

var VoucherPacks = []VoucherPack{
	{Orders: 250, Price: decimal.NewFromInt(5000)},
	{Orders: 500, Price: decimal.NewFromInt(10000)},
}

// Billing sells vouchers and tops up the wallet. Payments are simulated
// confirmations.
type Billing struct {
	st *State
}

func NewBilling(st *State) *Billing {
	return &Billing{st: st}
}

func (b *Billing) ListVouchers() []domain.Voucher {
	b.st.mu.Lock()
	defer b.st.mu.Unlock()

	out := slices.Clone(b.st.vouchers)
	if out == nil {
		out = []domain.Voucher{}
	}
	return out
}

// BuyVoucherPack buys one of the fixed packs, matched by order count.
func (b *Billing) BuyVoucherPack(ctx context.Context, orders int) (domain.Voucher, error) {
	for _, p := range VoucherPacks {
		if p.Orders == orders {
			return b.buyVoucher(ctx, p.Orders, p.Price)
		}
	}
	return domain.Voucher{}, invalid("no voucher pack of %d orders", orders)
}

// BuyCustomVoucher buys floor(amount / 20) orders.
func (b *Billing) BuyCustomVoucher(ctx context.Context, amount decimal.Decimal) (domain.Voucher, error) {
	if amount.LessThan(MinCustomVoucherAmount) {
		return domain.Voucher{}, invalid("minimum voucher amount is %s", MinCustomVoucherAmount)
	}
	orders := int(amount.Div(PricePerVoucherOrder).Floor().IntPart())
	return b.buyVoucher(ctx, orders, amount)
}

func (b *Billing) buyVoucher(ctx context.Context, orders int, price decimal.Decimal) (domain.Voucher, error) {
	b.st.mu.Lock()
	defer b.st.mu.Unlock()

	id, err := b.newVoucherID()
	if err != nil {
		return domain.Voucher{}, err
	}
	v := domain.Voucher{
		ID:        id,
		Date:      domain.NewTimestamp(b.st.now()),
		Orders:    orders,
		Price:     price,
		Remaining: orders,
	}

	next := append(slices.Clone(b.st.vouchers), v)
	if err := b.st.save(ctx, repository.Vouchers(next)); err != nil {
		return domain.Voucher{}, err
	}
	b.st.vouchers = next
	return v, nil
}

func (b *Billing) newVoucherID() (string, error) {
	for attempt := 0; attempt < maxOrderIDRetries; attempt++ {
		id := fmt.Sprintf("VOU-%06d", b.st.randIntN(orderIDSpace))
		taken := slices.ContainsFunc(b.st.vouchers, func(v domain.Voucher) bool { return v.ID == id })
		if !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("allocate voucher id after %d attempts: %w", maxOrderIDRetries, ErrDuplicateID)
}

func (b *Billing) WalletBalance() decimal.Decimal {
	b.st.mu.Lock()
	defer b.st.mu.Unlock()
	return b.st.wallet
}

// TopUp adds amount to the wallet after a simulated payment through method.
func (b *Billing) TopUp(ctx context.Context, amount decimal.Decimal, method string) (decimal.Decimal, error) {
	if amount.LessThan(MinTopUp) {
		return decimal.Zero, invalid("minimum top-up is %s", MinTopUp)
	}
	if !isValidPaymentMethod(method) {
		return decimal.Zero, invalid("invalid payment method %q", method)
	}

	b.st.mu.Lock()
	defer b.st.mu.Unlock()

	next := b.st.wallet.Add(amount)
	if err := b.st.save(ctx, repository.WalletBalance(next)); err != nil {
		return decimal.Zero, err
	}
	b.st.wallet = next
	return next, nil
}
