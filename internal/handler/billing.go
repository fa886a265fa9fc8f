package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hoteza-pos/api/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BillingServicer is satisfied by *service.Billing.
type BillingServicer interface {
	ListVouchers() []domain.Voucher
	BuyVoucherPack(ctx context.Context, orders int) (domain.Voucher, error)
	BuyCustomVoucher(ctx context.Context, amount decimal.Decimal) (domain.Voucher, error)
	WalletBalance() decimal.Decimal
	TopUp(ctx context.Context, amount decimal.Decimal, method string) (decimal.Decimal, error)
}

// BillingHandler handles voucher and wallet endpoints. Payments are
// simulated; nothing leaves the process.
type BillingHandler struct {
	svc BillingServicer
	log *zap.SugaredLogger
}

func NewBillingHandler(svc BillingServicer, log *zap.SugaredLogger) *BillingHandler {
	return &BillingHandler{svc: svc, log: nopIfNil(log)}
}

// RegisterRoutes registers /vouchers and /wallet.
func (h *BillingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/vouchers", h.ListVouchers)
	r.Post("/vouchers", h.BuyVoucher)
	r.Get("/wallet", h.Wallet)
	r.Post("/wallet/top-up", h.TopUp)
}

// buyVoucherRequest buys a fixed pack when Orders is set, otherwise a
// custom voucher worth Amount.
type buyVoucherRequest struct {
	Orders int             `json:"orders"`
	Amount decimal.Decimal `json:"amount"`
}

type topUpRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
}

type voucherResponse struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Orders    int       `json:"orders"`
	Price     string    `json:"price"`
	Remaining int       `json:"remaining"`
}

type walletResponse struct {
	Balance string `json:"balance"`
}

func toVoucherResponse(v domain.Voucher) voucherResponse {
	return voucherResponse{ID: v.ID, Date: v.Date.Time, Orders: v.Orders, Price: money(v.Price), Remaining: v.Remaining}
}

// ListVouchers handles GET /vouchers.
func (h *BillingHandler) ListVouchers(w http.ResponseWriter, r *http.Request) {
	vouchers := h.svc.ListVouchers()
	resp := make([]voucherResponse, len(vouchers))
	for i, v := range vouchers {
		resp[i] = toVoucherResponse(v)
	}
	writeJSON(w, http.StatusOK, resp)
}

// BuyVoucher handles POST /vouchers.
func (h *BillingHandler) BuyVoucher(w http.ResponseWriter, r *http.Request) {
	var req buyVoucherRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var (
		v   domain.Voucher
		err error
	)
	if req.Orders > 0 {
		v, err = h.svc.BuyVoucherPack(r.Context(), req.Orders)
	} else {
		v, err = h.svc.BuyCustomVoucher(r.Context(), req.Amount)
	}
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	h.log.Infow("voucher purchased", "voucher_id", v.ID, "orders", v.Orders, "price", money(v.Price))
	writeJSON(w, http.StatusCreated, toVoucherResponse(v))
}

// Wallet handles GET /wallet.
func (h *BillingHandler) Wallet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, walletResponse{Balance: money(h.svc.WalletBalance())})
}

// TopUp handles POST /wallet/top-up.
func (h *BillingHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	var req topUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	balance, err := h.svc.TopUp(r.Context(), req.Amount, req.PaymentMethod)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, walletResponse{Balance: money(balance)})
}
