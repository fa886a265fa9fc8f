package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hoteza-pos/api/internal/domain"
	"github.com/hoteza-pos/api/internal/service"
	"go.uber.org/zap"
)

// SubscriptionServicer is satisfied by *service.Gate.
type SubscriptionServicer interface {
	Get() domain.Subscription
	CanPlaceOrder() bool
	UpgradeTo(ctx context.Context, planName string) (domain.Subscription, error)
	SetAutoRenew(ctx context.Context, on bool) (domain.Subscription, error)
}

type SubscriptionHandler struct {
	svc SubscriptionServicer
	log *zap.SugaredLogger
}

func NewSubscriptionHandler(svc SubscriptionServicer, log *zap.SugaredLogger) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc, log: nopIfNil(log)}
}

// RegisterRoutes registers subscription endpoints. Mounted at /subscription.
func (h *SubscriptionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Get("/plans", h.Plans)
	r.Post("/upgrade", h.Upgrade)
	r.Put("/auto-renew", h.AutoRenew)
}

type upgradeRequest struct {
	Plan string `json:"plan"`
}

type autoRenewRequest struct {
	AutoRenew *bool `json:"auto_renew"`
}

type subscriptionResponse struct {
	Plan           string `json:"plan"`
	Expiry         string `json:"expiry"`
	DailyLimit     int    `json:"daily_limit"`
	OrdersToday    int    `json:"orders_today"`
	RemainingToday int    `json:"remaining_today"`
	Price          string `json:"price"`
	AutoRenew      bool   `json:"auto_renew"`
	CanPlaceOrder  bool   `json:"can_place_order"`
}

type planResponse struct {
	Name        string `json:"name"`
	DailyLimit  int    `json:"daily_limit"`
	Price       string `json:"price"`
	SelfService bool   `json:"self_service"`
}

func toSubscriptionResponse(s domain.Subscription, canPlace bool) subscriptionResponse {
	return subscriptionResponse{
		Plan:           s.Plan,
		Expiry:         s.Expiry.String(),
		DailyLimit:     s.DailyLimit,
		OrdersToday:    s.OrdersToday,
		RemainingToday: max(s.DailyLimit-s.OrdersToday, 0),
		Price:          money(s.Price),
		AutoRenew:      s.AutoRenew,
		CanPlaceOrder:  canPlace,
	}
}

// Get handles GET /subscription.
func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSubscriptionResponse(h.svc.Get(), h.svc.CanPlaceOrder()))
}

// Plans handles GET /subscription/plans.
func (h *SubscriptionHandler) Plans(w http.ResponseWriter, r *http.Request) {
	resp := make([]planResponse, len(service.Plans))
	for i, p := range service.Plans {
		resp[i] = planResponse{Name: p.Name, DailyLimit: p.DailyLimit, Price: money(p.Price), SelfService: p.SelfService}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Upgrade handles POST /subscription/upgrade.
func (h *SubscriptionHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	var req upgradeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Plan == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "plan is required"})
		return
	}

	sub, err := h.svc.UpgradeTo(r.Context(), req.Plan)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	h.log.Infow("subscription upgraded", "plan", sub.Plan, "expiry", sub.Expiry.String())
	writeJSON(w, http.StatusOK, toSubscriptionResponse(sub, h.svc.CanPlaceOrder()))
}

// AutoRenew handles PUT /subscription/auto-renew.
func (h *SubscriptionHandler) AutoRenew(w http.ResponseWriter, r *http.Request) {
	var req autoRenewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.AutoRenew == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "auto_renew is required"})
		return
	}

	sub, err := h.svc.SetAutoRenew(r.Context(), *req.AutoRenew)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriptionResponse(sub, h.svc.CanPlaceOrder()))
}
