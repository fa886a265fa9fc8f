package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hoteza-pos/api/internal/config"
	"github.com/hoteza-pos/api/internal/handler"
	mw "github.com/hoteza-pos/api/internal/middleware"
	"github.com/hoteza-pos/api/internal/service"
	"github.com/hoteza-pos/api/internal/ws"
	"go.uber.org/zap"
)

// New creates a Chi router with all application routes wired up.
func New(cfg *config.Config, svc *service.Services, hub *ws.Hub, log *zap.SugaredLogger) chi.Router {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	authHandler := handler.NewAuthHandler(svc.Accounts, cfg.JWTSecret, log)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/events", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Get("/auth/me", authHandler.Me)

		waiterHandler := handler.NewWaiterHandler(svc.Catalog, svc.Reporting, log)
		r.Route("/waiters", waiterHandler.RegisterRoutes)

		menuHandler := handler.NewMenuItemHandler(svc.Catalog, log)
		r.Route("/menu-items", menuHandler.RegisterRoutes)

		orderHandler := handler.NewOrderHandler(svc.Ledger, log)
		r.Route("/orders", orderHandler.RegisterRoutes)

		expenseHandler := handler.NewExpenseHandler(svc.Journal, log)
		r.Route("/expenses", expenseHandler.RegisterRoutes)

		subscriptionHandler := handler.NewSubscriptionHandler(svc.Gate, log)
		r.Route("/subscription", subscriptionHandler.RegisterRoutes)

		billingHandler := handler.NewBillingHandler(svc.Billing, log)
		billingHandler.RegisterRoutes(r)

		reportsHandler := handler.NewReportsHandler(svc.Reporting, svc.State.Today, log)
		r.Route("/reports", reportsHandler.RegisterRoutes)
		r.Get("/dashboard", reportsHandler.Dashboard)
	})

	log.Infow("router initialized")
	return r
}
