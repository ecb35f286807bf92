package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"comanda/internal/order"
	"comanda/internal/tenant"
)

func NewRouter(tenantModule *tenant.Module, orderModule *order.Module, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/account", tenantModule.Controller.GetDashboard)
		r.Put("/profile", tenantModule.Controller.UpdateProfile)
		r.Put("/plan", tenantModule.Controller.UpdatePlan)

		r.Post("/coupons", tenantModule.Controller.AddCoupon)
		r.Delete("/coupons/{code}", tenantModule.Controller.DeleteCoupon)

		r.Post("/menu", tenantModule.Controller.AddMenuItem)
		r.Put("/menu/{title}", tenantModule.Controller.UpdateMenuItem)
		r.Delete("/menu/{title}", tenantModule.Controller.DeleteMenuItem)
		r.Put("/menu/order", tenantModule.Controller.ReorderMenu)

		r.Get("/orders", orderModule.Dashboard.ListOrders)
		r.Get("/orders/finance", orderModule.Dashboard.Finance)
		r.Post("/orders/{id}/advance", orderModule.Dashboard.AdvanceOrder)
		r.Post("/orders/{id}/cancel", orderModule.Dashboard.CancelOrder)
	})

	r.Route("/{slug}", func(r chi.Router) {
		r.Get("/", tenantModule.Controller.GetPublicPage)

		r.Get("/cart", orderModule.Checkout.GetCart)
		r.Post("/cart/items", orderModule.Checkout.AddCartItem)
		r.Delete("/cart/items/{title}", orderModule.Checkout.RemoveCartItem)
		r.Post("/checkout", orderModule.Checkout.Checkout)

		r.Get("/order/{id}", orderModule.Tracking.GetOrder)
		r.Get("/order/{id}/events", orderModule.Tracking.StreamOrder)
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
