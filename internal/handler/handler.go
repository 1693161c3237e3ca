// Package handler exposes the FoodKing domain over HTTP.
package handler

import (
	"net/http"

	"github.com/xenking/foodking/internal/domain/geo"
	"github.com/xenking/foodking/internal/domain/menu"
	"github.com/xenking/foodking/internal/domain/order"
	"github.com/xenking/foodking/internal/domain/payment"
)

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	RestaurantName string
	Delivery       geo.Config
	// PaymentKeyID is the public gateway key handed to checkout clients.
	PaymentKeyID string
}

// Handler serves the public and admin API.
type Handler struct {
	menu     *menu.Service
	orders   *order.Service
	payments *payment.Verifier

	restaurant string
	delivery   geo.Config
	keyID      string
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg HandlerConfig,
	menuService *menu.Service,
	orderService *order.Service,
	verifier *payment.Verifier,
) *Handler {
	return &Handler{
		menu:       menuService,
		orders:     orderService,
		payments:   verifier,
		restaurant: cfg.RestaurantName,
		delivery:   cfg.Delivery,
		keyID:      cfg.PaymentKeyID,
	}
}

// Register mounts every API route on mux. Admin routes go through
// sec.RequireAdmin.
func (h *Handler) Register(mux *http.ServeMux, sec *SecurityHandler) {
	admin := func(f http.HandlerFunc) http.Handler {
		return sec.RequireAdmin(f)
	}

	mux.HandleFunc("GET /api/info", h.Info)
	mux.HandleFunc("GET /api/delivery/check", h.CheckDelivery)

	mux.HandleFunc("GET /api/menu", h.ListMenu)
	mux.HandleFunc("GET /api/menu/{id}", h.GetMenuItem)
	mux.Handle("POST /api/menu", admin(h.AddMenuItem))
	mux.Handle("PUT /api/menu/{id}", admin(h.UpdateMenuItem))
	mux.Handle("DELETE /api/menu/{id}", admin(h.DeleteMenuItem))
	mux.Handle("PATCH /api/menu/{id}/toggle-availability", admin(h.ToggleMenuItem))

	mux.HandleFunc("POST /api/orders", h.PlaceOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)
	mux.HandleFunc("GET /api/orders/customer/{phone}", h.CustomerOrders)
	mux.Handle("GET /api/orders", admin(h.ListOrders))
	mux.Handle("GET /api/orders/stats/dashboard", admin(h.OrderStats))
	mux.Handle("PUT /api/orders/{id}/status", admin(h.SetOrderStatus))

	mux.HandleFunc("POST /api/payment/verify", h.VerifyPayment)
	mux.HandleFunc("GET /api/payment/key", h.PaymentKey)
}
