package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(h *CartHandler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(CorrelationID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)

	r.Get("/api/packages", h.ListPackages)

	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Get("/count", h.GetCount)
		r.Post("/items", h.AddItem)
		r.Delete("/items/{index}", h.RemoveLine)
		r.Post("/checkout", h.Checkout)
	})

	r.Get("/api/notifications/current", h.CurrentNotification)

	return r
}
