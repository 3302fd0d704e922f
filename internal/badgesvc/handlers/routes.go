package handlers

import (
	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *Handler) SetRoutes(r chi.Router) {
	r.Get("/", h.HealthHandler)
	r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.RegisterUser)
			r.Get("/", h.ListUsers)
			r.Delete("/", h.DeleteAllUsers)
			r.Delete("/{badge_id}", h.DeleteUser)
		})

		r.Route("/movements", func(r chi.Router) {
			r.Post("/", h.ReportMovement)
			r.Get("/", h.ListMovements)
			r.Delete("/", h.ClearMovements)
		})

		r.Get("/presence/{badge_id}", h.GetPresence)
	})
}
