package handlers

import "github.com/go-chi/chi/v5"

// Routes регистрирует маршруты /api/v1 на роутере.
func (h *APIHandler) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/patients", h.ListPatients)
		r.Post("/patients", h.RegisterPatient)
		r.Get("/patients/{id}", h.GetPatient)
		r.Delete("/patients/{id}", h.DeletePatient)
		r.Get("/users/{id}", h.GetUser)
	})
}
