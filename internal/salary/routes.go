package salary

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the HTML form at / and the JSON API under /api.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/", h.Page)
	r.Post("/", h.SubmitPage)

	r.Route("/api", func(r chi.Router) {
		r.Get("/options", h.Options)

		r.Route("/form", func(r chi.Router) {
			r.Get("/", h.Form)
			r.Delete("/", h.Reset)
			r.Put("/fields/{field}", h.UpdateField)
			r.Post("/submit", h.Submit)
		})
	})
}
