// Package server exposes a fasting.Service over the fast service's REST
// routes.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/julianstephens/fastwell/internal/auth"
	"github.com/julianstephens/fastwell/internal/fasting"
)

type Config struct {
	// Signer verifies bearer tokens. Without one every request runs as the
	// local user.
	Signer *auth.Signer
}

type Handler struct {
	svc *fasting.Service
}

// New builds the router
func New(svc *fasting.Service, cfg Config) http.Handler {
	h := &Handler{svc: svc}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(authenticate(cfg.Signer))

		r.Route("/fasts", func(r chi.Router) {
			r.Post("/", h.createFast)
			r.Get("/", h.listFasts)
			r.Get("/partner/active-fasters", h.activeFasters)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getFast)
				r.Put("/", h.updateFast)
				r.Post("/complete", h.completeFast)
				r.Post("/break", h.breakFast)

				r.Get("/prayers", h.listPrayers)
				r.Post("/prayers", h.logPrayer)
				r.Post("/progress", h.recordProgress)

				r.Get("/journals", h.listJournals)
				r.Post("/journals", h.createJournal)
				r.Get("/journals/{journalId}", h.getJournal)
				r.Get("/journals/{journalId}/comments", h.listComments)
				r.Post("/journals/{journalId}/comments", h.addComment)
			})
		})

		r.Post("/partners", h.addPartner)
	})
	return r
}
