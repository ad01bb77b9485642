package ui

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"exodash/internal/ui/assets"
)

// MountRoutes registers the UI on r, which is expected to be mounted at /ui.
func MountRoutes(r chi.Router, h *Handler) {
	staticFS, err := fs.Sub(assets.StaticFS(), "static")
	if err == nil {
		r.Handle("/static/*", http.StripPrefix("/ui/static/", http.FileServer(http.FS(staticFS))))
	}

	r.Group(func(r chi.Router) {
		r.Use(h.EnsureCSRFToken)
		r.Use(h.RequireCSRF)
		r.Get("/", h.CurvesPage)
		r.Get("/curves/panel", h.CurvesPanel)
		r.Get("/details", h.DetailsPage)
		r.Get("/details.csv", h.DetailsCSV)
		r.Get("/orbits", h.OrbitsPage)
		r.Get("/realtime", h.RealtimePage)
		r.Post("/refresh", h.Refresh)
		r.Get("/explore", h.SQLEditorPage)
		r.Post("/explore/run", h.SQLEditorRun)
		r.Post("/explore/download.csv", h.SQLEditorDownloadCSV)
	})
}
