// Package ui renders the dashboard pages with gomponents and datastar.
package ui

import (
	"log/slog"
	"net/http"

	"exodash/internal/domain"
	"exodash/internal/engine"
	"exodash/internal/service/dashboard"

	gomponents "maragu.dev/gomponents"
)

// Handler serves the /ui pages.
type Handler struct {
	Dashboard    *dashboard.Service
	Engine       *engine.SnapshotEngine
	DefaultLimit int
	Production   bool
	Logger       *slog.Logger
}

func NewHandler(dash *dashboard.Service, eng *engine.SnapshotEngine, defaultLimit int, production bool, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultLimit == 0 {
		defaultLimit = domain.DefaultLimit
	}
	return &Handler{
		Dashboard:    dash,
		Engine:       eng,
		DefaultLimit: defaultLimit,
		Production:   production,
		Logger:       logger.With("component", "ui"),
	}
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}
