// Package api serves the JSON API under /v1.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"exodash/internal/domain"
	"exodash/internal/engine"
	"exodash/internal/rv"
	"exodash/internal/service/dashboard"
)

const (
	// DefaultQueryRows caps query results when the request does not.
	DefaultQueryRows = 1000
	// MaxQueryRows is the largest max_rows a query may ask for.
	MaxQueryRows = 10000
)

const maxQueryBodyBytes = 64 << 10

// Handler implements the /v1 endpoints.
type Handler struct {
	dash         *dashboard.Service
	engine       *engine.SnapshotEngine
	defaultLimit int
	logger       *slog.Logger
}

// NewHandler creates a Handler. eng may be nil, in which case /v1/query
// answers 503.
func NewHandler(dash *dashboard.Service, eng *engine.SnapshotEngine, defaultLimit int, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultLimit == 0 {
		defaultLimit = domain.DefaultLimit
	}
	return &Handler{
		dash:         dash,
		engine:       eng,
		defaultLimit: defaultLimit,
		logger:       logger.With("component", "api"),
	}
}

// Routes registers the endpoints on r. Paths are relative to the /v1 mount.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/snapshot", h.GetSnapshot)
	r.Get("/planets", h.ListPlanets)
	r.Get("/curves", h.ListCurves)
	r.Get("/scatter", h.ListScatter)
	r.Get("/hosts", h.ListHosts)
	r.Get("/orbit", h.GetOrbit)
	r.Get("/amplitude", h.ComputeAmplitude)
	r.Post("/refresh", h.RefreshSnapshot)
	r.Post("/query", h.QuerySnapshot)
}

// SnapshotInfo describes a snapshot without its records.
type SnapshotInfo struct {
	ID        string        `json:"id"`
	Limit     int           `json:"limit"`
	FetchedAt time.Time     `json:"fetched_at"`
	Records   int           `json:"records"`
	Dropped   int           `json:"dropped"`
	Bounds    domain.Bounds `json:"bounds"`
}

func snapshotInfo(snap *domain.Snapshot) SnapshotInfo {
	return SnapshotInfo{
		ID:        snap.ID,
		Limit:     snap.Limit,
		FetchedAt: snap.FetchedAt,
		Records:   snap.Len(),
		Dropped:   snap.Dropped,
		Bounds:    dashboard.Bounds(snap),
	}
}

func (h *Handler) viewRequest(r *http.Request) (domain.ViewRequest, error) {
	return domain.ParseViewRequest(r.URL.Query(), h.defaultLimit)
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	req, err := h.viewRequest(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	snap, err := h.dash.Snapshot(r.Context(), req.Limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotInfo(snap))
}

func (h *Handler) ListPlanets(w http.ResponseWriter, r *http.Request) {
	req, err := h.viewRequest(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	table, err := h.dash.Table(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (h *Handler) ListCurves(w http.ResponseWriter, r *http.Request) {
	req, err := h.viewRequest(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	set, err := h.dash.Curves(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

type scatterResponse struct {
	SnapshotID string                `json:"snapshot_id"`
	Points     []domain.ScatterPoint `json:"points"`
}

func (h *Handler) ListScatter(w http.ResponseWriter, r *http.Request) {
	req, err := h.viewRequest(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	snap, err := h.dash.Snapshot(r.Context(), req.Limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, scatterResponse{SnapshotID: snap.ID, Points: dashboard.Scatter(snap)})
}

func (h *Handler) ListHosts(w http.ResponseWriter, r *http.Request) {
	req, err := h.viewRequest(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	hosts, err := h.dash.HostNames(r.Context(), req.Limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if hosts == nil {
		hosts = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"hosts": hosts})
}

func (h *Handler) GetOrbit(w http.ResponseWriter, r *http.Request) {
	req, err := h.viewRequest(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	orbit, err := h.dash.OrbitFor(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, orbit)
}

// AmplitudeResponse echoes the inputs of an amplitude computation.
type AmplitudeResponse struct {
	AmplitudeMS float64 `json:"amplitude_ms"`
	Mass        float64 `json:"mass"`
	StarMass    float64 `json:"star_mass"`
	Period      float64 `json:"period"`
	Ecc         float64 `json:"ecc"`
}

func (h *Handler) ComputeAmplitude(w http.ResponseWriter, r *http.Request) {
	var resp AmplitudeResponse
	q := r.URL.Query()
	params := []struct {
		name     string
		required bool
		dest     *float64
	}{
		{"mass", true, &resp.Mass},
		{"star_mass", true, &resp.StarMass},
		{"period", true, &resp.Period},
		{"ecc", false, &resp.Ecc},
	}
	for _, p := range params {
		if err := runtime.BindQueryParameter("form", true, p.required, p.name, q, p.dest); err != nil {
			writeError(w, r, h.logger, domain.ErrValidation("invalid parameter %s: %v", p.name, err))
			return
		}
	}

	k, err := rv.Amplitude(resp.Mass, resp.StarMass, resp.Period, resp.Ecc)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp.AmplitudeMS = k
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) RefreshSnapshot(w http.ResponseWriter, r *http.Request) {
	req, err := h.viewRequest(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	snap, err := h.dash.Refresh(r.Context(), req.Limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.logger.InfoContext(r.Context(), "snapshot refreshed", "limit", snap.Limit, "records", snap.Len())
	writeJSON(w, http.StatusOK, snapshotInfo(snap))
}

// QueryRequest is the body of POST /v1/query.
type QueryRequest struct {
	SQL     string `json:"sql"`
	Limit   int    `json:"limit,omitempty"`
	MaxRows int    `json:"max_rows,omitempty"`
}

func (h *Handler) QuerySnapshot(w http.ResponseWriter, r *http.Request) {
	if h.engine == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorBody{
			Code:    http.StatusServiceUnavailable,
			Message: "query engine is not available",
		})
		return
	}

	var body QueryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, r, h.logger, domain.ErrValidation("invalid request body: %v", err))
		return
	}
	if body.Limit == 0 {
		body.Limit = h.defaultLimit
	}
	maxRows, err := queryRowCap(body.MaxRows)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	snap, err := h.dash.Snapshot(r.Context(), body.Limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	result, err := h.engine.QuerySnapshot(r.Context(), snap, body.SQL, maxRows)
	if err != nil {
		writeError(w, r, h.logger, fmt.Errorf("query snapshot %s: %w", snap.ID, err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func queryRowCap(n int) (int, error) {
	switch {
	case n == 0:
		return DefaultQueryRows, nil
	case n < 0 || n > MaxQueryRows:
		return 0, domain.ErrValidation("max_rows must be between 1 and %d", MaxQueryRows)
	default:
		return n, nil
	}
}
