package ui

import (
	"net/http"

	"exodash/internal/domain"
	"exodash/internal/service/dashboard"
)

func (h *Handler) RealtimePage(w http.ResponseWriter, r *http.Request) {
	st := h.loadView(r, r.URL.Query())
	renderHTML(w, http.StatusOK, realtimePage(st, false, csrfFieldProvider(r)))
}

// Refresh drops the cached snapshot for the posted limit and fetches it
// again. A failed fetch leaves the limit uncached and shows the fetch notice.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRenderBadRequest(w, r) {
		return
	}

	st := viewState{}
	req, err := domain.ParseViewRequest(r.PostForm, h.DefaultLimit)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	st.Req = req

	snap, err := h.Dashboard.Refresh(r.Context(), req.Limit)
	if err != nil {
		h.Logger.WarnContext(r.Context(), "refresh failed", "limit", req.Limit, "error", err)
		st.FetchFailed = true
		renderHTML(w, http.StatusOK, realtimePage(st, false, csrfFieldProvider(r)))
		return
	}

	h.Logger.InfoContext(r.Context(), "snapshot refreshed", "limit", req.Limit, "records", snap.Len(), "snapshot_id", snap.ID)
	st.Snapshot = snap
	st.Bounds = dashboard.Bounds(snap)
	st.Hosts = dashboard.Hosts(snap)
	renderHTML(w, http.StatusOK, realtimePage(st, true, csrfFieldProvider(r)))
}
