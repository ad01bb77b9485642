package ui

import (
	"net/http"

	"exodash/internal/domain"
	"exodash/internal/service/dashboard"
)

func (h *Handler) CurvesPage(w http.ResponseWriter, r *http.Request) {
	st, set := h.curvesView(r)
	renderHTML(w, http.StatusOK, curvesPage(st, set))
}

// CurvesPanel returns only the chart panel fragment.
func (h *Handler) CurvesPanel(w http.ResponseWriter, r *http.Request) {
	st, set := h.curvesView(r)
	renderHTML(w, http.StatusOK, curvesPanel(st, set))
}

func (h *Handler) curvesView(r *http.Request) (viewState, *domain.CurveSet) {
	st := h.loadView(r, r.URL.Query())
	if st.Snapshot == nil {
		return st, nil
	}
	set, err := dashboard.BuildCurves(st.Snapshot, st.Req, h.Dashboard.MaxCurves())
	if err != nil {
		st.InputError = userMessage(err)
		return st, nil
	}
	return st, set
}
