package ui

import (
	"net/http"

	"exodash/internal/domain"
	"exodash/internal/service/dashboard"
)

func (h *Handler) OrbitsPage(w http.ResponseWriter, r *http.Request) {
	st := h.loadView(r, r.URL.Query())
	if st.Snapshot == nil {
		renderHTML(w, http.StatusOK, orbitsPage(st, nil, nil))
		return
	}

	if st.Req.Planet == "" && st.Snapshot.Len() > 0 {
		st.Req.Planet = st.Snapshot.Records[0].Name
	}

	var orbit *domain.OrbitView
	if rec, ok := st.Snapshot.Find(st.Req.Planet); ok {
		o, err := dashboard.Orbit(st.Snapshot, rec.Name, st.Req.Eccentricity(rec))
		if err != nil {
			st.InputError = userMessage(err)
		}
		orbit = o
	} else if st.Req.Planet != "" {
		st.InputError = "Planet " + st.Req.Planet + " is not in the current snapshot."
	}

	renderHTML(w, http.StatusOK, orbitsPage(st, dashboard.Scatter(st.Snapshot), orbit))
}
