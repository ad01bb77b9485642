package ui

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"exodash/internal/domain"
	"exodash/internal/service/dashboard"
)

func (h *Handler) DetailsPage(w http.ResponseWriter, r *http.Request) {
	st := h.loadView(r, r.URL.Query())
	var rows []domain.PlanetRecord
	if st.Snapshot != nil {
		filtered, err := dashboard.Filter(st.Snapshot.Records, st.Req.Filter)
		if err != nil {
			st.InputError = userMessage(err)
		}
		rows = filtered
	}
	renderHTML(w, http.StatusOK, detailsPage(st, rows))
}

// DetailsCSV downloads every row of the filtered table.
func (h *Handler) DetailsCSV(w http.ResponseWriter, r *http.Request) {
	req, err := domain.ParseViewRequest(r.URL.Query(), h.DefaultLimit)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	table, err := h.Dashboard.Table(r.Context(), req)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("planets-%d.csv", req.Limit)))
	w.WriteHeader(http.StatusOK)
	if err := writePlanetsCSV(w, table.Rows); err != nil {
		h.Logger.WarnContext(r.Context(), "csv export interrupted", "error", err)
	}
}

func writePlanetsCSV(w io.Writer, rows []domain.PlanetRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"pl_name", "hostname", "pl_bmasse", "pl_orbper", "pl_orbsmax", "pl_orbeccen", "st_mass"}); err != nil {
		return err
	}
	for _, p := range rows {
		record := []string{
			p.Name,
			p.HostName,
			strconv.FormatFloat(p.MassEarth, 'g', -1, 64),
			strconv.FormatFloat(p.PeriodDays, 'g', -1, 64),
			strconv.FormatFloat(p.SemiMajorAxisAU, 'g', -1, 64),
			strconv.FormatFloat(p.Eccentricity, 'g', -1, 64),
			strconv.FormatFloat(p.StarMassSolar, 'g', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
