package ui

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"

	"exodash/internal/domain"
	"exodash/internal/engine"
)

const sqlEditorMaxRows = 200
const sqlEditorCSVMaxRows = 5000

func (h *Handler) SQLEditorPage(w http.ResponseWriter, r *http.Request) {
	st := h.loadView(r, r.URL.Query())
	sqlText := strings.TrimSpace(r.URL.Query().Get("sql"))
	if sqlText == "" {
		sqlText = defaultSQLSnippet(r.URL.Query().Get("snippet"))
	}
	renderHTML(w, http.StatusOK, sqlEditorPage(st, sqlText, nil, "", csrfFieldProvider(r)))
}

func (h *Handler) SQLEditorRun(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRenderBadRequest(w, r) {
		return
	}

	sqlText := strings.TrimSpace(r.PostForm.Get("sql"))
	st, result, err := h.runSnapshotQuery(r, sqlText, sqlEditorMaxRows+1)
	runError := ""
	if err != nil {
		runError = userMessage(err)
	}
	renderHTML(w, http.StatusOK, sqlEditorPage(st, sqlText, result, runError, csrfFieldProvider(r)))
}

func (h *Handler) SQLEditorDownloadCSV(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRenderBadRequest(w, r) {
		return
	}

	sqlText := strings.TrimSpace(r.PostForm.Get("sql"))
	st, result, err := h.runSnapshotQuery(r, sqlText, sqlEditorCSVMaxRows+1)
	if err != nil {
		renderHTML(w, http.StatusOK, sqlEditorPage(st, sqlText, nil, userMessage(err), csrfFieldProvider(r)))
		return
	}

	rows := result.Rows
	if len(rows) > sqlEditorCSVMaxRows {
		rows = rows[:sqlEditorCSVMaxRows]
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(result.Columns); err != nil {
		renderHTML(w, http.StatusInternalServerError, errorPage("Export Failed", "Failed writing CSV header."))
		return
	}
	for i := range rows {
		record := make([]string, 0, len(rows[i]))
		for j := range rows[i] {
			record = append(record, sqlCellString(rows[i][j]))
		}
		if err := writer.Write(record); err != nil {
			renderHTML(w, http.StatusInternalServerError, errorPage("Export Failed", "Failed writing CSV rows."))
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		renderHTML(w, http.StatusInternalServerError, errorPage("Export Failed", "Failed finalizing CSV."))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("planets-%d-query.csv", st.Req.Limit)))
	if len(result.Rows) > sqlEditorCSVMaxRows {
		w.Header().Set("X-Exodash-Results-Truncated", "true")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// runSnapshotQuery resolves the snapshot for the posted limit and runs sqlText
// against it. The returned viewState is usable even when err is set.
func (h *Handler) runSnapshotQuery(r *http.Request, sqlText string, maxRows int) (viewState, *engine.QueryResult, error) {
	st := h.loadView(r, r.PostForm)
	if h.Engine == nil {
		return st, nil, domain.ErrValidation("the query engine is not available")
	}
	if st.Snapshot == nil {
		return st, nil, domain.ErrValidation("%s", fetchFailedMessage)
	}
	result, err := h.Engine.QuerySnapshot(r.Context(), st.Snapshot, sqlText, maxRows)
	if err != nil {
		return st, nil, err
	}
	return st, result, nil
}

func defaultSQLSnippet(snippetID string) string {
	switch snippetID {
	case "describe":
		return "DESCRIBE " + engine.TableName + ";"
	case "summarize":
		return "SUMMARIZE " + engine.TableName + ";"
	case "by_host":
		return "SELECT hostname, count(*) AS planets, round(avg(pl_bmasse), 2) AS avg_mass\nFROM " + engine.TableName + "\nGROUP BY hostname\nORDER BY planets DESC, hostname;"
	case "top_amplitude":
		return "SELECT pl_name, hostname, round(rv_amplitude_ms, 3) AS k_ms\nFROM " + engine.TableName + "\nORDER BY rv_amplitude_ms DESC NULLS LAST\nLIMIT 20;"
	default:
		return "SELECT *\nFROM " + engine.TableName + "\nLIMIT 50;"
	}
}

func sqlCellString(value interface{}) string {
	if value == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", value)
}
