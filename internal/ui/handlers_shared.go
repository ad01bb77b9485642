package ui

import (
	"errors"
	"net/http"
	"net/url"

	"exodash/internal/domain"
	"exodash/internal/service/dashboard"

	gomponents "maragu.dev/gomponents"
)

// viewState is what every dashboard page needs: the parsed controls and the
// snapshot they select. A failed fetch leaves Snapshot nil and sets
// FetchFailed so pages render empty views with a notice.
type viewState struct {
	Req         domain.ViewRequest
	Query       string
	Snapshot    *domain.Snapshot
	Bounds      domain.Bounds
	Hosts       []string
	FetchFailed bool
	InputError  string
}

func (h *Handler) loadView(r *http.Request, values url.Values) viewState {
	st := viewState{}
	req, err := domain.ParseViewRequest(values, h.DefaultLimit)
	if err != nil {
		st.InputError = userMessage(err)
		req, _ = domain.ParseViewRequest(nil, h.DefaultLimit)
	} else {
		st.Query = viewQuery(values)
	}
	st.Req = req

	snap, err := h.Dashboard.Snapshot(r.Context(), req.Limit)
	if err != nil {
		h.Logger.WarnContext(r.Context(), "snapshot unavailable", "limit", req.Limit, "error", err)
		st.FetchFailed = true
		return st
	}
	st.Snapshot = snap
	st.Bounds = dashboard.Bounds(snap)
	st.Hosts = dashboard.Hosts(snap)
	return st
}

var viewParams = []string{
	domain.ParamLimit, domain.ParamMinMass, domain.ParamMaxMass,
	domain.ParamMinPeriod, domain.ParamMaxPeriod, domain.ParamStar,
	domain.ParamEccMode, domain.ParamEcc, domain.ParamPlanet,
}

// viewQuery keeps only the dashboard controls of values, dropping empty ones.
func viewQuery(values url.Values) string {
	out := url.Values{}
	for _, key := range viewParams {
		if v := formString(values, key); v != "" {
			out.Set(key, v)
		}
	}
	return out.Encode()
}

// notices renders the input and fetch problems of st, if any.
func (st viewState) notices() []gomponents.Node {
	var out []gomponents.Node
	if st.InputError != "" {
		out = append(out, notice("warning", st.InputError))
	}
	if st.FetchFailed {
		out = append(out, notice("danger", fetchFailedMessage))
	}
	return out
}

func userMessage(err error) string {
	var validation *domain.ValidationError
	var notFound *domain.NotFoundError
	switch {
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &notFound):
		return notFound.Message
	default:
		return "An unexpected error occurred."
	}
}

func (h *Handler) renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	title := "Unexpected Error"
	message := "An unexpected error occurred while loading this page."

	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var upstream *domain.UpstreamError
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
		title = "Not Found"
		message = notFound.Message
	case errors.As(err, &validation):
		status = http.StatusBadRequest
		title = "Invalid Request"
		message = validation.Message
	case errors.As(err, &upstream):
		status = http.StatusBadGateway
		title = "Archive Unavailable"
		message = fetchFailedMessage
	default:
		h.Logger.ErrorContext(r.Context(), "ui request failed", "path", r.URL.Path, "error", err)
	}

	renderHTML(w, status, errorPage(title, message))
}

func parseFormOrRenderBadRequest(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "The submitted form could not be read."))
		return false
	}
	return true
}
