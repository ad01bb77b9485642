package ui

import (
	"strconv"

	"exodash/internal/domain"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

func realtimePage(st viewState, refreshed bool, csrfField func() Node) Node {
	body := []Node{Group(st.notices())}
	if refreshed && st.Snapshot != nil {
		body = append(body, notice("success", "Data refreshed successfully!"))
	}

	body = append(body, Div(
		Class(cardClass()),
		P(Text("Fetch the selected number of planets again from the NASA Exoplanet Archive and replace the cached snapshot.")),
		Form(
			Method("post"),
			Action("/ui/refresh"),
			csrfField(),
			Input(Type("hidden"), Name(domain.ParamLimit), Value(strconv.Itoa(st.Req.Limit))),
			Button(Type("submit"), Class(primaryButtonClass()), Text("Refresh Data")),
		),
	))

	if st.Snapshot != nil {
		body = append(body, snapshotMeta(st.Snapshot))
		if st.Snapshot.Len() == 0 {
			body = append(body, emptyStateCard("The archive returned no complete planet records."))
		} else {
			body = append(body, planetTable(st.Snapshot.Records, st.Query))
		}
	}

	return appPage("Real-Time Data Updates", "realtime", st.Query, controlsForm(st, "/ui/realtime", false), Group(body))
}
