package ui

import (
	"fmt"

	"exodash/internal/domain"

	. "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	. "maragu.dev/gomponents/html"
)

const detailsMaxRows = 500

var planetColumns = []string{
	"Planet", "Host star", "Mass (Earth masses)", "Orbital period (days)",
	"Semi-major axis (AU)", "Eccentricity", "Star mass (solar masses)",
}

func detailsPage(st viewState, rows []domain.PlanetRecord) Node {
	body := []Node{Group(st.notices())}
	if st.Snapshot != nil {
		body = append(body, snapshotMeta(st.Snapshot))
		if len(rows) == 0 {
			body = append(body, emptyStateCard(noMatchesMessage))
		} else {
			body = append(body, planetTable(rows, st.Query))
		}
	}
	return appPage("Planet Details", "details", st.Query, controlsForm(st, "/ui/details", false), Group(body))
}

func planetTable(rows []domain.PlanetRecord, query string) Node {
	shown := rows
	if len(shown) > detailsMaxRows {
		shown = shown[:detailsMaxRows]
	}

	header := make([]Node, 0, len(planetColumns))
	for _, c := range planetColumns {
		header = append(header, Th(Text(c)))
	}

	body := make([]Node, 0, len(shown))
	for _, p := range shown {
		body = append(body, Tr(
			data.Show(containsExpr(p.Name+" "+p.HostName)),
			Td(Text(p.Name)),
			Td(Text(p.HostName)),
			Td(Text(formatFloat(p.MassEarth))),
			Td(Text(formatFloat(p.PeriodDays))),
			Td(Text(formatFloat(p.SemiMajorAxisAU))),
			Td(Text(formatFloat(p.Eccentricity))),
			Td(Text(formatFloat(p.StarMassSolar))),
		))
	}

	meta := fmt.Sprintf("%d planet(s)", len(rows))
	if len(rows) > detailsMaxRows {
		meta = fmt.Sprintf("%d planet(s), showing the first %d. Download the CSV for all rows.", len(rows), detailsMaxRows)
	}

	csvHref := "/ui/details.csv"
	if query != "" {
		csvHref += "?" + query
	}

	return Div(
		Class(cardClass("table-wrap")),
		data.Signals(map[string]any{"q": ""}),
		Div(Class("toolbar"),
			P(Class(mutedClass()), Text(meta)),
			Input(Type("search"), Placeholder("Search planet or star"), Class("quick-filter"), data.Bind("q")),
			A(Href(csvHref), Class(secondaryButtonClass()), Text("Download CSV")),
		),
		Table(
			THead(Tr(Group(header))),
			TBody(Group(body)),
		),
	)
}
