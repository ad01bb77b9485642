package ui

import (
	"strconv"
	"strings"
	"time"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

const (
	plotlyScriptURL    = "https://cdn.plot.ly/plotly-2.35.2.min.js"
	datastarScriptURL  = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.7/bundles/datastar.js"
	fetchFailedMessage = "Error fetching data from NASA Exoplanet Archive."
	noMatchesMessage   = "No planets match your filters!"
)

type navItem struct {
	Label string
	Href  string
	Key   string
	Icon  string
}

var navItems = []navItem{
	{Label: "Radial Velocity Curves", Href: "/ui", Key: "curves", Icon: "activity"},
	{Label: "Planet Details", Href: "/ui/details", Key: "details", Icon: "table"},
	{Label: "3D Orbits", Href: "/ui/orbits", Key: "orbits", Icon: "orbit"},
	{Label: "Real-Time Data", Href: "/ui/realtime", Key: "realtime", Icon: "refresh-cw"},
	{Label: "Explore", Href: "/ui/explore", Key: "explore", Icon: "square-terminal"},
}

// appPage wraps body in the dashboard shell. query is appended to the tab
// links so the current controls survive a tab switch.
func appPage(title, active, query string, controls Node, body ...Node) Node {
	nav := make([]Node, 0, len(navItems))
	for _, item := range navItems {
		className := "app-tab"
		if item.Key == active {
			className += " active"
		}
		href := item.Href
		if query != "" {
			href += "?" + query
		}
		nav = append(nav, A(
			Href(href),
			Class(className),
			I(Class("nav-icon"), Attr("data-lucide", item.Icon), Attr("aria-hidden", "true")),
			Span(Text(item.Label)),
		))
	}

	return HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text(title+" | Exoplanet Detection Simulation")),
			Link(Rel("icon"), Href("data:,")),
			Link(Rel("stylesheet"), Href(uiStylesheetHref())),
			Script(Src("https://unpkg.com/lucide@latest/dist/umd/lucide.min.js")),
			Script(Src(plotlyScriptURL)),
			Script(Type("module"), Src(datastarScriptURL)),
			Script(Defer(), Src(uiScriptHref("charts.js"))),
		),
		Body(
			Main(Class("app-shell"),
				Aside(
					Class("app-sidebar"),
					Div(
						Class("brand"),
						Strong(Text("Exoplanet Detection Simulation")),
						P(Class(mutedClass()), Text("Radial velocity explorer for the NASA Exoplanet Archive")),
					),
					controls,
				),
				Section(
					Class("app-main"),
					Nav(Class("app-tabs"), Group(nav)),
					H1(Class("page-title"), Text(title)),
					Div(Class("content"), Group(body)),
				),
			),
			Script(Raw("if (window.lucide) { window.lucide.createIcons(); }")),
		),
	)
}

func errorPage(title, message string) Node {
	return HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text(title+" | Exoplanet Detection Simulation")),
			Link(Rel("icon"), Href("data:,")),
			Link(Rel("stylesheet"), Href(uiStylesheetHref())),
		),
		Body(
			Main(
				Class("layout"),
				H1(Class("page-title"), Text(title)),
				P(Text(message)),
				P(A(Href("/ui"), Text("Back to the dashboard"))),
			),
		),
	)
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.UTC().Format(time.RFC3339)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// containsExpr is a datastar expression that is true when the quick-filter
// signal $q is empty or occurs in value, case-insensitively.
func containsExpr(value string) string {
	lower := strings.ToLower(value)
	return "$q === '' || " + strconv.Quote(lower) + ".includes($q.toLowerCase())"
}

func cardClass(extra ...string) string {
	parts := []string{"card"}
	parts = append(parts, extra...)
	return strings.Join(parts, " ")
}

func mutedClass() string {
	return "muted text-small"
}

func primaryButtonClass() string {
	return "btn btn-primary"
}

func secondaryButtonClass() string {
	return "btn"
}

// notice renders a flash message. tone is one of info, success, warning
// or danger.
func notice(tone, message string) Node {
	return Div(Class("notice notice-"+tone), Role("status"), Text(message))
}

func emptyStateCard(message string) Node {
	return Div(
		Class(cardClass("blankslate")),
		P(Class("muted"), Text(message)),
	)
}
