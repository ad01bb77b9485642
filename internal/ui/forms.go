package ui

import (
	"strconv"
	"strings"

	"exodash/internal/domain"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// curvesPanelAction re-renders the chart panel with the sidebar form as
// query parameters.
const curvesPanelAction = "@get('/ui/curves/panel', {contentType: 'form'})"

func formString(values map[string][]string, key string) string {
	if values == nil {
		return ""
	}
	return strings.TrimSpace(first(values[key]))
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// controlsForm renders the sidebar filter controls. The form submits with
// GET to action; when live is set it also recomputes the chart panel on
// every change.
func controlsForm(st viewState, action string, live bool) Node {
	req := st.Req
	bounds := st.Bounds

	var liveAttr Node
	if live {
		liveAttr = Attr("data-on:change", curvesPanelAction)
	}

	hostOptions := make([]Node, 0, len(st.Hosts)+1)
	hostOptions = append(hostOptions, optionSelectedValue("", req.Filter.HostName, "All stars"))
	for _, host := range st.Hosts {
		hostOptions = append(hostOptions, optionSelectedValue(host, req.Filter.HostName, host))
	}

	return Form(
		ID("controls"),
		Class("controls"),
		Method("get"),
		Action(action),
		liveAttr,
		controlField("Number of datasets to import", Input(
			Type("number"), Name(domain.ParamLimit), ID(domain.ParamLimit),
			Min(strconv.Itoa(domain.MinLimit)), Max(strconv.Itoa(domain.MaxLimit)),
			Value(strconv.Itoa(req.Limit)),
		)),
		rangeInput("Minimum planet mass (Earth masses)", domain.ParamMinMass, req.Filter.MinMass, bounds.Mass.Min),
		rangeInput("Maximum planet mass (Earth masses)", domain.ParamMaxMass, req.Filter.MaxMass, bounds.Mass.Max),
		rangeInput("Minimum orbital period (days)", domain.ParamMinPeriod, req.Filter.MinPeriod, bounds.Period.Min),
		rangeInput("Maximum orbital period (days)", domain.ParamMaxPeriod, req.Filter.MaxPeriod, bounds.Period.Max),
		controlField("Host star", Select(Name(domain.ParamStar), ID(domain.ParamStar), Group(hostOptions))),
		controlField("Eccentricity", Select(
			Name(domain.ParamEccMode), ID(domain.ParamEccMode),
			optionSelectedValue(string(domain.EccentricityOverride), string(req.Mode), "Same for every planet"),
			optionSelectedValue(string(domain.EccentricityCatalog), string(req.Mode), "Catalog value per planet"),
		)),
		controlField("Eccentricity override: "+strconv.FormatFloat(req.Override, 'f', 2, 64), Input(
			Type("range"), Name(domain.ParamEcc), ID(domain.ParamEcc),
			Min(strconv.FormatFloat(domain.MinEccentricityOverride, 'f', 2, 64)),
			Max(strconv.FormatFloat(domain.MaxEccentricityOverride, 'f', 2, 64)),
			Step("0.01"),
			Value(strconv.FormatFloat(req.Override, 'f', 2, 64)),
		)),
		If(req.Planet != "", Input(Type("hidden"), Name(domain.ParamPlanet), Value(req.Planet))),
		Div(Class("button-row"),
			Button(Type("submit"), Class(primaryButtonClass()), Text("Apply")),
			A(Href(action), Class(secondaryButtonClass()), Text("Reset")),
		),
	)
}

func controlField(label string, input Node) Node {
	return Div(Class("control"), Label(Text(label)), input)
}

// rangeInput renders an optional numeric bound. The snapshot bound is shown
// as placeholder so an empty field means no limit.
func rangeInput(label, name string, value *float64, bound float64) Node {
	v := ""
	if value != nil {
		v = strconv.FormatFloat(*value, 'g', -1, 64)
	}
	return controlField(label, Input(
		Type("number"), Name(name), ID(name), Step("any"),
		Placeholder(formatFloat(bound)),
		Value(v),
	))
}

func optionSelectedValue(value, selected, label string) Node {
	if value == selected {
		return Option(Value(value), Selected(), Text(label))
	}
	return Option(Value(value), Text(label))
}
