package ui

import (
	"net/url"
	"sort"

	"exodash/internal/domain"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

func orbitsPage(st viewState, points []domain.ScatterPoint, orbit *domain.OrbitView) Node {
	body := []Node{Group(st.notices())}
	if st.Snapshot != nil {
		body = append(body,
			snapshotMeta(st.Snapshot),
			chart("orbit-scatter", scatterFigure(points)),
			planetPicker(st),
		)
		if orbit != nil {
			body = append(body, chart("orbit-path", orbitFigure(orbit)))
		}
	} else {
		body = append(body, chart("orbit-scatter", scatterFigure(nil)))
	}
	return appPage("3D Visualization of Planetary Orbits", "orbits", st.Query, controlsForm(st, "/ui/orbits", false), Group(body))
}

func scatterFigure(points []domain.ScatterPoint) plotFigure {
	trace := plotTrace{
		Type:          "scatter3d",
		Mode:          "markers",
		X:             make([]float64, 0, len(points)),
		Y:             make([]float64, 0, len(points)),
		Z:             make([]float64, 0, len(points)),
		Text:          make([]string, 0, len(points)),
		HoverTemplate: "%{text}<br>a=%{x} AU<br>P=%{y} d<br>M=%{z} M⊕<extra></extra>",
		Marker:        &plotMarker{Size: 5, Color: make([]float64, 0, len(points))},
	}
	for i, p := range points {
		trace.X = append(trace.X, p.SemiMajorAxisAU)
		trace.Y = append(trace.Y, p.PeriodDays)
		trace.Z = append(trace.Z, p.MassEarth)
		trace.Text = append(trace.Text, p.Label)
		trace.Marker.Color = append(trace.Marker.Color, float64(i))
	}
	return plotFigure{
		Data: []plotTrace{trace},
		Layout: plotLayout{
			Title: plotText{Text: "3D Visualization of Planetary Orbits"},
			Scene: &plotScene{
				XAxis: plotAxis{Title: plotText{Text: "Semi-major Axis (AU)"}},
				YAxis: plotAxis{Title: plotText{Text: "Orbital Period (days)"}},
				ZAxis: plotAxis{Title: plotText{Text: "Planet Mass (Earth Masses)"}},
			},
			Height: 600,
		},
	}
}

func orbitFigure(orbit *domain.OrbitView) plotFigure {
	path := plotTrace{
		Type: "scatter",
		Mode: "lines",
		Name: orbit.Label,
		X:    make([]float64, 0, len(orbit.Path)),
		Y:    make([]float64, 0, len(orbit.Path)),
	}
	for _, pt := range orbit.Path {
		path.X = append(path.X, pt.X)
		path.Y = append(path.Y, pt.Y)
	}
	star := plotTrace{
		Type:   "scatter",
		Mode:   "markers",
		Name:   "Host star",
		X:      []float64{0},
		Y:      []float64{0},
		Marker: &plotMarker{Size: 12},
	}
	y := axisTitled("y (AU)")
	y.ScaleAnchor = "x"
	return plotFigure{
		Data: []plotTrace{path, star},
		Layout: plotLayout{
			Title: plotText{Text: "Orbit of " + orbit.Label + " (e = " + formatFloat(orbit.Eccentricity) + ")"},
			XAxis: axisTitled("x (AU)"),
			YAxis: y,
		},
	}
}

// planetPicker selects the planet whose orbit is drawn, keeping the other
// controls as hidden fields.
func planetPicker(st viewState) Node {
	values, _ := url.ParseQuery(st.Query)
	keys := make([]string, 0, len(values))
	for key := range values {
		if key != domain.ParamPlanet {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	hidden := make([]Node, 0, len(keys))
	for _, key := range keys {
		for _, v := range values[key] {
			hidden = append(hidden, Input(Type("hidden"), Name(key), Value(v)))
		}
	}

	options := make([]Node, 0, st.Snapshot.Len())
	for _, p := range st.Snapshot.Records {
		options = append(options, optionSelectedValue(p.Name, st.Req.Planet, p.Label()))
	}

	return Form(
		Class(cardClass("toolbar")),
		Method("get"),
		Action("/ui/orbits"),
		Group(hidden),
		Label(For(domain.ParamPlanet+"-picker"), Text("Orbit of")),
		Select(Name(domain.ParamPlanet), ID(domain.ParamPlanet+"-picker"), Attr("onchange", "this.form.submit()"), Group(options)),
		Button(Type("submit"), Class(secondaryButtonClass()), Text("Show orbit")),
	)
}
