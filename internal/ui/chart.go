package ui

import (
	"encoding/json"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// plotFigure is the Plotly figure handed to charts.js.
type plotFigure struct {
	Data   []plotTrace `json:"data"`
	Layout plotLayout  `json:"layout"`
}

type plotTrace struct {
	Type          string      `json:"type"`
	Mode          string      `json:"mode"`
	Name          string      `json:"name,omitempty"`
	X             []float64   `json:"x"`
	Y             []float64   `json:"y"`
	Z             []float64   `json:"z,omitempty"`
	Text          []string    `json:"text,omitempty"`
	HoverTemplate string      `json:"hovertemplate,omitempty"`
	Marker        *plotMarker `json:"marker,omitempty"`
}

type plotMarker struct {
	Size  int       `json:"size,omitempty"`
	Color []float64 `json:"color,omitempty"`
}

type plotText struct {
	Text string `json:"text"`
}

type plotAxis struct {
	Title       plotText `json:"title"`
	ScaleAnchor string   `json:"scaleanchor,omitempty"`
}

type plotScene struct {
	XAxis plotAxis `json:"xaxis"`
	YAxis plotAxis `json:"yaxis"`
	ZAxis plotAxis `json:"zaxis"`
}

type plotLayout struct {
	Title  plotText   `json:"title"`
	XAxis  *plotAxis  `json:"xaxis,omitempty"`
	YAxis  *plotAxis  `json:"yaxis,omitempty"`
	Scene  *plotScene `json:"scene,omitempty"`
	Height int        `json:"height,omitempty"`
}

func axisTitled(text string) *plotAxis {
	return &plotAxis{Title: plotText{Text: text}}
}

// chart renders an empty chart container plus its figure as inline JSON.
// json.Marshal escapes <, > and &, so the payload cannot close the script
// element.
func chart(id string, fig plotFigure) Node {
	payload, err := json.Marshal(fig)
	if err != nil {
		return emptyStateCard("The chart could not be rendered.")
	}
	return Div(
		Class("chart-wrap"),
		Div(ID(id), Class("chart")),
		Script(Type("application/json"), Attr("data-chart-for", id), Raw(string(payload))),
	)
}
