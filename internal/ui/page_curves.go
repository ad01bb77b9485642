package ui

import (
	"fmt"

	"exodash/internal/domain"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

const curvesPanelID = "curves-panel"

func curvesPage(st viewState, set *domain.CurveSet) Node {
	return appPage(
		"Radial Velocity Curves",
		"curves",
		st.Query,
		controlsForm(st, "/ui", true),
		curvesPanel(st, set),
	)
}

// curvesPanel is the fragment replaced by datastar on every control change.
func curvesPanel(st viewState, set *domain.CurveSet) Node {
	body := []Node{Group(st.notices())}

	switch {
	case st.Snapshot == nil:
		body = append(body, chart("rv-chart", curvesFigure(nil)))
	case set == nil:
	case set.Empty:
		body = append(body, emptyStateCard(noMatchesMessage))
	default:
		body = append(body,
			snapshotMeta(st.Snapshot),
			P(Class(mutedClass()), Text(fmt.Sprintf("%d planet(s) match the filters.", set.Matched))),
			chart("rv-chart", curvesFigure(set)),
		)
		if set.Truncated {
			body = append(body, notice("info", fmt.Sprintf("Showing the first %d curves; narrow the filters to see the rest.", len(set.Series))))
		}
		if len(set.Skipped) > 0 {
			items := make([]Node, 0, len(set.Skipped))
			for _, sk := range set.Skipped {
				items = append(items, Li(Strong(Text(sk.Label)), Text(": "+sk.Reason)))
			}
			body = append(body, Div(
				Class(cardClass()),
				H2(Text("Skipped planets")),
				Ul(Group(items)),
			))
		}
	}

	return Div(ID(curvesPanelID), Group(body))
}

func curvesFigure(set *domain.CurveSet) plotFigure {
	fig := plotFigure{
		Data: []plotTrace{},
		Layout: plotLayout{
			Title: plotText{Text: "Radial Velocity Curves"},
			XAxis: axisTitled("Time (days)"),
			YAxis: axisTitled("Radial Velocity (m/s)"),
		},
	}
	if set == nil {
		return fig
	}
	for _, s := range set.Series {
		fig.Data = append(fig.Data, plotTrace{
			Type: "scatter",
			Mode: "lines",
			Name: s.Label,
			X:    s.TimeDays,
			Y:    s.VelocityMS,
		})
	}
	return fig
}

func snapshotMeta(snap *domain.Snapshot) Node {
	return P(
		Class(mutedClass()),
		Text(fmt.Sprintf("Snapshot of %d planet(s) fetched %s", snap.Len(), formatTime(snap.FetchedAt))),
		If(snap.Dropped > 0, Text(fmt.Sprintf("; %d incomplete row(s) dropped", snap.Dropped))),
		Text("."),
	)
}
