package ui

import (
	"fmt"
	"net/url"
	"strconv"

	"exodash/internal/domain"
	"exodash/internal/engine"

	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"
)

func sqlEditorPage(st viewState, sqlText string, result *engine.QueryResult, runError string, csrfFieldProvider func() gomponents.Node) gomponents.Node {
	resultNode := gomponents.Node(html.P(html.Class(mutedClass()), gomponents.Text("Run a query to see results.")))

	if runError != "" {
		resultNode = html.Div(
			html.Class(cardClass()),
			html.H2(gomponents.Text("Query Error")),
			html.Pre(gomponents.Text(runError)),
		)
	} else if result != nil {
		headerCols := make([]gomponents.Node, 0, len(result.Columns))
		for i := range result.Columns {
			headerCols = append(headerCols, html.Th(gomponents.Text(result.Columns[i])))
		}

		displayRows := result.Rows
		truncated := false
		if len(displayRows) > sqlEditorMaxRows {
			displayRows = displayRows[:sqlEditorMaxRows]
			truncated = true
		}

		rows := make([]gomponents.Node, 0, len(displayRows))
		for i := range displayRows {
			cells := make([]gomponents.Node, 0, len(displayRows[i]))
			for j := range displayRows[i] {
				cells = append(cells, html.Td(gomponents.Text(sqlCellString(displayRows[i][j]))))
			}
			rows = append(rows, html.Tr(gomponents.Group(cells)))
		}

		meta := fmt.Sprintf("%d row(s)", result.RowCount)
		if truncated {
			meta = fmt.Sprintf("More than %d row(s), showing first %d", sqlEditorMaxRows, sqlEditorMaxRows)
		}

		resultNode = html.Div(
			html.Class(cardClass("table-wrap")),
			html.H2(gomponents.Text("Results")),
			html.P(html.Class(mutedClass()), gomponents.Text(meta)),
			html.Table(
				html.THead(html.Tr(gomponents.Group(headerCols))),
				html.TBody(gomponents.Group(rows)),
			),
		)
	}

	var metaNode gomponents.Node
	if st.Snapshot != nil {
		metaNode = snapshotMeta(st.Snapshot)
	}

	return appPage(
		"Explore",
		"explore",
		st.Query,
		controlsForm(st, "/ui/explore", false),
		gomponents.Group(st.notices()),
		html.Div(
			html.Class(cardClass()),
			html.P(gomponents.Text("Query the current snapshot with DuckDB. The table "+engine.TableName+" holds one row per planet, including the amplitude computed from the catalog eccentricity.")),
			metaNode,
			html.H2(gomponents.Text("Snippets")),
			snippetLinks(st.Req.Limit),
		),
		html.Div(
			html.Class(cardClass()),
			html.Form(
				html.Method("post"),
				html.Action("/ui/explore/run"),
				csrfFieldProvider(),
				html.Input(html.Type("hidden"), html.Name(domain.ParamLimit), html.Value(strconv.Itoa(st.Req.Limit))),
				html.Label(gomponents.Text("SQL")),
				html.Textarea(html.Name("sql"), html.Required(), gomponents.Text(sqlText)),
				html.Div(
					html.Class("button-row"),
					html.Button(html.Type("submit"), html.Class(primaryButtonClass()), gomponents.Text("Run query")),
					html.Button(html.Type("submit"), html.Class(secondaryButtonClass()), html.FormAction("/ui/explore/download.csv"), gomponents.Text("Download CSV")),
				),
			),
		),
		resultNode,
	)
}

func snippetLinks(limit int) gomponents.Node {
	snippets := []struct {
		ID    string
		Label string
	}{
		{ID: "sample_rows", Label: "Sample rows"},
		{ID: "describe", Label: "Describe table"},
		{ID: "summarize", Label: "Summarize columns"},
		{ID: "by_host", Label: "Planets per host"},
		{ID: "top_amplitude", Label: "Largest amplitudes"},
	}

	links := make([]gomponents.Node, 0, len(snippets))
	for i := range snippets {
		q := url.Values{}
		q.Set("snippet", snippets[i].ID)
		q.Set(domain.ParamLimit, strconv.Itoa(limit))
		links = append(links, html.A(html.Href("/ui/explore?"+q.Encode()), gomponents.Text(snippets[i].Label)))
	}
	return html.Div(html.Class("snippet-list"), gomponents.Group(links))
}
