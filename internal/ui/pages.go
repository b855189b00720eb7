package ui

import (
	"fmt"
	"time"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"duck-sheets/internal/domain"
	"duck-sheets/internal/preview"
)

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2328}
table{border-collapse:collapse;font-size:.875rem}
th,td{border:1px solid #d0d7de;padding:.25rem .5rem;text-align:left}
th{background:#f6f8fa}
.muted{color:#59636e}`

func page(title string, body ...Node) Node {
	return HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text(title+" | duck-sheets")),
			Link(Rel("icon"), Href("data:,")),
			StyleEl(Raw(pageStyle)),
		),
		Body(
			Main(
				H1(Text(title)),
				Group(body),
			),
		),
	)
}

func fileSummary(info domain.DataFileInfo) Node {
	return P(Class("muted"), Text(fmt.Sprintf("%s, %d bytes, modified %s",
		info.FileName, info.SizeBytes, info.ModifiedTime.UTC().Format(time.RFC3339))))
}

func previewPage(info domain.DataFileInfo, res preview.Result, truncated bool) Node {
	head := make([]Node, len(res.Headers))
	for i, h := range res.Headers {
		head[i] = Th(Text(h))
	}

	rows := make([]Node, len(res.Rows))
	for i, row := range res.Rows {
		cells := make([]Node, len(row))
		for j, v := range row {
			cells[j] = Td(Text(v))
		}
		rows[i] = Tr(Group(cells))
	}

	return page("Preview: "+info.FileName,
		fileSummary(info),
		Table(
			THead(Tr(Group(head))),
			TBody(Group(rows)),
		),
		If(truncated, P(Class("muted"), Text("Preview truncated."))),
	)
}

func previewUnavailablePage(info domain.DataFileInfo) Node {
	return page("Preview: "+info.FileName,
		fileSummary(info),
		P(Text("Quick preview is only available for comma-separated text files. Load the file as a dataset to inspect it.")),
	)
}

func errorPage(title, message string) Node {
	return page(title, P(Text(message)))
}
