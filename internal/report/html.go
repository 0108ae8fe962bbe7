package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/gdbsearch/internal/search"
)

const (
	// DefaultBarLength is the width of the proportional ASCII
	// indicator in front of every rendered source line.
	DefaultBarLength = 25

	reportDirPerm  = 0o750
	reportFilePerm = 0o600

	chartHeight = "260px"
)

// Renderer writes the drill-down report: one self-contained HTML page
// per explored path node, cross-linked by the deterministic path
// encoding so re-running produces stable links.
type Renderer struct {
	// Dir is the output directory; created if missing.
	Dir string
	// BarLength is the indicator width; DefaultBarLength when zero.
	BarLength int
}

// pageGroup is the set of records sharing one parent path: they all
// annotate the same source file and render onto one page.
type pageGroup struct {
	parent  search.Path
	file    string
	records []Record
}

// Render writes one page per path group. Records must already be in
// (depth, path) order, as returned by Aggregator.Records.
func (r *Renderer) Render(records []Record) error {
	if len(records) == 0 {
		return nil
	}

	mkdirErr := os.MkdirAll(r.Dir, reportDirPerm)
	if mkdirErr != nil {
		return fmt.Errorf("create report dir: %w", mkdirErr)
	}

	for _, group := range groupByParent(records) {
		renderErr := r.renderPage(group)
		if renderErr != nil {
			return renderErr
		}
	}

	return nil
}

// groupByParent splits sorted records into consecutive runs sharing the
// same parent path.
func groupByParent(records []Record) []pageGroup {
	var groups []pageGroup

	for _, record := range records {
		n := len(groups)
		if n == 0 || groups[n-1].parent.Compare(record.ParentPath()) != 0 {
			groups = append(groups, pageGroup{
				parent: record.ParentPath(),
				file:   record.File,
			})
			n++
		}

		groups[n-1].records = append(groups[n-1].records, record)
	}

	return groups
}

type pageLine struct {
	Bar     string
	Text    string
	Href    string
	Tooltip string
}

type pageData struct {
	Title     string
	File      string
	PathLabel string
	Chart     template.HTML
	Lines     []pageLine
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"></script>
<style>
body { background: #fdfdfd; }
kbd { white-space: pre; }
a { text-decoration: none; }
</style>
</head>
<body>
<kbd>gdbsearch file:{{.File}} path:{{.PathLabel}}</kbd><br>
{{.Chart}}
{{range .Lines}}{{if .Href}}<a href="{{.Href}}" title="{{.Tooltip}}"><kbd>{{.Bar}}{{.Text}}</kbd></a>{{else}}<kbd>{{.Bar}}{{.Text}}</kbd>{{end}}<br>
{{end}}</body>
</html>
`))

// renderPage emits the source file of one group, each finding line
// annotated with its share of the group's total delta and a link one
// level deeper.
func (r *Renderer) renderPage(group pageGroup) error {
	source, readErr := os.ReadFile(group.file)
	if readErr != nil {
		// The aggregator verified readability once; a file vanishing
		// between then and report time is not worth aborting for.
		return nil
	}

	barLength := r.BarLength
	if barLength <= 0 {
		barLength = DefaultBarLength
	}

	byLine := map[int][]Record{}

	var total int64

	for _, record := range group.records {
		byLine[record.Line] = append(byLine[record.Line], record)
		total += record.Delta()
	}

	if total <= 0 {
		total = 1
	}

	lines := strings.Split(strings.TrimRight(string(source), "\n"), "\n")
	page := pageData{
		Title:     "gdbsearch " + group.parent.PageName(),
		File:      group.file,
		PathLabel: group.parent.String(),
		Chart:     chartFragment(group),
		Lines:     make([]pageLine, 0, len(lines)),
	}

	for i, text := range lines {
		line := pageLine{
			Bar:  strings.Repeat("-", barLength),
			Text: text,
		}

		if hits, ok := byLine[i+1]; ok {
			var delta int64
			for _, hit := range hits {
				delta += hit.Delta()
			}

			// A shrinking value renders a zero-width bar.
			score := int(delta * int64(barLength) / total)
			switch {
			case score < 0:
				score = 0
			case score > barLength:
				score = barLength
			}

			line.Bar = strings.Repeat("#", score) + strings.Repeat("-", barLength-score)
			line.Href = hits[0].FullPath.PageName() + ".html"
			line.Tooltip = "measured value: " + humanize.Comma(hits[0].Current)
		}

		page.Lines = append(page.Lines, line)
	}

	target := filepath.Join(r.Dir, group.parent.PageName()+".html")

	var buf bytes.Buffer

	execErr := pageTemplate.Execute(&buf, page)
	if execErr != nil {
		return fmt.Errorf("render page %s: %w", target, execErr)
	}

	writeErr := os.WriteFile(target, buf.Bytes(), reportFilePerm)
	if writeErr != nil {
		return fmt.Errorf("write page %s: %w", target, writeErr)
	}

	return nil
}

// chartFragment renders a per-line delta bar chart and extracts the
// embeddable fragment from the full page echarts emits.
func chartFragment(group pageGroup) template.HTML {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "growth per line"}),
	)

	labels := make([]string, 0, len(group.records))
	data := make([]opts.BarData, 0, len(group.records))

	for _, record := range group.records {
		labels = append(labels, strconv.Itoa(record.Line))
		data = append(data, opts.BarData{Value: record.Delta()})
	}

	bar.SetXAxis(labels)
	bar.AddSeries("delta", data)

	var buf bytes.Buffer

	renderErr := bar.Render(&buf)
	if renderErr != nil {
		return ""
	}

	return template.HTML(extractChartContent(buf.String()))
}

// extractChartContent pulls the chart container out of the full HTML
// page echarts renders, so it can be embedded in the report page.
func extractChartContent(html string) string {
	start := strings.Index(html, `<div class="container">`)
	if start == -1 {
		return ""
	}

	end := strings.Index(html, `</body>`)
	if end == -1 || end < start {
		return ""
	}

	return html[start:end]
}
