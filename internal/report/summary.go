package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

// WriteSummary renders the findings table to w, ordered the same way
// the report pages are.
func WriteSummary(w io.Writer, records []Record, noColor bool) {
	headline := fmt.Sprintf("%d finding(s) in %d file(s)", len(records), countFiles(records))
	if !noColor {
		headline = color.New(color.FgCyan, color.Bold).Sprint(headline)
	}

	fmt.Fprintln(w, headline)

	if len(records) == 0 {
		return
	}

	writer := table.NewWriter()
	writer.SetOutputMirror(w)
	writer.AppendHeader(table.Row{"Path", "Location", "Previous", "Current", "Delta"})

	for _, record := range records {
		writer.AppendRow(table.Row{
			record.FullPath.String(),
			fmt.Sprintf("%s:%d", record.File, record.Line),
			humanize.Comma(record.Previous),
			humanize.Comma(record.Current),
			humanize.Comma(record.Delta()),
		})
	}

	writer.Render()
}

func countFiles(records []Record) int {
	files := map[string]bool{}
	for _, record := range records {
		files[record.File] = true
	}

	return len(files)
}
