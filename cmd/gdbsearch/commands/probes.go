package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gdbsearch/internal/probe"
)

// NewProbesCommand creates the probes listing command.
func NewProbesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "probes",
		Short: "List the available measurement probes",
		Run: func(cmd *cobra.Command, _ []string) {
			writer := table.NewWriter()
			writer.SetOutputMirror(cmd.OutOrStdout())
			writer.AppendHeader(table.Row{"Name", "Description"})

			for _, info := range probe.List() {
				writer.AppendRow(table.Row{info.Name, info.Description})
			}

			writer.Render()
		},
	}
}
