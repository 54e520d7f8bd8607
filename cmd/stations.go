package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/audiolibrelab/aircheck/internal/station"
)

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "List the configured stations",
	Long:  `Parse the stations file and list every capture target, surfacing parse errors without recording anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stations, err := station.Load(cfg.Paths.StationsFile)
		if err != nil {
			return err
		}

		fmt.Printf("Stations from %s:\n\n", cfg.Paths.StationsFile)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"#", "Name", "URL", "Language", "Headers"})
		for i, spec := range stations {
			headers := "-"
			switch {
			case spec.UserAgent != "" && spec.Referer != "":
				headers = "user-agent, referer"
			case spec.UserAgent != "":
				headers = "user-agent"
			case spec.Referer != "":
				headers = "referer"
			}
			t.AppendRow(table.Row{i + 1, spec.Name, spec.URL, spec.Language, headers})
		}
		t.Render()
		return nil
	},
}
