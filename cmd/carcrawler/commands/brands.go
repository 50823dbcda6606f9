package commands

import (
	"os"

	"carcatalog/lib/serviceutil"
	"carcatalog/lib/textutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var brandsFilter *string

func init() {
	brandsFilter = brandsCmd.Flags().String("filter", "", "Only list brands whose name contains this text.")
	rootCmd.AddCommand(brandsCmd)
}

var brandsCmd = &cobra.Command{
	Use:   "brands [--filter <text>]",
	Short: "Lists the brands of the catalog.",
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient()
		defer client.Close()

		brands, err := client.FetchBrands(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to fetch brands", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Brand"})
		for _, b := range brands {
			if *brandsFilter != "" && !textutil.ContainsName(b.Name, *brandsFilter) {
				continue
			}
			t.AppendRow(table.Row{b.ID, b.Name})
		}
		t.AppendFooter(table.Row{"Total", len(brands)})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
